package services

import (
	"context"
	"testing"
	"time"

	"muellepos/internal/domain"
)

type fakeBridge struct {
	persistErr    error
	persisted     []domain.SaleRecord
	cancelled     []string
	cancelledErr  error
	persistNotify chan struct{} // optional; closed-over coordination in concurrency tests
	persistWait   chan struct{}
}

func (b *fakeBridge) Persist(_ context.Context, rec domain.SaleRecord) (string, error) {
	b.persisted = append(b.persisted, rec)
	if b.persistNotify != nil {
		b.persistNotify <- struct{}{}
	}
	if b.persistWait != nil {
		<-b.persistWait
	}
	if b.persistErr != nil {
		return "", b.persistErr
	}
	return "venta-1", nil
}

func (b *fakeBridge) MarkCancelled(_ context.Context, code string) error {
	b.cancelled = append(b.cancelled, code)
	return b.cancelledErr
}

func yes() bool { return true }
func no() bool { return false }

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func int64p(n int64) *int64 { return &n }
func boolp(b bool) *bool    { return &b }

func testController(bridge Bridge) *TicketController {
	c := NewTicketController("taquilla@muelle.co", bridge)
	c.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	c.newCode = func(time.Time) string { return "TKT-TEST01" }
	return c
}

func completeEdits() FieldEdits {
	return FieldEdits{
		Name:       strp("Ana Ríos"),
		DocumentID: strp("1020304050"),
		TravelDate: strp("2026-09-01"),
		TravelTime: strp("10:30"),
		Vessel:     strp("lancha"),
		Adults:     intp(2),
		Children:   intp(1),
	}
}

func mustGenerate(t *testing.T, c *TicketController) domain.Ticket {
	t.Helper()
	if _, err := c.Apply(completeEdits()); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	ticket, err := c.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return ticket
}

func TestApplyRecomputesQuote(t *testing.T) {
	c := testController(&fakeBridge{})

	ticket, err := c.Apply(completeEdits())
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if ticket.Quote.Amount != 60000 {
		t.Fatalf("quote = %d, want 60000 for 2 adultos en lancha", ticket.Quote.Amount)
	}
	if ticket.State != domain.StateDraft {
		t.Fatalf("state = %s, want draft", ticket.State)
	}

	ticket, err = c.Apply(FieldEdits{ReservationMode: boolp(true)})
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if ticket.Quote.Amount != domain.ReservationFee || ticket.Quote.Basis != domain.BasisReservation {
		t.Fatalf("reservation quote = %+v", ticket.Quote)
	}

	ticket, err = c.Apply(FieldEdits{ReservationMode: boolp(false), PriceOverride: int64p(45000)})
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if ticket.Quote.Amount != 45000 || ticket.Quote.Basis != domain.BasisOverride {
		t.Fatalf("override quote = %+v", ticket.Quote)
	}
}

func TestApplyRejectsBadFields(t *testing.T) {
	c := testController(&fakeBridge{})

	cases := []struct {
		name  string
		edits FieldEdits
		field string
	}{
		{"unknown vessel", FieldEdits{Vessel: strp("submarino")}, "embarcacion"},
		{"zero adults", FieldEdits{Adults: intp(0)}, "adultos"},
		{"too many adults", FieldEdits{Adults: intp(domain.MaxAdults + 1)}, "adultos"},
		{"negative children", FieldEdits{Children: intp(-1)}, "ninos"},
		{"too many children", FieldEdits{Children: intp(domain.MaxChildren + 1)}, "ninos"},
		{"negative override", FieldEdits{PriceOverride: int64p(-500)}, "precio_personalizado"},
	}
	for _, tc := range cases {
		_, err := c.Apply(tc.edits)
		var verr domain.ValidationError
		if !domain.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
			continue
		}
		verr = err.(domain.ValidationError)
		if len(verr.Fields) != 1 || verr.Fields[0] != tc.field {
			t.Errorf("%s: fields = %v, want [%s]", tc.name, verr.Fields, tc.field)
		}
	}

	// A rejected edit must not leave partial changes behind.
	snap := c.Snapshot()
	if snap.Passengers.Adults != 1 || snap.Passengers.Children != 0 {
		t.Fatalf("rejected edits mutated the ticket: %+v", snap.Passengers)
	}
}

func TestGenerateRequiresCompleteTicket(t *testing.T) {
	c := testController(&fakeBridge{})

	_, err := c.Generate(context.Background())
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if c.Snapshot().State != domain.StateDraft {
		t.Fatal("failed generate must leave the ticket in draft")
	}
}

func TestGenerateRequiresOperator(t *testing.T) {
	c := NewTicketController("", &fakeBridge{})
	_, err := c.Generate(context.Background())
	if !domain.IsNotAuthenticated(err) {
		t.Fatalf("expected not-authenticated, got %v", err)
	}
}

func TestGenerateHappyPath(t *testing.T) {
	bridge := &fakeBridge{}
	c := testController(bridge)

	ticket := mustGenerate(t, c)
	if ticket.State != domain.StateGenerated {
		t.Fatalf("state = %s, want GENERADO", ticket.State)
	}
	if ticket.Code != "TKT-TEST01" {
		t.Fatalf("code = %q", ticket.Code)
	}
	if ticket.GeneratedAt == nil {
		t.Fatal("generatedAt not set")
	}
	if c.LastSaleID() != "venta-1" {
		t.Fatalf("sale id = %q", c.LastSaleID())
	}
	if len(bridge.persisted) != 1 {
		t.Fatalf("persisted %d records, want 1", len(bridge.persisted))
	}
	rec := bridge.persisted[0]
	if rec.Code != "TKT-TEST01" || rec.Price != 60000 || rec.Operator != "taquilla@muelle.co" {
		t.Fatalf("persisted record wrong: %+v", rec)
	}
}

func TestGeneratePersistFailureRollsBack(t *testing.T) {
	bridge := &fakeBridge{persistErr: domain.PersistenceError{Class: domain.PersistenceTransient}}
	c := testController(bridge)

	if _, err := c.Apply(completeEdits()); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	_, err := c.Generate(context.Background())
	if !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	snap := c.Snapshot()
	if snap.State != domain.StateDraft {
		t.Fatalf("state after rollback = %s, want draft", snap.State)
	}
	if snap.GeneratedAt != nil {
		t.Fatal("generatedAt must stay unset after rollback")
	}
	if snap.Code != "TKT-TEST01" {
		t.Fatal("code must survive rollback for the retry")
	}

	// Retry after the store comes back reuses the same code.
	bridge.persistErr = nil
	ticket, err := c.Generate(context.Background())
	if err != nil {
		t.Fatalf("retry generate error: %v", err)
	}
	if ticket.Code != "TKT-TEST01" || ticket.State != domain.StateGenerated {
		t.Fatalf("retry result: %+v", ticket)
	}
}

func TestGenerateRejectedOutsideDraft(t *testing.T) {
	c := testController(&fakeBridge{})
	mustGenerate(t, c)

	_, err := c.Generate(context.Background())
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestEditInvalidatesGeneratedTicket(t *testing.T) {
	bridge := &fakeBridge{}
	c := testController(bridge)
	mustGenerate(t, c)

	ticket, err := c.Apply(FieldEdits{Adults: intp(3)})
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if ticket.State != domain.StateDraft {
		t.Fatalf("state = %s, want draft after edit", ticket.State)
	}
	if ticket.GeneratedAt != nil || ticket.PrintedAt != nil {
		t.Fatal("timestamps must be cleared on invalidation")
	}
	if ticket.Code != "TKT-TEST01" {
		t.Fatal("code must survive invalidation")
	}
	if ticket.Quote.Amount != 90000 {
		t.Fatalf("quote = %d, want 90000 for 3 adultos", ticket.Quote.Amount)
	}
}

func TestPrintLifecycle(t *testing.T) {
	c := testController(&fakeBridge{})

	// Draft cannot be printed.
	if _, err := c.Print(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition from draft, got %v", err)
	}

	mustGenerate(t, c)
	ticket, err := c.Print(context.Background())
	if err != nil {
		t.Fatalf("print error: %v", err)
	}
	if ticket.State != domain.StatePrinted || ticket.PrintedAt == nil {
		t.Fatalf("after print: %+v", ticket)
	}

	// Reprint is allowed.
	if _, err := c.Print(context.Background()); err != nil {
		t.Fatalf("reprint error: %v", err)
	}

	// Editing a printed ticket demotes it and blocks further printing.
	if _, err := c.Apply(FieldEdits{Children: intp(2)}); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if _, err := c.Print(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition after edit, got %v", err)
	}
}

func TestCancelLifecycle(t *testing.T) {
	bridge := &fakeBridge{}
	c := testController(bridge)

	// Draft cannot be cancelled.
	if _, err := c.Cancel(context.Background(), yes); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition from draft, got %v", err)
	}

	mustGenerate(t, c)

	// Declined confirmation leaves the ticket alone.
	if _, err := c.Cancel(context.Background(), no); !domain.IsConfirmationRequired(err) {
		t.Fatalf("expected confirmation-required, got %v", err)
	}
	if c.Snapshot().State != domain.StateGenerated {
		t.Fatal("declined cancel must not change state")
	}

	ticket, err := c.Cancel(context.Background(), yes)
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if ticket.State != domain.StateCancelled || ticket.CancelledAt == nil {
		t.Fatalf("after cancel: %+v", ticket)
	}
	if len(bridge.cancelled) != 1 || bridge.cancelled[0] != "TKT-TEST01" {
		t.Fatalf("store cancellation not propagated: %v", bridge.cancelled)
	}

	// Cancelled is terminal.
	if _, err := c.Cancel(context.Background(), yes); !domain.IsAlreadyCancelled(err) {
		t.Fatalf("expected already-cancelled, got %v", err)
	}
	if _, err := c.Print(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("print after cancel: %v", err)
	}
	if _, err := c.Apply(FieldEdits{Adults: intp(5)}); !domain.IsInvalidTransition(err) {
		t.Fatalf("edit after cancel: %v", err)
	}
	if _, err := c.Generate(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("generate after cancel: %v", err)
	}
}

func TestCancelSurvivesStoreFailure(t *testing.T) {
	bridge := &fakeBridge{cancelledErr: domain.PersistenceError{Class: domain.PersistenceTransient}}
	c := testController(bridge)
	mustGenerate(t, c)

	ticket, err := c.Cancel(context.Background(), yes)
	if err != nil {
		t.Fatalf("cancel must not fail on store error: %v", err)
	}
	if ticket.State != domain.StateCancelled {
		t.Fatalf("state = %s, want ANULADO", ticket.State)
	}
}

func TestResetDiscardsEverything(t *testing.T) {
	c := testController(&fakeBridge{})
	mustGenerate(t, c)

	if _, err := c.Reset(no); !domain.IsConfirmationRequired(err) {
		t.Fatalf("expected confirmation-required, got %v", err)
	}

	ticket, err := c.Reset(yes)
	if err != nil {
		t.Fatalf("reset error: %v", err)
	}
	if ticket.Code != "" || ticket.State != domain.StateDraft {
		t.Fatalf("reset ticket: %+v", ticket)
	}
	if ticket.Passengers.Adults != 1 {
		t.Fatalf("fresh draft adults = %d, want 1", ticket.Passengers.Adults)
	}
	if c.LastSaleID() != "" {
		t.Fatal("sale id must be cleared on reset")
	}

	// Reset works from a cancelled ticket too.
	mustGenerate(t, c)
	if _, err := c.Cancel(context.Background(), yes); err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if _, err := c.Reset(yes); err != nil {
		t.Fatalf("reset from cancelled error: %v", err)
	}
}

func TestQRPayloadAssignsCodeOnce(t *testing.T) {
	c := testController(&fakeBridge{})
	if _, err := c.Apply(completeEdits()); err != nil {
		t.Fatalf("apply error: %v", err)
	}

	payload := c.QRPayload()
	if payload.Code != "TKT-TEST01" {
		t.Fatalf("payload code = %q", payload.Code)
	}
	if payload.Price != 60000 || payload.Vessel != "Lancha" {
		t.Fatalf("payload: %+v", payload)
	}

	// Generating afterwards keeps the code the QR already showed.
	ticket, err := c.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if ticket.Code != payload.Code {
		t.Fatalf("generate changed the code: %q vs %q", ticket.Code, payload.Code)
	}
}

func TestTransitionsBlockedWhileGenerating(t *testing.T) {
	bridge := &fakeBridge{
		persistNotify: make(chan struct{}),
		persistWait:   make(chan struct{}),
	}
	c := testController(bridge)
	if _, err := c.Apply(completeEdits()); err != nil {
		t.Fatalf("apply error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background())
		done <- err
	}()
	<-bridge.persistNotify // persist in flight now

	if _, err := c.Apply(FieldEdits{Adults: intp(5)}); err != ErrGenerateInFlight {
		t.Fatalf("edit during generate: %v", err)
	}
	if _, err := c.Print(context.Background()); err != ErrGenerateInFlight {
		t.Fatalf("print during generate: %v", err)
	}
	if _, err := c.Cancel(context.Background(), yes); err != ErrGenerateInFlight {
		t.Fatalf("cancel during generate: %v", err)
	}
	if _, err := c.Reset(yes); err != ErrGenerateInFlight {
		t.Fatalf("reset during generate: %v", err)
	}

	close(bridge.persistWait)
	if err := <-done; err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if c.Snapshot().State != domain.StateGenerated {
		t.Fatalf("state = %s, want GENERADO", c.Snapshot().State)
	}
}
