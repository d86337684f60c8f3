package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"muellepos/internal/domain"
	"muellepos/internal/utils"
)

// Bridge is what the controller needs from the persistence side.
type Bridge interface {
	Persist(ctx context.Context, rec domain.SaleRecord) (string, error)
	MarkCancelled(ctx context.Context, code string) error
}

// ErrGenerateInFlight serializes Generate: while one is awaiting the store,
// no other transition on the same ticket is accepted.
var ErrGenerateInFlight = errors.New("hay una generación en curso, espere a que termine")

// FieldEdits carries the operator's form changes. Nil means "field untouched";
// pointers let an edit clear a value explicitly.
type FieldEdits struct {
	Name            *string `json:"name"`
	DocumentID      *string `json:"document_id"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	TravelDate      *string `json:"travel_date"`
	TravelTime      *string `json:"travel_time"`
	Vessel          *string `json:"vessel"`
	Adults          *int    `json:"adults"`
	Children        *int    `json:"children"`
	ReservationMode *bool   `json:"reservation_mode"`
	PriceOverride   *int64  `json:"price_override"`
}

// TicketController owns the one active ticket of a session and is the only
// mutation path to it. Transitions run to completion under the lock; the
// persistence await during Generate is guarded by a busy flag instead so the
// snapshot stays readable.
type TicketController struct {
	mu       sync.Mutex
	operator string
	ticket   domain.Ticket
	bridge   Bridge
	saleID   string

	generateInFlight bool

	// Injection points for tests.
	now     func() time.Time
	newCode func(time.Time) string
}

func NewTicketController(operator string, bridge Bridge) *TicketController {
	return &TicketController{
		operator: operator,
		ticket:   domain.NewDraft(),
		bridge:   bridge,
		now:      time.Now,
		newCode:  domain.NewTicketCode,
	}
}

// Snapshot returns a read-only copy for the rendering surface.
func (c *TicketController) Snapshot() domain.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticket
}

// LastSaleID reports the store id of the last successful Generate.
func (c *TicketController) LastSaleID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saleID
}

// Apply edits the ticket fields and recomputes the quote. Editing a
// generated or printed ticket demotes it to draft (keeping its code) so stale
// pricing can never be printed or persisted. A cancelled ticket cannot be
// edited back to life.
func (c *TicketController) Apply(edits FieldEdits) (domain.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generateInFlight {
		return c.ticket, ErrGenerateInFlight
	}
	if c.ticket.State == domain.StateCancelled {
		return c.ticket, domain.InvalidTransitionError{From: c.ticket.State, Attempted: "editar"}
	}

	var invalid []string
	next := c.ticket

	if edits.Name != nil {
		next.Passenger.Name = utils.NormalizeSpace(*edits.Name)
	}
	if edits.DocumentID != nil {
		next.Passenger.DocumentID = utils.TrimOrEmpty(*edits.DocumentID)
	}
	if edits.Phone != nil {
		next.Passenger.Phone = utils.TrimOrEmpty(*edits.Phone)
	}
	if edits.Email != nil {
		next.Passenger.Email = utils.TrimOrEmpty(*edits.Email)
	}
	if edits.TravelDate != nil {
		next.TravelDate = utils.TrimOrEmpty(*edits.TravelDate)
	}
	if edits.TravelTime != nil {
		next.TravelTime = utils.TrimOrEmpty(*edits.TravelTime)
	}
	if edits.Vessel != nil {
		vessel, ok := domain.ParseVesselClass(*edits.Vessel)
		if !ok {
			invalid = append(invalid, "embarcacion")
		} else {
			next.Vessel = vessel
		}
	}
	if edits.Adults != nil {
		if *edits.Adults < 1 || *edits.Adults > domain.MaxAdults {
			invalid = append(invalid, "adultos")
		} else {
			next.Passengers.Adults = *edits.Adults
		}
	}
	if edits.Children != nil {
		if *edits.Children < 0 || *edits.Children > domain.MaxChildren {
			invalid = append(invalid, "ninos")
		} else {
			next.Passengers.Children = *edits.Children
		}
	}
	if edits.ReservationMode != nil {
		next.ReservationMode = *edits.ReservationMode
	}
	if edits.PriceOverride != nil {
		if *edits.PriceOverride < 0 {
			invalid = append(invalid, "precio_personalizado")
		} else {
			next.PriceOverride = *edits.PriceOverride
		}
	}

	if len(invalid) > 0 {
		return c.ticket, domain.ValidationError{Fields: invalid}
	}

	if next.State == domain.StateGenerated || next.State == domain.StatePrinted {
		next.State = domain.StateDraft
		next.GeneratedAt = nil
		next.PrintedAt = nil
	}
	next.Recompute()

	c.ticket = next
	return c.ticket, nil
}

// Generate validates the draft, assigns the code if absent and persists the
// sale. The ticket only becomes GENERADO after the store accepted the record;
// any failure leaves it in draft.
func (c *TicketController) Generate(ctx context.Context) (domain.Ticket, error) {
	c.mu.Lock()

	if c.generateInFlight {
		c.mu.Unlock()
		return c.ticket, ErrGenerateInFlight
	}
	if c.operator == "" {
		c.mu.Unlock()
		return c.ticket, domain.NotAuthenticatedError{}
	}
	if c.ticket.State != domain.StateDraft {
		c.mu.Unlock()
		return c.ticket, domain.InvalidTransitionError{From: c.ticket.State, Attempted: "generar"}
	}

	now := c.now()
	if missing := c.ticket.MissingFields(now); len(missing) > 0 {
		c.mu.Unlock()
		return c.ticket, domain.ValidationError{Fields: missing}
	}

	if c.ticket.Code == "" {
		c.ticket.Code = c.newCode(now)
	}
	rec := c.ticket.ToSaleRecord(c.operator, now)
	c.generateInFlight = true
	c.mu.Unlock()

	saleID, err := c.bridge.Persist(ctx, rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generateInFlight = false

	if err != nil {
		// The ticket never left draft; the assigned code survives for the
		// retry so the operator does not get a new code on every attempt.
		utils.LogError(c.operator, "ticket", "generate", err)
		return c.ticket, err
	}

	c.saleID = saleID
	generatedAt := now
	c.ticket.GeneratedAt = &generatedAt
	c.ticket.PrintedAt = nil
	c.ticket.State = domain.StateGenerated
	utils.LogEvent(c.operator, "ticket", "generate", "codigo="+c.ticket.Code)
	return c.ticket, nil
}

// Print records that the presentation layer produced the artifact. Reprints
// are allowed.
func (c *TicketController) Print(ctx context.Context) (domain.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generateInFlight {
		return c.ticket, ErrGenerateInFlight
	}
	switch c.ticket.State {
	case domain.StateGenerated, domain.StatePrinted:
	default:
		return c.ticket, domain.InvalidTransitionError{From: c.ticket.State, Attempted: "imprimir"}
	}

	printedAt := c.now()
	c.ticket.PrintedAt = &printedAt
	c.ticket.State = domain.StatePrinted
	utils.LogEvent(c.operator, "ticket", "print", "codigo="+c.ticket.Code)
	return c.ticket, nil
}

// Cancel voids a generated or printed ticket. Terminal: nothing revives a
// cancelled ticket except an explicit Reset. The persisted record's status is
// updated best effort; a store failure there does not undo the cancellation.
func (c *TicketController) Cancel(ctx context.Context, confirm func() bool) (domain.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generateInFlight {
		return c.ticket, ErrGenerateInFlight
	}
	if c.ticket.State == domain.StateCancelled {
		return c.ticket, domain.AlreadyCancelledError{}
	}
	switch c.ticket.State {
	case domain.StateGenerated, domain.StatePrinted:
	default:
		return c.ticket, domain.InvalidTransitionError{From: c.ticket.State, Attempted: "anular"}
	}
	if confirm == nil || !confirm() {
		return c.ticket, domain.ConfirmationRequiredError{Action: "anular"}
	}

	cancelledAt := c.now()
	c.ticket.CancelledAt = &cancelledAt
	c.ticket.State = domain.StateCancelled

	if err := c.bridge.MarkCancelled(ctx, c.ticket.Code); err != nil {
		utils.LogError(c.operator, "ticket", "cancel_status", err)
	}
	utils.LogEvent(c.operator, "ticket", "cancel", "codigo="+c.ticket.Code)
	return c.ticket, nil
}

// Reset discards the current ticket entirely, code included.
func (c *TicketController) Reset(confirm func() bool) (domain.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generateInFlight {
		return c.ticket, ErrGenerateInFlight
	}
	if confirm == nil || !confirm() {
		return c.ticket, domain.ConfirmationRequiredError{Action: "nuevo ticket"}
	}

	c.ticket = domain.NewDraft()
	c.saleID = ""
	utils.LogEvent(c.operator, "ticket", "reset", "formulario limpio")
	return c.ticket, nil
}

// QRPayload projects the current ticket for the QR encoder, assigning the
// code lazily on first need. Repeated calls without a Reset keep the code.
func (c *TicketController) QRPayload() domain.QRPayload {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.ticket.Code == "" {
		c.ticket.Code = c.newCode(now)
	}
	return c.ticket.QRSnapshot(now)
}
