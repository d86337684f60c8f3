package domain

import (
	"strings"
	"testing"
	"time"
)

func validDraft(now time.Time) Ticket {
	t := NewDraft()
	t.Passenger = Passenger{Name: "Ana Ríos", DocumentID: "1020304050"}
	t.TravelDate = now.AddDate(0, 0, 1).Format("2006-01-02")
	t.TravelTime = "10:30"
	t.Vessel = VesselTaxi
	t.Passengers = PassengerCount{Adults: 2, Children: 1}
	t.Recompute()
	return t
}

func TestMissingFieldsListsEverything(t *testing.T) {
	now := time.Now()
	ticket := NewDraft()
	missing := ticket.MissingFields(now)

	for _, want := range []string{"nombre", "documento", "embarcacion", "fecha", "hora"} {
		found := false
		for _, f := range missing {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing fields %v should include %q", missing, want)
		}
	}
}

func TestMissingFieldsValidTicket(t *testing.T) {
	now := time.Now()
	ticket := validDraft(now)
	if missing := ticket.MissingFields(now); len(missing) != 0 {
		t.Fatalf("valid draft reported missing fields: %v", missing)
	}
}

func TestMissingFieldsRejectsPastDate(t *testing.T) {
	now := time.Now()
	ticket := validDraft(now)
	ticket.TravelDate = now.AddDate(0, 0, -1).Format("2006-01-02")
	missing := ticket.MissingFields(now)
	if len(missing) != 1 || missing[0] != "fecha" {
		t.Fatalf("past date should flag fecha, got %v", missing)
	}

	// Today is the lower bound, inclusive.
	ticket.TravelDate = now.Format("2006-01-02")
	if missing := ticket.MissingFields(now); len(missing) != 0 {
		t.Fatalf("today should be accepted, got %v", missing)
	}
}

func TestMissingFieldsOptionalContactFormats(t *testing.T) {
	now := time.Now()
	ticket := validDraft(now)
	ticket.Passenger.Phone = "312-555 01 02"
	ticket.Passenger.Email = "ana@example.com"
	if missing := ticket.MissingFields(now); len(missing) != 0 {
		t.Fatalf("well-formed contact data flagged: %v", missing)
	}

	ticket.Passenger.Phone = "no-es-un-telefono"
	ticket.Passenger.Email = "sin-arroba"
	missing := ticket.MissingFields(now)
	if len(missing) != 2 {
		t.Fatalf("expected telefono and email flagged, got %v", missing)
	}
}

func TestMissingFieldsPassengerBounds(t *testing.T) {
	now := time.Now()
	ticket := validDraft(now)
	ticket.Passengers.Adults = 0
	missing := ticket.MissingFields(now)
	if len(missing) != 1 || missing[0] != "adultos" {
		t.Fatalf("zero adults should flag adultos, got %v", missing)
	}

	ticket.Passengers.Adults = MaxAdults + 1
	if missing := ticket.MissingFields(now); len(missing) != 1 || missing[0] != "adultos" {
		t.Fatalf("adults over bound should flag adultos, got %v", missing)
	}

	ticket.Passengers.Adults = 2
	ticket.Passengers.Children = MaxChildren + 1
	if missing := ticket.MissingFields(now); len(missing) != 1 || missing[0] != "ninos" {
		t.Fatalf("children over bound should flag ninos, got %v", missing)
	}
}

func TestNewTicketCodeFormat(t *testing.T) {
	code := NewTicketCode(time.Now())
	if !strings.HasPrefix(code, "TKT-") {
		t.Fatalf("code %q lacks TKT- prefix", code)
	}
	if code != strings.ToUpper(code) {
		t.Fatalf("code %q should be uppercase", code)
	}
	if len(code) < 10 {
		t.Fatalf("code %q suspiciously short", code)
	}
}

func TestQRSnapshotProjectsCurrentFields(t *testing.T) {
	now := time.Now()
	ticket := validDraft(now)
	ticket.Code = "TKT-TEST01"
	ticket.State = StateGenerated

	p := ticket.QRSnapshot(now)
	if p.Code != "TKT-TEST01" || p.Passenger != "Ana Ríos" || p.DocumentID != "1020304050" {
		t.Fatalf("payload identity fields wrong: %+v", p)
	}
	if p.Vessel != "Lancha" || p.Adults != 2 || p.Children != 1 {
		t.Fatalf("payload trip fields wrong: %+v", p)
	}
	if p.Price != 60_000 || p.State != StateGenerated {
		t.Fatalf("payload price/state wrong: %+v", p)
	}

	// Changing a field and re-projecting must reflect the change.
	ticket.Passenger.DocumentID = "99"
	if ticket.QRSnapshot(now).DocumentID != "99" {
		t.Fatal("payload is not a projection of current fields")
	}
}

func TestToSaleRecordFlattens(t *testing.T) {
	now := time.Now()
	ticket := validDraft(now)
	ticket.Code = "TKT-TEST02"

	rec := ticket.ToSaleRecord("taquilla@muelle.co", now)
	if rec.Code != "TKT-TEST02" || rec.Operator != "taquilla@muelle.co" {
		t.Fatalf("record identity wrong: %+v", rec)
	}
	if rec.TotalPassengers != 3 || rec.Price != 60_000 {
		t.Fatalf("record totals wrong: %+v", rec)
	}
	if rec.Status != StateGenerated || rec.ServiceType != "Nuevo Pasaje" {
		t.Fatalf("record status wrong: %+v", rec)
	}

	ticket.ReservationMode = true
	ticket.Recompute()
	rec = ticket.ToSaleRecord("taquilla@muelle.co", now)
	if rec.ServiceType != "Con Reserva" || rec.Price != ReservationFee {
		t.Fatalf("reservation record wrong: %+v", rec)
	}
}
