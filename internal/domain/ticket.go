package domain

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TicketState values keep the labels the dock prints on tickets.
type TicketState string

const (
	StateDraft     TicketState = "BORRADOR"
	StateGenerated TicketState = "GENERADO"
	StatePrinted   TicketState = "IMPRESO"
	StateCancelled TicketState = "ANULADO"
)

const (
	MaxAdults   = 20
	MaxChildren = 10
)

// Passenger is the person the ticket is issued to. Name and document are
// required before generation; phone and email are optional.
type Passenger struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

type PassengerCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (p PassengerCount) Total() int { return p.Adults + p.Children }

// Ticket is the single active entity per session. It is owned by its
// controller and moves Draft -> Generated -> Printed, with cancellation
// terminal after generation.
type Ticket struct {
	Code            string         `json:"code,omitempty"`
	Passenger       Passenger      `json:"passenger"`
	TravelDate      string         `json:"travel_date"` // YYYY-MM-DD
	TravelTime      string         `json:"travel_time"` // HH:MM
	Vessel          VesselClass    `json:"vessel,omitempty"`
	Passengers      PassengerCount `json:"passengers"`
	ReservationMode bool           `json:"reservation_mode"`
	PriceOverride   int64          `json:"price_override,omitempty"`
	Quote           PriceQuote     `json:"quote"`
	State           TicketState    `json:"state"`
	GeneratedAt     *time.Time     `json:"generated_at,omitempty"`
	PrintedAt       *time.Time     `json:"printed_at,omitempty"`
	CancelledAt     *time.Time     `json:"cancelled_at,omitempty"`
}

// NewDraft returns a fresh ticket the way a cleared form starts: one adult,
// nothing else filled in.
func NewDraft() Ticket {
	t := Ticket{
		State:      StateDraft,
		Passengers: PassengerCount{Adults: 1},
	}
	t.Recompute()
	return t
}

// Recompute refreshes the derived quote from current fields.
func (t *Ticket) Recompute() {
	t.Quote = ComputePrice(t.Vessel, t.Passengers, t.ReservationMode, t.PriceOverride)
}

// ServiceType is the label stored with the sale.
func (t Ticket) ServiceType() string {
	if t.ReservationMode {
		return "Con Reserva"
	}
	return "Nuevo Pasaje"
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MissingFields lists every field that blocks generation, in form order.
// now anchors the travel-date lower bound.
func (t Ticket) MissingFields(now time.Time) []string {
	var missing []string
	if strings.TrimSpace(t.Passenger.Name) == "" {
		missing = append(missing, "nombre")
	}
	if strings.TrimSpace(t.Passenger.DocumentID) == "" {
		missing = append(missing, "documento")
	}
	if phone := strings.TrimSpace(t.Passenger.Phone); phone != "" && !validPhone(phone) {
		missing = append(missing, "telefono")
	}
	if email := strings.TrimSpace(t.Passenger.Email); email != "" && !emailRe.MatchString(email) {
		missing = append(missing, "email")
	}
	if t.Vessel == VesselNone {
		missing = append(missing, "embarcacion")
	}
	if !validTravelDate(t.TravelDate, now) {
		missing = append(missing, "fecha")
	}
	if !validTimeOfDay(t.TravelTime) {
		missing = append(missing, "hora")
	}
	if t.Passengers.Adults < 1 || t.Passengers.Adults > MaxAdults {
		missing = append(missing, "adultos")
	}
	if t.Passengers.Children < 0 || t.Passengers.Children > MaxChildren {
		missing = append(missing, "ninos")
	}
	return missing
}

// validTravelDate accepts YYYY-MM-DD not earlier than today.
func validTravelDate(date string, now time.Time) bool {
	date = strings.TrimSpace(date)
	if date == "" {
		return false
	}
	d, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return false
	}
	return d.Format("2006-01-02") >= now.Format("2006-01-02")
}

func validPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}

func validTimeOfDay(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTicketCode builds an opaque visually-unique code: time component in
// base36 plus a short random suffix. Collision resistance is not a goal.
func NewTicketCode(now time.Time) string {
	var sb strings.Builder
	sb.WriteString("TKT-")
	sb.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	for i := 0; i < 3; i++ {
		sb.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return sb.String()
}

// QRPayload is a deterministic projection of the current ticket fields; it is
// rebuilt on demand, never maintained separately.
type QRPayload struct {
	Code        string      `json:"codigo"`
	Passenger   string      `json:"pasajero"`
	DocumentID  string      `json:"documento"`
	TravelDate  string      `json:"fecha"`
	TravelTime  string      `json:"hora"`
	Vessel      string      `json:"embarcacion"`
	Adults      int         `json:"adultos"`
	Children    int         `json:"ninos"`
	Price       int64       `json:"total"`
	Reservation bool        `json:"reserva"`
	State       TicketState `json:"estado"`
	Timestamp   string      `json:"timestamp"`
}

// QRSnapshot projects the ticket into its QR payload.
func (t Ticket) QRSnapshot(now time.Time) QRPayload {
	return QRPayload{
		Code:        t.Code,
		Passenger:   t.Passenger.Name,
		DocumentID:  t.Passenger.DocumentID,
		TravelDate:  t.TravelDate,
		TravelTime:  t.TravelTime,
		Vessel:      t.Vessel.Display(),
		Adults:      t.Passengers.Adults,
		Children:    t.Passengers.Children,
		Price:       t.Quote.Amount,
		Reservation: t.ReservationMode,
		State:       t.State,
		Timestamp:   now.Format(time.RFC3339),
	}
}

// SaleRecord is the durable projection of a generated ticket. Created once on
// a successful Generate; afterwards only its status may change (to ANULADO).
type SaleRecord struct {
	ID              string      `json:"id,omitempty"`
	Code            string      `json:"code"`
	Name            string      `json:"name"`
	DocumentID      string      `json:"document_id"`
	Phone           string      `json:"phone,omitempty"`
	Email           string      `json:"email,omitempty"`
	TravelDate      string      `json:"travel_date"`
	TravelTime      string      `json:"travel_time"`
	Vessel          VesselClass `json:"vessel"`
	Adults          int         `json:"adults"`
	Children        int         `json:"children"`
	TotalPassengers int         `json:"total_passengers"`
	Price           int64       `json:"price"`
	ServiceType     string      `json:"service_type"`
	Status          TicketState `json:"status"`
	Operator        string      `json:"operator"`
	GeneratedAt     time.Time   `json:"generated_at"`
}

// ToSaleRecord flattens the ticket for the persistence bridge.
func (t Ticket) ToSaleRecord(operator string, now time.Time) SaleRecord {
	return SaleRecord{
		Code:            t.Code,
		Name:            strings.TrimSpace(t.Passenger.Name),
		DocumentID:      strings.TrimSpace(t.Passenger.DocumentID),
		Phone:           strings.TrimSpace(t.Passenger.Phone),
		Email:           strings.TrimSpace(t.Passenger.Email),
		TravelDate:      t.TravelDate,
		TravelTime:      t.TravelTime,
		Vessel:          t.Vessel,
		Adults:          t.Passengers.Adults,
		Children:        t.Passengers.Children,
		TotalPassengers: t.Passengers.Total(),
		Price:           t.Quote.Amount,
		ServiceType:     t.ServiceType(),
		Status:          StateGenerated,
		Operator:        operator,
		GeneratedAt:     now,
	}
}
