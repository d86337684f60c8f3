package domain

// Fare constants in whole Colombian pesos. The reservation fee is flat and
// independent of vessel and passenger count.
const (
	ReservationFee int64 = 10_000

	farePerAdultTaxi  int64 = 30_000
	farePerAdultBarge int64 = 30_000
	farePerAdultBoat  int64 = 30_000

	fareSportSmall    int64 = 250_000 // up to 4 adults
	fareSportMedium   int64 = 300_000 // 5 or 6 adults
	farePerAdultSport int64 = 50_000  // 7 adults and up

	fareYachtBlock    int64 = 400_000 // up to 10 adults
	farePerAdultYacht int64 = 30_000  // each adult beyond 10

	fareCargoPerBlock int64 = 200_000 // per started group of 6 adults
)

// PriceBasis records which rule produced the quote amount.
type PriceBasis string

const (
	BasisComputed    PriceBasis = "computed"
	BasisReservation PriceBasis = "reservation"
	BasisOverride    PriceBasis = "override"
)

// PriceQuote is the derived price of the current ticket. It is recomputed on
// every edit and never persisted on its own.
type PriceQuote struct {
	Amount int64      `json:"amount"`
	Basis  PriceBasis `json:"basis"`
}

// ComputePrice is the single pricing rule set. Precedence: a positive
// override beats everything, reservation mode charges the flat fee, otherwise
// the per-vessel formula applies over adults only. Children ride on the
// adults' fare. No vessel selected quotes zero.
func ComputePrice(vessel VesselClass, passengers PassengerCount, reservationMode bool, priceOverride int64) PriceQuote {
	if priceOverride > 0 {
		return PriceQuote{Amount: priceOverride, Basis: BasisOverride}
	}
	if reservationMode {
		return PriceQuote{Amount: ReservationFee, Basis: BasisReservation}
	}
	if vessel == VesselNone {
		return PriceQuote{Amount: 0, Basis: BasisComputed}
	}
	amount := vesselFare(vessel, passengers.Adults)
	if amount < 0 {
		amount = 0
	}
	return PriceQuote{Amount: amount, Basis: BasisComputed}
}

func vesselFare(vessel VesselClass, adults int) int64 {
	if adults <= 0 {
		return 0
	}
	a := int64(adults)
	switch vessel {
	case VesselTaxi:
		return a * farePerAdultTaxi
	case VesselBarge:
		return a * farePerAdultBarge
	case VesselBoat:
		return a * farePerAdultBoat
	case VesselSport:
		switch {
		case adults <= 4:
			return fareSportSmall
		case adults <= 6:
			return fareSportMedium
		default:
			return a * farePerAdultSport
		}
	case VesselYacht:
		if adults <= 10 {
			return fareYachtBlock
		}
		return fareYachtBlock + (a-10)*farePerAdultYacht
	case VesselCargo:
		blocks := (a + 5) / 6
		return blocks * fareCargoPerBlock
	}
	return 0
}

// PerAdult derives the per-person display price from a quote. Zero adults is
// a defined case, not a crash: the per-person price is simply zero.
func (q PriceQuote) PerAdult(adults int) int64 {
	if adults <= 0 {
		return 0
	}
	return q.Amount / int64(adults)
}
