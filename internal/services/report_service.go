package services

import (
	"context"

	"muellepos/internal/domain"
	"muellepos/internal/utils"
)

// VesselTally summarizes one vessel class inside a daily report.
type VesselTally struct {
	Vessel     domain.VesselClass `json:"vessel"`
	Tickets    int                `json:"tickets"`
	Passengers int                `json:"passengers"`
	Revenue    int64              `json:"revenue"`
}

// DailyReport aggregates the sales of a single travel date. Cancelled sales
// are listed but excluded from revenue and passenger totals.
type DailyReport struct {
	Date       string              `json:"date"`
	Tickets    int                 `json:"tickets"`
	Cancelled  int                 `json:"cancelled"`
	Passengers int                 `json:"passengers"`
	Revenue    int64               `json:"revenue"`
	ByVessel   []VesselTally       `json:"by_vessel"`
	Sales      []domain.SaleRecord `json:"sales"`
}

// SaleLister is the read side the reports need from the store.
type SaleLister interface {
	ListByDate(ctx context.Context, date string) ([]domain.SaleRecord, error)
}

// ReportService builds end-of-day summaries from the sale store.
type ReportService struct {
	Store SaleLister
}

// Daily lists and aggregates the sales for a YYYY-MM-DD travel date.
func (s ReportService) Daily(ctx context.Context, date string) (DailyReport, error) {
	report := DailyReport{Date: date, Sales: []domain.SaleRecord{}}
	if _, err := utils.ParseDate(date); err != nil {
		return report, domain.ValidationError{Fields: []string{"fecha"}}
	}

	sales, err := s.Store.ListByDate(ctx, date)
	if err != nil {
		return report, ClassifyStoreError(err)
	}

	tallies := map[domain.VesselClass]*VesselTally{}
	for _, sale := range sales {
		report.Sales = append(report.Sales, sale)
		if sale.Status == domain.StateCancelled {
			report.Cancelled++
			continue
		}
		report.Tickets++
		report.Passengers += sale.TotalPassengers
		report.Revenue += sale.Price

		tally, ok := tallies[sale.Vessel]
		if !ok {
			tally = &VesselTally{Vessel: sale.Vessel}
			tallies[sale.Vessel] = tally
		}
		tally.Tickets++
		tally.Passengers += sale.TotalPassengers
		tally.Revenue += sale.Price
	}

	for _, vessel := range domain.AllVessels() {
		if tally, ok := tallies[vessel]; ok {
			report.ByVessel = append(report.ByVessel, *tally)
		}
	}
	return report, nil
}
