package revenue

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Amounts struct {
	Gross    float64
	Discount float64
}

// Recorder stores one sale per paid service line. It is write-only from the
// scheduler's point of view.
type Recorder interface {
	RecordSale(ctx context.Context, ap *models.Appointment, line models.AppointmentService, amounts Amounts) error
}

// Split spreads an appointment-level discount over its lines in proportion
// to their price so the per-line discounts add up to the total discount.
func Split(ap *models.Appointment) []Amounts {
	out := make([]Amounts, len(ap.Services))
	var assigned float64
	for i, line := range ap.Services {
		out[i].Gross = line.Price
		if ap.TotalAmount <= 0 || ap.DiscountFromPoints <= 0 {
			continue
		}
		if i == len(ap.Services)-1 {
			out[i].Discount = ap.DiscountFromPoints - assigned
			continue
		}
		d := ap.DiscountFromPoints * line.Price / ap.TotalAmount
		out[i].Discount = d
		assigned += d
	}
	return out
}
