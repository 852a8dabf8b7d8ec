package loyalty

import (
	"context"
	"fmt"
	"math"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const (
	MinRedeemPoints = 100
	RedeemStep      = 100
)

// Ledger owns point balances. Debit returns false when the balance is
// insufficient at the time of the call.
type Ledger interface {
	Balance(ctx context.Context, customerID uint) (int, error)
	Debit(ctx context.Context, customerID uint, points int) (bool, error)
	Credit(ctx context.Context, customerID uint, points int) error
}

// Redemption is a customer's request to pay part of a booking with points.
// One point is worth one currency unit.
type Redemption struct {
	Points   int
	Discount float64
}

func (r Redemption) Requested() bool {
	return r.Points > 0 || r.Discount > 0
}

// Validate checks the redemption rules against a balance and booking total.
func (r Redemption) Validate(balance int, total float64) error {
	if r.Points < MinRedeemPoints {
		return httperr.Validation("points_below_minimum", fmt.Sprintf("Minimum %d points required to redeem", MinRedeemPoints))
	}
	if r.Points%RedeemStep != 0 {
		return httperr.Validation("points_not_multiple", fmt.Sprintf("Points must be redeemed in multiples of %d", RedeemStep))
	}
	if r.Points > balance {
		return httperr.Validation("insufficient_points", "Insufficient loyalty points")
	}
	if math.Abs(r.Discount-float64(r.Points)) > 1e-9 {
		return httperr.Validation("discount_mismatch", "Discount amount must equal the redeemed points")
	}
	if r.Discount > total {
		return httperr.Validation("discount_exceeds_total", "Discount cannot exceed the booking total")
	}
	return nil
}

// FinalAmount applies a discount and never goes below zero.
func FinalAmount(total, discount float64) float64 {
	return math.Max(0, total-discount)
}
