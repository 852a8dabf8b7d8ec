package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

func TestRedemptionValidate(t *testing.T) {
	cases := []struct {
		name    string
		r       Redemption
		balance int
		total   float64
		code    string
	}{
		{"Valid", Redemption{Points: 200, Discount: 200}, 500, 1000, ""},
		{"BelowMinimum", Redemption{Points: 50, Discount: 50}, 500, 1000, "points_below_minimum"},
		{"NotMultiple", Redemption{Points: 150, Discount: 150}, 500, 1000, "points_not_multiple"},
		{"Insufficient", Redemption{Points: 300, Discount: 300}, 200, 1000, "insufficient_points"},
		{"Mismatch", Redemption{Points: 200, Discount: 150}, 500, 1000, "discount_mismatch"},
		{"ExceedsTotal", Redemption{Points: 200, Discount: 200}, 500, 150, "discount_exceeds_total"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.r.Validate(tc.balance, tc.total)
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
			assert.True(t, httperr.IsKind(err, httperr.KindValidation))
		})
	}
}

func TestFinalAmount(t *testing.T) {
	assert.InDelta(t, 800.0, FinalAmount(1000, 200), 0.001)
	assert.Zero(t, FinalAmount(100, 200))
}
