package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(bookings.WithLabelValues("created"))
	IncBooking("created")
	assert.InDelta(t, before+1, testutil.ToFloat64(bookings.WithLabelValues("created")), 0.0001)

	assert.NotPanics(t, func() {
		IncHTTP("", 404)
		IncHTTP("/api/bookings", 201)
		IncConflict("book", "time_conflict")
		IncDropped("audit")
	})
}
