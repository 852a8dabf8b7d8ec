package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salon_scheduler"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	conflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduling_conflicts_total",
			Help:      "Rejected placements by operation and reason code.",
		},
		[]string{"operation", "code"},
	)

	droppedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Fire-and-forget events dropped because a queue was full.",
		},
		[]string{"queue"},
	)
)

// Register registers the collectors with the default registry. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, conflicts, droppedEvents)
	})
}

func IncHTTP(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

func IncConflict(operation, code string) {
	conflicts.WithLabelValues(operation, code).Inc()
}

func IncDropped(queue string) {
	droppedEvents.WithLabelValues(queue).Inc()
}
