// Package notify delivers best-effort messages to customers, staff and
// owners. Delivery failures never reach the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Kind string

const (
	KindBookingCreated       Kind = "booking_created"
	KindAppointmentUpdated   Kind = "appointment_updated"
	KindRescheduled          Kind = "appointment_rescheduled"
	KindCancelled            Kind = "appointment_cancelled"
	KindCancellationReminder Kind = "cancellation_reminder"
	KindTimeBlocked          Kind = "time_blocked"
	KindLeaveRequested       Kind = "leave_requested"
	KindSwapRequested        Kind = "shift_swap_requested"
	KindSwapPeerResponded    Kind = "shift_swap_peer_responded"
	KindRequestApproved      Kind = "schedule_request_approved"
	KindRequestRejected      Kind = "schedule_request_rejected"
	KindCheckedIn            Kind = "checked_in"
)

type Recipient struct {
	ID    uint
	Role  string
	Name  string
	Email string
	Phone string
}

type Notification struct {
	To      Recipient
	Kind    Kind
	Title   string
	Message string
	Data    map[string]any
}

// Notifier is what use cases call. Implementations must not block long
// and must not fail.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Sender performs the actual delivery.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// Dispatcher hands notifications to a Sender on a background worker.
type Dispatcher struct {
	sender Sender
	log    zerolog.Logger
	queue  chan Notification
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(sender Sender, log zerolog.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		sender: sender,
		log:    log.With().Str("component", "notify").Logger(),
		queue:  make(chan Notification, buffer),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.sender.Send(ctx, n); err != nil {
			d.log.Error().Err(err).Str("kind", string(n.Kind)).Uint("recipient", n.To.ID).Msg("notification failed")
		}
		cancel()
	}
}

func (d *Dispatcher) Notify(_ context.Context, n Notification) {
	select {
	case d.queue <- n:
	default:
		metrics.IncDropped("notify")
		d.log.Warn().Str("kind", string(n.Kind)).Msg("notification queue full, dropping")
	}
}

func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
		d.wg.Wait()
	})
}

// LogSender writes notifications to the log. It stands in for a real
// email or push gateway.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, n Notification) error {
	s.Log.Info().
		Str("kind", string(n.Kind)).
		Uint("recipient_id", n.To.ID).
		Str("recipient_role", n.To.Role).
		Str("email", n.To.Email).
		Str("title", n.Title).
		Msg(n.Message)
	return nil
}

func ForCustomer(c *models.Customer) Recipient {
	return Recipient{ID: c.ID, Role: "customer", Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func ForStaff(st *models.Staff) Recipient {
	return Recipient{ID: st.ID, Role: "staff", Name: st.Name, Email: st.Email, Phone: st.Phone}
}

// ForSalon addresses the salon owner through the salon's contact details.
func ForSalon(s *models.Salon) Recipient {
	return Recipient{ID: s.OwnerID, Role: "owner", Name: s.Name, Email: s.Email, Phone: s.Phone}
}
