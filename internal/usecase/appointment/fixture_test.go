package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	queueuc "github.com/BruksfildServices01/salon-scheduler/internal/usecase/queue"
)

const (
	ownerUserID = 100
	bookingDay  = "2025-06-04"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Kind)
	}
	return out
}

type recordingReminders struct {
	mu  sync.Mutex
	ids []uint
}

func (r *recordingReminders) ScheduleCancellationReminder(_ context.Context, ap *models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, ap.ID)
}

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingLocker) Lock(_ context.Context, key string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return func() {}, nil
}

type fakeVerifier struct {
	ok  bool
	err error
}

func (f fakeVerifier) VerifySignature(context.Context, string, string, string) (bool, error) {
	return f.ok, f.err
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	now   time.Time

	salon    *models.Salon
	staff    *models.Staff
	other    *models.Staff
	nails    *models.Staff
	customer *models.Customer
	haircut  *models.Service

	notifier  *recordingNotifier
	reminders *recordingReminders
	payments  fakeVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:       context.Background(),
		store:     memory.MustNew(),
		now:       time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		notifier:  &recordingNotifier{},
		reminders: &recordingReminders{},
		payments:  fakeVerifier{ok: true},
	}

	f.salon = f.store.AddSalon(models.Salon{
		OwnerID:                 ownerUserID,
		Name:                    "Glamour Studio",
		Timezone:                "UTC",
		OpenTime:                "09:00",
		CloseTime:               "18:00",
		CancellationNoticeHours: 24,
		Active:                  true,
	})
	salonID := f.salon.ID
	f.staff = f.store.AddStaff(models.Staff{SalonID: &salonID, Name: "Ana", Skills: "Hair,Color", Active: true})
	f.other = f.store.AddStaff(models.Staff{SalonID: &salonID, Name: "Bia", Skills: "All", Active: true})
	f.nails = f.store.AddStaff(models.Staff{SalonID: &salonID, Name: "Caio", Skills: "Nails", Active: true})
	f.customer = f.store.AddCustomer(models.Customer{Name: "Dora", Email: "dora@example.com", LoyaltyPoints: 500})

	f.haircut = &models.Service{SalonID: &salonID, Name: "Haircut", Category: "Hair", DurationMin: 60, Price: 1000, Active: true}
	require.NoError(t, f.store.SaveService(f.ctx, f.haircut))

	return f
}

func (f *fixture) deps() Deps {
	return Deps{
		Repo:      f.store,
		Ledger:    f.store,
		Sales:     f.store,
		Payments:  f.payments,
		Queue:     queueuc.NewBridge(f.store, f.store, 5, zerolog.Nop()),
		Notifier:  f.notifier,
		Reminders: f.reminders,
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return f.now },
	}
}

func (f *fixture) customerActor() identity.Actor {
	return identity.Actor{ID: f.customer.ID, Role: identity.RoleCustomer}
}

func (f *fixture) ownerActor() identity.Actor {
	return identity.Actor{ID: ownerUserID, Role: identity.RoleOwner, SalonID: f.salon.ID}
}

func staffActor(st *models.Staff) identity.Actor {
	return identity.Actor{ID: st.ID, Role: identity.RoleStaff}
}

func (f *fixture) bookInput(staff *models.Staff, date, tod string) BookInput {
	in := BookInput{
		Actor:   f.customerActor(),
		SalonID: f.salon.ID,
		Items:   []domain.LineItem{domain.Catalog{ServiceID: f.haircut.ID}},
		Date:    date,
		Time:    tod,
	}
	if staff != nil {
		id := staff.ID
		in.StaffID = &id
	}
	return in
}

func (f *fixture) book(t *testing.T, staff *models.Staff, date, tod string) *models.Appointment {
	t.Helper()
	ap, err := NewBookAppointment(f.deps()).Execute(f.ctx, f.bookInput(staff, date, tod))
	require.NoError(t, err)
	return ap
}

func (f *fixture) setStatus(t *testing.T, ap *models.Appointment, to domain.Status) *models.Appointment {
	t.Helper()
	status := string(to)
	out, err := NewUpdateAppointment(f.deps()).Execute(f.ctx, UpdateInput{
		Actor:         f.ownerActor(),
		AppointmentID: ap.ID,
		Status:        &status,
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) balance(t *testing.T) int {
	t.Helper()
	b, err := f.store.Balance(f.ctx, f.customer.ID)
	require.NoError(t, err)
	return b
}

func redeem(points int) loyalty.Redemption {
	return loyalty.Redemption{Points: points, Discount: float64(points)}
}
