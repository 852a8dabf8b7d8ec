package appointment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

func TestBookAppointment(t *testing.T) {
	t.Run("BackToBackAllowedOverlapRejected", func(t *testing.T) {
		f := newFixture(t)
		uc := NewBookAppointment(f.deps())

		first := f.book(t, f.staff, bookingDay, "10:00")
		assert.Equal(t, string(domain.StatusPending), first.Status)
		assert.Equal(t, domain.SourceWebsite, first.Source)
		assert.Equal(t, "11:00", first.EstimatedEndTime)
		assert.True(t, first.IsFirstVisit)

		_, err := uc.Execute(f.ctx, f.bookInput(f.staff, bookingDay, "10:30"))
		require.Error(t, err)
		assert.True(t, httperr.IsBusiness(err, "time_conflict"))
		assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))

		second := f.book(t, f.staff, bookingDay, "11:00")
		assert.False(t, second.IsFirstVisit)

		// Another staff member is a separate resource.
		f.book(t, f.other, bookingDay, "10:30")

		c, err := f.store.GetCustomer(f.ctx, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, c.TotalBookings)

		assert.Contains(t, f.notifier.kinds(), notify.KindBookingCreated)
	})

	t.Run("NoStaffUsesWholeSalon", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, f.staff, bookingDay, "10:00")

		_, err := NewBookAppointment(f.deps()).Execute(f.ctx, f.bookInput(nil, bookingDay, "10:30"))
		assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	})

	t.Run("PastDate", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewBookAppointment(f.deps()).Execute(f.ctx, f.bookInput(f.staff, "2025-06-01", "10:00"))
		assert.True(t, httperr.IsBusiness(err, "past_date"))
	})

	t.Run("InactiveSalon", func(t *testing.T) {
		f := newFixture(t)
		closed := f.store.AddSalon(models.Salon{OwnerID: 7, Name: "Closed", Active: false})

		in := f.bookInput(nil, bookingDay, "10:00")
		in.SalonID = closed.ID
		in.Items = []domain.LineItem{domain.Offer{Name: "Trim", Price: 50}}

		_, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
		assert.True(t, httperr.IsBusiness(err, "salon_inactive"))
	})

	t.Run("StaffWithoutSkill", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewBookAppointment(f.deps()).Execute(f.ctx, f.bookInput(f.nails, bookingDay, "10:00"))
		assert.True(t, httperr.IsBusiness(err, "staff_missing_skill"))
	})

	t.Run("OnlyCustomers", func(t *testing.T) {
		f := newFixture(t)
		in := f.bookInput(f.staff, bookingDay, "10:00")
		in.Actor = f.ownerActor()

		_, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
		assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	})

	t.Run("IdempotencyKeyReplays", func(t *testing.T) {
		f := newFixture(t)
		uc := NewBookAppointment(f.deps())

		in := f.bookInput(f.staff, bookingDay, "10:00")
		in.IdempotencyKey = "retry-1"

		first, err := uc.Execute(f.ctx, in)
		require.NoError(t, err)
		again, err := uc.Execute(f.ctx, in)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		list, err := f.store.ListOccupying(f.ctx, domain.SalonOwner(f.salon.ID), bookingDay)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		c, err := f.store.GetCustomer(f.ctx, f.customer.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, c.TotalBookings)
	})
}

func TestBookWithPoints(t *testing.T) {
	t.Run("RedeemsAgainstTotal", func(t *testing.T) {
		f := newFixture(t)
		in := f.bookInput(f.staff, bookingDay, "10:00")
		in.Redemption = redeem(200)

		ap, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
		require.NoError(t, err)

		assert.Equal(t, 1000.0, ap.TotalAmount)
		assert.Equal(t, 800.0, ap.FinalAmount)
		assert.Equal(t, 200.0, ap.DiscountFromPoints)
		assert.Equal(t, 200, ap.PointsRedeemed)
		assert.InDelta(t, ap.TotalAmount, ap.FinalAmount+ap.DiscountFromPoints, 1e-9)
		assert.Equal(t, 300, f.balance(t))
	})

	t.Run("CreditedBackOnConflict", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, f.staff, bookingDay, "10:00")

		in := f.bookInput(f.staff, bookingDay, "10:00")
		in.Redemption = redeem(200)
		_, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
		assert.True(t, httperr.IsKind(err, httperr.KindConflict))
		assert.Equal(t, 500, f.balance(t))
	})

	t.Run("RulesChecked", func(t *testing.T) {
		cases := []struct {
			name     string
			points   int
			discount float64
			code     string
		}{
			{"BelowMinimum", 50, 50, "points_below_minimum"},
			{"NotMultiple", 150, 150, "points_not_multiple"},
			{"OverBalance", 600, 600, "insufficient_points"},
			{"DiscountMismatch", 200, 150, "discount_mismatch"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				in := f.bookInput(f.staff, bookingDay, "10:00")
				in.Redemption.Points = tc.points
				in.Redemption.Discount = tc.discount

				_, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
				assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
				assert.Equal(t, 500, f.balance(t))
			})
		}
	})
}

func TestConcurrentBookingsNeverOverlap(t *testing.T) {
	f := newFixture(t)
	uc := NewBookAppointment(f.deps())

	const n = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half the requests overlap the other half by 30 minutes.
			tod := "10:00"
			if i%2 == 1 {
				tod = "10:30"
			}
			_, err := uc.Execute(f.ctx, f.bookInput(f.staff, bookingDay, tod))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case httperr.IsKind(err, httperr.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)

	list, err := f.store.ListOccupying(f.ctx, domain.SalonOwner(f.salon.ID), bookingDay)
	require.NoError(t, err)
	ivs := domain.IntervalsOf(list)
	for i := range ivs {
		for j := i + 1; j < len(ivs); j++ {
			overlap := ivs[i].Start < ivs[j].End && ivs[j].Start < ivs[i].End
			assert.False(t, overlap, "intervals %d and %d overlap", ivs[i].AppointmentID, ivs[j].AppointmentID)
		}
	}
}

func TestConcurrentAssignedAndUnassignedBookings(t *testing.T) {
	f := newFixture(t)
	uc := NewBookAppointment(f.deps())

	const n = 12
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		assigned   []*models.Appointment
		unassigned []*models.Appointment
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			staff := f.staff
			if i%2 == 1 {
				staff = nil
			}
			ap, err := uc.Execute(f.ctx, f.bookInput(staff, bookingDay, "10:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && staff == nil:
				unassigned = append(unassigned, ap)
			case err == nil:
				assigned = append(assigned, ap)
			case !httperr.IsKind(err, httperr.KindConflict):
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, assigned, 1)
	assert.LessOrEqual(t, len(unassigned), 1)

	// An unassigned booking is only placed while the owner has no
	// overlapping interval, so it must predate the staff booking.
	if len(unassigned) == 1 {
		assert.Less(t, unassigned[0].ID, assigned[0].ID)
	}
}
