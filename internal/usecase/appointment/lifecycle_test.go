package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateAppointment(t *testing.T) {
	t.Run("CustomerNotesWhilePending", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		uc := NewUpdateAppointment(f.deps())

		out, err := uc.Execute(f.ctx, UpdateInput{
			Actor:         f.customerActor(),
			AppointmentID: ap.ID,
			CustomerNotes: ptr("Short on the sides"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Short on the sides", out.CustomerNotes)

		_, err = uc.Execute(f.ctx, UpdateInput{
			Actor:         f.customerActor(),
			AppointmentID: ap.ID,
			Status:        ptr(string(domain.StatusApproved)),
		})
		assert.True(t, httperr.IsBusiness(err, "field_not_allowed"))

		f.setStatus(t, ap, domain.StatusApproved)
		_, err = uc.Execute(f.ctx, UpdateInput{
			Actor:         f.customerActor(),
			AppointmentID: ap.ID,
			CustomerNotes: ptr("changed my mind"),
		})
		assert.True(t, httperr.IsBusiness(err, "not_editable"))
	})

	t.Run("ApprovalPlansReminder", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")

		out, err := NewUpdateAppointment(f.deps()).Execute(f.ctx, UpdateInput{
			Actor:         staffActor(f.staff),
			AppointmentID: ap.ID,
			Status:        ptr(string(domain.StatusApproved)),
			StaffNotes:    ptr("regular"),
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusApproved), out.Status)
		assert.Equal(t, []uint{ap.ID}, f.reminders.ids)
	})

	t.Run("IllegalTransition", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")

		_, err := NewUpdateAppointment(f.deps()).Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			Status:        ptr(string(domain.StatusCompleted)),
		})
		assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))

		stored, err := f.store.GetAppointment(f.ctx, ap.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusPending), stored.Status)
	})

	t.Run("ReassignChecksConflicts", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		f.book(t, f.other, bookingDay, "10:30")
		uc := NewUpdateAppointment(f.deps())

		_, err := uc.Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			StaffID:       &f.other.ID,
		})
		assert.True(t, httperr.IsKind(err, httperr.KindConflict))

		_, err = uc.Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			StaffID:       &f.nails.ID,
		})
		assert.True(t, httperr.IsBusiness(err, "staff_missing_skill"))
	})

	t.Run("OnlyAdminMovesTime", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		uc := NewUpdateAppointment(f.deps())

		_, err := uc.Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			Time:          ptr("15:00"),
		})
		assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

		out, err := uc.Execute(f.ctx, UpdateInput{
			Actor:         identity.Actor{ID: 1, Role: identity.RoleAdmin},
			AppointmentID: ap.ID,
			Time:          ptr("15:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, "15:00", out.AppointmentTime)
		assert.Equal(t, "16:00", out.EstimatedEndTime)
		assert.Equal(t, 900, out.StartMinutes)
	})

	t.Run("ConfirmedOnlyByPayment", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")

		for _, actor := range []identity.Actor{f.ownerActor(), staffActor(f.staff), {ID: 1, Role: identity.RoleAdmin}} {
			_, err := NewUpdateAppointment(f.deps()).Execute(f.ctx, UpdateInput{
				Actor:         actor,
				AppointmentID: ap.ID,
				Status:        ptr(string(domain.StatusConfirmed)),
			})
			assert.True(t, httperr.IsBusiness(err, "payment_required"), "role %s: %v", actor.Role, err)
		}

		stored, err := f.store.GetAppointment(f.ctx, ap.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusPending), stored.Status)
		assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	})

	t.Run("BlockedTimeStaysPut", func(t *testing.T) {
		f := newFixture(t)
		block := &models.Appointment{
			StaffID:         &f.staff.ID,
			AppointmentDate: bookingDay,
			AppointmentTime: "13:00",
			StartMinutes:    780,
			EndMinutes:      840,
			Status:          string(domain.StatusStaffBlocked),
			BlockReason:     "Lunch",
		}
		domain.SalonOwner(f.salon.ID).Assign(block)
		require.NoError(t, f.store.CreateAppointment(f.ctx, block))
		uc := NewUpdateAppointment(f.deps())

		_, err := uc.Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: block.ID,
			StaffID:       &f.other.ID,
		})
		assert.True(t, httperr.IsBusiness(err, "not_reschedulable"), "got %v", err)

		_, err = uc.Execute(f.ctx, UpdateInput{
			Actor:         identity.Actor{ID: 1, Role: identity.RoleAdmin},
			AppointmentID: block.ID,
			Time:          ptr("15:00"),
		})
		assert.True(t, httperr.IsBusiness(err, "not_reschedulable"), "got %v", err)

		stored, err := f.store.GetAppointment(f.ctx, block.ID)
		require.NoError(t, err)
		assert.Equal(t, f.staff.ID, *stored.StaffID)
		assert.Equal(t, "13:00", stored.AppointmentTime)
	})

	t.Run("MoveTakesOwnerLock", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		locks := &recordingLocker{}
		d := f.deps()
		d.Locker = locks

		_, err := NewUpdateAppointment(d).Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			StaffID:       &f.other.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{domain.SalonOwner(f.salon.ID).String() + ":" + bookingDay}, locks.keys)

		_, err = NewUpdateAppointment(d).Execute(f.ctx, UpdateInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			SalonNotes:    ptr("VIP"),
		})
		require.NoError(t, err)
		assert.Len(t, locks.keys, 1, "notes alone take no lock")
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")

		_, err := NewUpdateAppointment(f.deps()).Execute(f.ctx, UpdateInput{
			Actor:         identity.Actor{ID: 999, Role: identity.RoleCustomer},
			AppointmentID: ap.ID,
			CustomerNotes: ptr("hi"),
		})
		assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	})
}

func TestRescheduleAppointment(t *testing.T) {
	t.Run("MovesAndNotes", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")

		out, err := NewRescheduleAppointment(f.deps()).Execute(f.ctx, RescheduleInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			Date:          bookingDay,
			Time:          "14:00",
			Reason:        "Customer asked",
		})
		require.NoError(t, err)
		assert.Equal(t, "14:00", out.AppointmentTime)
		assert.Contains(t, out.SalonNotes, "Rescheduled from 2025-06-04 at 10:00 to 2025-06-04 at 14:00 (Customer asked)")
	})

	t.Run("OverlapWithItselfIsFine", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")

		out, err := NewRescheduleAppointment(f.deps()).Execute(f.ctx, RescheduleInput{
			Actor:         f.ownerActor(),
			AppointmentID: ap.ID,
			Date:          bookingDay,
			Time:          "10:30",
		})
		require.NoError(t, err)
		assert.Equal(t, 630, out.StartMinutes)
	})

	t.Run("ConflictAndNewStaff", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		f.book(t, f.staff, bookingDay, "14:00")
		uc := NewRescheduleAppointment(f.deps())

		_, err := uc.Execute(f.ctx, RescheduleInput{
			Actor: f.ownerActor(), AppointmentID: ap.ID, Date: bookingDay, Time: "14:30",
		})
		assert.True(t, httperr.IsKind(err, httperr.KindConflict))

		out, err := uc.Execute(f.ctx, RescheduleInput{
			Actor: f.ownerActor(), AppointmentID: ap.ID, Date: bookingDay, Time: "14:30", StaffID: &f.other.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, f.other.ID, *out.StaffID)
	})

	t.Run("OwnersOnly", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		uc := NewRescheduleAppointment(f.deps())

		_, err := uc.Execute(f.ctx, RescheduleInput{
			Actor: staffActor(f.staff), AppointmentID: ap.ID, Date: bookingDay, Time: "14:00",
		})
		assert.True(t, httperr.IsBusiness(err, "owners_only"))

		_, err = uc.Execute(f.ctx, RescheduleInput{
			Actor:         identity.Actor{ID: 555, Role: identity.RoleOwner, SalonID: f.salon.ID},
			AppointmentID: ap.ID, Date: bookingDay, Time: "14:00",
		})
		assert.True(t, httperr.IsBusiness(err, "not_owner"))
	})

	t.Run("ReminderMovesWithApprovedBooking", func(t *testing.T) {
		f := newFixture(t)
		ap := f.setStatus(t, f.book(t, f.staff, bookingDay, "10:00"), domain.StatusApproved)
		require.Len(t, f.reminders.ids, 1)

		_, err := NewRescheduleAppointment(f.deps()).Execute(f.ctx, RescheduleInput{
			Actor: f.ownerActor(), AppointmentID: ap.ID, Date: "2025-06-05", Time: "10:00",
		})
		require.NoError(t, err)
		assert.Len(t, f.reminders.ids, 2)
	})
}

func TestCancelAppointment(t *testing.T) {
	t.Run("RefundsPoints", func(t *testing.T) {
		f := newFixture(t)
		in := f.bookInput(f.staff, bookingDay, "10:00")
		in.Redemption = redeem(200)
		ap, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
		require.NoError(t, err)
		require.Equal(t, 300, f.balance(t))

		uc := NewCancelAppointment(f.deps())
		out, err := uc.Execute(f.ctx, CancelInput{Actor: f.customerActor(), AppointmentID: ap.ID})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), out.Status)
		assert.NotNil(t, out.CancelledAt)
		assert.Equal(t, 500, f.balance(t))

		_, err = uc.Execute(f.ctx, CancelInput{Actor: f.customerActor(), AppointmentID: ap.ID})
		assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))
		assert.Equal(t, 500, f.balance(t))

		// The freed slot can be booked again.
		f.book(t, f.staff, bookingDay, "10:00")
	})

	t.Run("NoticeWindow", func(t *testing.T) {
		f := newFixture(t)
		ap := f.book(t, f.staff, bookingDay, "10:00")
		f.now = time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

		_, err := NewCancelAppointment(f.deps()).Execute(f.ctx, CancelInput{Actor: f.customerActor(), AppointmentID: ap.ID})
		assert.True(t, httperr.IsBusiness(err, "notice_period"))

		out, err := NewCancelAppointment(f.deps()).Execute(f.ctx, CancelInput{
			Actor: f.ownerActor(), AppointmentID: ap.ID, Reason: "staff sick",
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), out.Status)
		assert.Contains(t, out.SalonNotes, "staff sick")
	})
}

func TestRateAppointment(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, f.staff, bookingDay, "10:00")
	rate := NewRateAppointment(f.deps())

	_, err := rate.Execute(f.ctx, RateInput{Actor: f.customerActor(), AppointmentID: ap.ID, Rating: 5})
	assert.True(t, httperr.IsBusiness(err, "not_completed"))
	stored, err := f.store.GetAppointment(f.ctx, ap.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Rating)

	f.setStatus(t, ap, domain.StatusApproved)
	f.setStatus(t, ap, domain.StatusInProgress)
	_, err = NewCompleteAppointment(f.deps()).Execute(f.ctx, f.customerActor(), ap.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	done, err := NewCompleteAppointment(f.deps()).Execute(f.ctx, staffActor(f.staff), ap.ID)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	_, err = rate.Execute(f.ctx, RateInput{Actor: f.customerActor(), AppointmentID: ap.ID, Rating: 6})
	assert.True(t, httperr.IsBusiness(err, "invalid_rating"))

	out, err := rate.Execute(f.ctx, RateInput{Actor: f.customerActor(), AppointmentID: ap.ID, Rating: 5, Feedback: " great "})
	require.NoError(t, err)
	assert.Equal(t, 5, *out.Rating)
	assert.Equal(t, "great", out.Feedback)

	_, err = rate.Execute(f.ctx, RateInput{Actor: f.customerActor(), AppointmentID: ap.ID, Rating: 1})
	assert.True(t, httperr.IsBusiness(err, "already_reviewed"))
	stored, err = f.store.GetAppointment(f.ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *stored.Rating)
}

func TestCheckIn(t *testing.T) {
	f := newFixture(t)
	today := "2025-06-02"
	later := f.setStatus(t, f.book(t, f.staff, "2025-06-03", "10:00"), domain.StatusApproved)
	first := f.setStatus(t, f.book(t, f.staff, today, "15:00"), domain.StatusApproved)
	uc := NewCheckIn(f.deps())

	res, err := uc.Execute(f.ctx, CheckInInput{Actor: f.customerActor(), SalonID: f.salon.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, res.Appointment.ID)
	assert.Equal(t, string(domain.StatusInProgress), res.Appointment.Status)
	assert.NotNil(t, res.Appointment.CheckInTime)

	assert.Equal(t, "GLA001", res.Queue.TokenNumber)
	assert.Equal(t, string(queue.StatusArrived), res.Queue.Status)
	assert.Equal(t, 1, res.Queue.QueuePosition)
	assert.Equal(t, today, res.Queue.QueueDay)

	// The next approved booking is tomorrow; today's entry is reused.
	res, err = uc.Execute(f.ctx, CheckInInput{Actor: f.customerActor(), SalonID: f.salon.ID})
	require.NoError(t, err)
	assert.Equal(t, later.ID, res.Appointment.ID)
	assert.Equal(t, "GLA001", res.Queue.TokenNumber)

	_, err = uc.Execute(f.ctx, CheckInInput{Actor: f.customerActor(), SalonID: f.salon.ID})
	assert.True(t, httperr.IsBusiness(err, "no_approved_appointment"))

	_, err = uc.Execute(f.ctx, CheckInInput{Actor: f.ownerActor(), SalonID: f.salon.ID})
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
}

func TestConfirmPayment(t *testing.T) {
	t.Run("PaidRecordsSales", func(t *testing.T) {
		f := newFixture(t)
		in := f.bookInput(f.staff, bookingDay, "10:00")
		in.Items = append(in.Items, domain.Offer{Name: "Wash", Category: "Hair", Price: 200, Duration: 30})
		in.Redemption = redeem(300)
		ap, err := NewBookAppointment(f.deps()).Execute(f.ctx, in)
		require.NoError(t, err)

		uc := NewConfirmPayment(f.deps())
		out, err := uc.Execute(f.ctx, ConfirmPaymentInput{
			Actor: f.customerActor(), AppointmentID: ap.ID, OrderID: "ord-1", PaymentID: "pay-1", Signature: "sig",
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), out.Status)
		assert.Equal(t, domain.PaymentPaid, out.PaymentStatus)
		assert.Equal(t, "ord-1", out.PaymentOrderID)

		sales := f.store.Sales()
		require.Len(t, sales, 2)
		var gross, discount float64
		for _, s := range sales {
			gross += s.Amount
			discount += s.Discount
		}
		assert.InDelta(t, 1200, gross, 1e-9)
		assert.InDelta(t, 300, discount, 1e-9)

		_, err = uc.Execute(f.ctx, ConfirmPaymentInput{
			Actor: f.customerActor(), AppointmentID: ap.ID, OrderID: "ord-1", PaymentID: "pay-1",
		})
		assert.True(t, httperr.IsBusiness(err, "already_paid"))
		assert.Len(t, f.store.Sales(), 2)
	})

	t.Run("BadSignature", func(t *testing.T) {
		f := newFixture(t)
		f.payments = fakeVerifier{ok: false}
		ap := f.book(t, f.staff, bookingDay, "10:00")

		_, err := NewConfirmPayment(f.deps()).Execute(f.ctx, ConfirmPaymentInput{
			Actor: f.customerActor(), AppointmentID: ap.ID, OrderID: "o", PaymentID: "p",
		})
		assert.True(t, httperr.IsBusiness(err, "invalid_signature"))

		stored, err := f.store.GetAppointment(f.ctx, ap.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusPending), stored.Status)
		assert.Empty(t, f.store.Sales())
	})

	t.Run("ProviderDown", func(t *testing.T) {
		f := newFixture(t)
		f.payments = fakeVerifier{err: errors.New("timeout")}
		ap := f.book(t, f.staff, bookingDay, "10:00")

		_, err := NewConfirmPayment(f.deps()).Execute(f.ctx, ConfirmPaymentInput{
			Actor: f.customerActor(), AppointmentID: ap.ID, OrderID: "o", PaymentID: "p",
		})
		assert.True(t, httperr.IsKind(err, httperr.KindFatal))
	})
}

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.staff, bookingDay, "10:00")
	uc := NewGetAvailability(f.deps())

	starts := func(slots []domain.TimeSlot) []string {
		out := make([]string, 0, len(slots))
		for _, s := range slots {
			out = append(out, s.Start)
		}
		return out
	}

	slots, err := uc.Execute(f.ctx, domain.AvailabilityInput{
		Owner: domain.SalonOwner(f.salon.ID), StaffID: &f.staff.ID, Date: bookingDay, Duration: 60,
	})
	require.NoError(t, err)
	got := starts(slots)
	assert.Len(t, got, 14)
	assert.Contains(t, got, "09:00")
	assert.Contains(t, got, "11:00")
	assert.Contains(t, got, "17:00")
	assert.NotContains(t, got, "09:30")
	assert.NotContains(t, got, "10:30")

	// Someone else is free at 10:00.
	slots, err = uc.Execute(f.ctx, domain.AvailabilityInput{
		Owner: domain.SalonOwner(f.salon.ID), StaffID: &f.other.ID, Date: bookingDay, Duration: 60,
	})
	require.NoError(t, err)
	assert.Contains(t, starts(slots), "10:00")

	t.Run("TodaySkipsStartedSlots", func(t *testing.T) {
		f.now = time.Date(2025, 6, 2, 12, 10, 0, 0, time.UTC)
		slots, err := uc.Execute(f.ctx, domain.AvailabilityInput{
			Owner: domain.SalonOwner(f.salon.ID), Date: "2025-06-02", Duration: 60,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, "12:30", slots[0].Start)
	})

	t.Run("PastDateIsEmpty", func(t *testing.T) {
		slots, err := uc.Execute(f.ctx, domain.AvailabilityInput{
			Owner: domain.SalonOwner(f.salon.ID), Date: "2025-05-30",
		})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("StaffFromElsewhere", func(t *testing.T) {
		stranger := f.store.AddStaff(models.Staff{Name: "X", Active: true})
		_, err := uc.Execute(f.ctx, domain.AvailabilityInput{
			Owner: domain.SalonOwner(f.salon.ID), StaffID: &stranger.ID, Date: bookingDay,
		})
		assert.True(t, httperr.IsBusiness(err, "staff_not_in_salon"))
	})
}

func TestListAppointments(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.staff, bookingDay, "10:00")
	f.book(t, f.other, bookingDay, "09:00")
	f.book(t, f.staff, "2025-06-20", "10:00")
	uc := NewListAppointments(f.deps())

	mine, err := uc.ByDate(f.ctx, staffActor(f.staff), bookingDay)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "10:00", mine[0].StartTime)
	assert.Equal(t, []string{"Haircut"}, mine[0].Services)

	all, err := uc.ByDate(f.ctx, f.ownerActor(), bookingDay)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "09:00", all[0].StartTime)

	month, err := uc.ByMonth(f.ctx, f.ownerActor(), 2025, 6)
	require.NoError(t, err)
	assert.Len(t, month, 3)

	_, err = uc.ByDate(f.ctx, f.customerActor(), bookingDay)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
}
