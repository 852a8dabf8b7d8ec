package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func TestStoreTransactions(t *testing.T) {
	ctx := context.Background()
	s := MustNew()
	t.Cleanup(func() { _ = s.Close() })
	salon := s.AddSalon(models.Salon{OwnerID: 1, Name: "Glamour", Active: true})

	t.Run("RollbackDiscardsRows", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithinTx(ctx, func(ctx context.Context) error {
			ap := &models.Appointment{AppointmentDate: "2025-06-02", AppointmentTime: "10:00", Status: "Pending"}
			domain.SalonOwner(salon.ID).Assign(ap)
			require.NoError(t, s.CreateAppointment(ctx, ap))

			// nested calls join the outer transaction
			return s.WithinTx(ctx, func(ctx context.Context) error { return boom })
		})
		require.ErrorIs(t, err, boom)

		apps, err := s.ListOccupying(ctx, domain.SalonOwner(salon.ID), "2025-06-02")
		require.NoError(t, err)
		assert.Empty(t, apps)
	})

	t.Run("SerializesWriters", func(t *testing.T) {
		c := s.AddCustomer(models.Customer{Name: "Ravi"})

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.WithinTx(ctx, func(ctx context.Context) error {
					if err := s.LockResource(ctx, domain.Resource{Owner: domain.SalonOwner(salon.ID)}); err != nil {
						return err
					}
					return s.IncrementCustomerBookings(ctx, c.ID)
				}))
			}()
		}
		wg.Wait()

		got, err := s.GetCustomer(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, got.TotalBookings)
	})

	t.Run("MissingRows", func(t *testing.T) {
		_, err := s.GetSalon(ctx, 999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		err = s.LockResource(ctx, domain.Resource{Owner: domain.SalonOwner(999)})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestSeeding(t *testing.T) {
	ctx := context.Background()
	s := MustNew()

	t.Run("InactiveStaysInactive", func(t *testing.T) {
		closed := s.AddSalon(models.Salon{OwnerID: 7, Name: "Closed", Active: false})
		assert.False(t, closed.Active)

		stored, err := s.GetSalon(ctx, closed.ID)
		require.NoError(t, err)
		assert.False(t, stored.Active)

		salonID := closed.ID
		off := s.AddStaff(models.Staff{SalonID: &salonID, Name: "Off", Active: false})
		st, err := s.GetStaff(ctx, off.ID)
		require.NoError(t, err)
		assert.False(t, st.Active)
	})

	t.Run("StoresAreIsolated", func(t *testing.T) {
		other := MustNew()
		c := s.AddCustomer(models.Customer{Name: "Dora"})

		_, err := other.GetCustomer(ctx, c.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("Sales", func(t *testing.T) {
		ap := &models.Appointment{ID: 3}
		require.NoError(t, s.RecordSale(ctx, ap, models.AppointmentService{Name: "Cut"}, revenue.Amounts{Gross: 500}))
		require.NoError(t, s.RecordSale(ctx, ap, models.AppointmentService{Name: "Color"}, revenue.Amounts{Gross: 900}))

		sales := s.Sales()
		require.Len(t, sales, 2)
		assert.Equal(t, "Cut", sales[0].ServiceName)
		assert.Equal(t, "Color", sales[1].ServiceName)
	})
}
