package appointment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Repository is the appointment store. Lookups of missing rows return
// gorm.ErrRecordNotFound.
type Repository interface {
	// -------- Transactions --------

	// WithinTx runs fn in one transaction; the ctx passed to fn carries
	// it. Nested calls join the outer transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	// LockResource serializes writers of one resource until the
	// surrounding transaction ends.
	LockResource(ctx context.Context, res Resource) error

	// -------- Owners --------
	GetSalon(ctx context.Context, id uint) (*models.Salon, error)
	SaveSalon(ctx context.Context, salon *models.Salon) error
	GetFreelancer(ctx context.Context, id uint) (*models.Freelancer, error)

	// -------- Staff / Customer --------
	GetStaff(ctx context.Context, id uint) (*models.Staff, error)
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	IncrementCustomerBookings(ctx context.Context, customerID uint) error

	// -------- Catalog --------
	GetService(ctx context.Context, owner Owner, serviceID uint) (*models.Service, error)
	ListServices(ctx context.Context, owner Owner, activeOnly bool) ([]models.Service, error)
	SaveService(ctx context.Context, svc *models.Service) error

	// -------- Appointment --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	FindByIdempotencyKey(ctx context.Context, customerID uint, key string) (*models.Appointment, error)
	HasPriorBooking(ctx context.Context, customerID uint, owner Owner) (bool, error)

	// NextApprovedForCustomer returns the earliest Approved appointment
	// at the salon dated fromDate or later.
	NextApprovedForCustomer(ctx context.Context, customerID, salonID uint, fromDate string) (*models.Appointment, error)

	// -------- Availability --------

	// ListOccupying returns every occupying appointment of the owner on date.
	ListOccupying(ctx context.Context, owner Owner, date string) ([]models.Appointment, error)

	// ListForPeriod returns the owner's appointments with fromDate <= date < toDate,
	// optionally narrowed to one staff member, ordered by date and time.
	ListForPeriod(ctx context.Context, owner Owner, staffID *uint, fromDate, toDate string) ([]models.Appointment, error)
}

// NotFound converts a missing-row error into a NotFound business error.
func NotFound(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.NotFoundErr(code, message)
	}
	return err
}
