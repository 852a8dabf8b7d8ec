package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func ownerColumn(o domain.Owner) string {
	if o.Kind == domain.OwnerFreelancer {
		return "freelancer_id"
	}
	return "salon_id"
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *AppointmentGormRepository) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	return withinTx(ctx, r.db, fn)
}

// LockResource row-locks the salon or freelancer, then the staff member
// when one is assigned. Unassigned bookings clash with every staff
// interval of the owner, so all writers of one owner meet on the owner
// row first. SQLite ignores the clause.
func (r *AppointmentGormRepository) LockResource(
	ctx context.Context,
	res domain.Resource,
) error {
	lock := func() *gorm.DB {
		return conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Select("id")
	}

	var err error
	if res.Owner.Kind == domain.OwnerFreelancer {
		var f models.Freelancer
		err = lock().First(&f, res.Owner.ID).Error
	} else {
		var s models.Salon
		err = lock().First(&s, res.Owner.ID).Error
	}
	if err != nil || res.StaffID == nil {
		return err
	}

	var st models.Staff
	return lock().First(&st, *res.StaffID).Error
}

// --------------------------------------------------
// Owners
// --------------------------------------------------

func (r *AppointmentGormRepository) GetSalon(ctx context.Context, id uint) (*models.Salon, error) {
	var salon models.Salon
	if err := conn(ctx, r.db).First(&salon, id).Error; err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *AppointmentGormRepository) SaveSalon(ctx context.Context, salon *models.Salon) error {
	return conn(ctx, r.db).Save(salon).Error
}

func (r *AppointmentGormRepository) GetFreelancer(ctx context.Context, id uint) (*models.Freelancer, error) {
	var f models.Freelancer
	if err := conn(ctx, r.db).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// --------------------------------------------------
// Staff / Customer
// --------------------------------------------------

func (r *AppointmentGormRepository) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	var st models.Staff
	if err := conn(ctx, r.db).First(&st, id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *AppointmentGormRepository) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := conn(ctx, r.db).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AppointmentGormRepository) IncrementCustomerBookings(ctx context.Context, customerID uint) error {
	return conn(ctx, r.db).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("total_bookings", gorm.Expr("total_bookings + 1")).
		Error
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	owner domain.Owner,
	serviceID uint,
) (*models.Service, error) {
	var svc models.Service
	if err := conn(ctx, r.db).
		Where("id = ? AND "+ownerColumn(owner)+" = ?", serviceID, owner.ID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) ListServices(
	ctx context.Context,
	owner domain.Owner,
	activeOnly bool,
) ([]models.Service, error) {
	q := conn(ctx, r.db).Where(ownerColumn(owner)+" = ?", owner.ID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *AppointmentGormRepository) SaveService(ctx context.Context, svc *models.Service) error {
	return conn(ctx, r.db).Save(svc).Error
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return conn(ctx, r.db).Create(ap).Error
}

func (r *AppointmentGormRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := conn(ctx, r.db).Preload("Services").First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(ap).Error
}

func (r *AppointmentGormRepository) FindByIdempotencyKey(
	ctx context.Context,
	customerID uint,
	key string,
) (*models.Appointment, error) {
	var ap models.Appointment
	if err := conn(ctx, r.db).
		Preload("Services").
		Where("customer_id = ? AND idempotency_key = ?", customerID, key).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) HasPriorBooking(
	ctx context.Context,
	customerID uint,
	owner domain.Owner,
) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&models.Appointment{}).
		Where("customer_id = ? AND "+ownerColumn(owner)+" = ?", customerID, owner.ID).
		Where("status <> ?", string(domain.StatusCancelled)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) NextApprovedForCustomer(
	ctx context.Context,
	customerID uint,
	salonID uint,
	fromDate string,
) (*models.Appointment, error) {
	var ap models.Appointment
	if err := conn(ctx, r.db).
		Preload("Services").
		Where("customer_id = ? AND salon_id = ? AND status = ?", customerID, salonID, string(domain.StatusApproved)).
		Where("appointment_date >= ?", fromDate).
		Order("appointment_date ASC, start_minutes ASC").
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) ListOccupying(
	ctx context.Context,
	owner domain.Owner,
	date string,
) ([]models.Appointment, error) {
	var apps []models.Appointment
	if err := conn(ctx, r.db).
		Where(ownerColumn(owner)+" = ? AND appointment_date = ?", owner.ID, date).
		Where("status IN ?", domain.OccupyingStrings()).
		Order("start_minutes ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListForPeriod(
	ctx context.Context,
	owner domain.Owner,
	staffID *uint,
	fromDate string,
	toDate string,
) ([]models.Appointment, error) {
	q := conn(ctx, r.db).
		Preload("Services").
		Where(ownerColumn(owner)+" = ?", owner.ID).
		Where("appointment_date >= ? AND appointment_date < ?", fromDate, toDate)
	if staffID != nil {
		q = q.Where("staff_id = ?", *staffID)
	}

	var apps []models.Appointment
	if err := q.Order("appointment_date ASC, start_minutes ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
