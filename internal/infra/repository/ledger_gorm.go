package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// LedgerGorm keeps loyalty balances on the customers table. Debit is a
// single conditional update so concurrent redemptions cannot overdraw.
type LedgerGorm struct {
	db *gorm.DB
}

func NewLedgerGorm(db *gorm.DB) *LedgerGorm {
	return &LedgerGorm{db: db}
}

func (l *LedgerGorm) Balance(ctx context.Context, customerID uint) (int, error) {
	var c models.Customer
	if err := conn(ctx, l.db).Select("id", "loyalty_points").First(&c, customerID).Error; err != nil {
		return 0, err
	}
	return c.LoyaltyPoints, nil
}

func (l *LedgerGorm) Debit(ctx context.Context, customerID uint, points int) (bool, error) {
	res := conn(ctx, l.db).
		Model(&models.Customer{}).
		Where("id = ? AND loyalty_points >= ?", customerID, points).
		UpdateColumn("loyalty_points", gorm.Expr("loyalty_points - ?", points))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (l *LedgerGorm) Credit(ctx context.Context, customerID uint, points int) error {
	return conn(ctx, l.db).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", points)).
		Error
}

var _ loyalty.Ledger = (*LedgerGorm)(nil)

type SaleGormRecorder struct {
	db *gorm.DB
}

func NewSaleGormRecorder(db *gorm.DB) *SaleGormRecorder {
	return &SaleGormRecorder{db: db}
}

func (r *SaleGormRecorder) RecordSale(
	ctx context.Context,
	ap *models.Appointment,
	line models.AppointmentService,
	amounts revenue.Amounts,
) error {
	return conn(ctx, r.db).Create(&models.SaleRecord{
		AppointmentID: ap.ID,
		SalonID:       ap.SalonID,
		FreelancerID:  ap.FreelancerID,
		StaffID:       ap.StaffID,
		ServiceName:   line.Name,
		Amount:        amounts.Gross,
		Discount:      amounts.Discount,
	}).Error
}

var _ revenue.Recorder = (*SaleGormRecorder)(nil)
