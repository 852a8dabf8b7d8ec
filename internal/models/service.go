package models

import "time"

type Service struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	SalonID      *uint `gorm:"index" json:"salon_id"`
	FreelancerID *uint `gorm:"index" json:"freelancer_id"`

	Name            string   `gorm:"size:100;not null" json:"name"`
	Description     string   `gorm:"size:255" json:"description"`
	Category        string   `gorm:"size:50" json:"category"`
	DurationMin     int      `json:"duration_min"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discounted_price"`
	Active          bool     `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectivePrice is the discounted price when one is set, else the list price.
func (s Service) EffectivePrice() float64 {
	if s.DiscountedPrice != nil {
		return *s.DiscountedPrice
	}
	return s.Price
}

type SaleRecord struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	AppointmentID uint    `gorm:"index;not null" json:"appointment_id"`
	SalonID       *uint   `gorm:"index" json:"salon_id"`
	FreelancerID  *uint   `gorm:"index" json:"freelancer_id"`
	StaffID       *uint   `json:"staff_id"`
	ServiceName   string  `gorm:"size:100" json:"service_name"`
	Amount        float64 `json:"amount"`
	Discount      float64 `json:"discount"`

	CreatedAt time.Time `json:"created_at"`
}
