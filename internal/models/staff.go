package models

import "time"

// Staff works either for a salon or under a freelancer, never both.
type Staff struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	SalonID      *uint `gorm:"index" json:"salon_id"`
	FreelancerID *uint `gorm:"index" json:"freelancer_id"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Email  string `gorm:"size:100" json:"email"`
	Phone  string `gorm:"size:20" json:"phone"`
	Skills string `gorm:"size:255" json:"skills"` // comma separated, "All" matches every category
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Customer struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:100" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`

	LoyaltyPoints int `gorm:"default:0" json:"loyalty_points"`
	TotalBookings int `gorm:"default:0" json:"total_bookings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
