package models

import "time"

type Salon struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:100" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	Timezone    string `gorm:"size:64" json:"timezone"`
	OpenTime    string `gorm:"size:5;default:'09:00'" json:"open_time"`
	CloseTime   string `gorm:"size:5;default:'18:00'" json:"close_time"`
	WorkingDays string `gorm:"size:100" json:"working_days"` // "Monday,Tuesday,..."

	CancellationNoticeHours int  `gorm:"default:24" json:"cancellation_notice_hours"`
	Active                  bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Freelancer struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Email  string `gorm:"size:100" json:"email"`
	Phone  string `gorm:"size:20" json:"phone"`

	Timezone    string `gorm:"size:64" json:"timezone"`
	OpenTime    string `gorm:"size:5;default:'09:00'" json:"open_time"`
	CloseTime   string `gorm:"size:5;default:'18:00'" json:"close_time"`
	WorkingDays string `gorm:"size:100" json:"working_days"`

	Skills         string `gorm:"size:255" json:"skills"`
	ApprovalStatus string `gorm:"size:20;default:'pending'" json:"approval_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const FreelancerApproved = "approved"
