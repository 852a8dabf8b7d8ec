package models

import "time"

type QueueEntry struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	SalonID       uint  `gorm:"not null;uniqueIndex:idx_queue_token,priority:1;index:idx_queue_customer_day,priority:1" json:"salon_id"`
	CustomerID    uint  `gorm:"not null;index:idx_queue_customer_day,priority:2" json:"customer_id"`
	AppointmentID *uint `json:"appointment_id,omitempty"`

	QueueDay    string `gorm:"size:10;not null;uniqueIndex:idx_queue_token,priority:2;index:idx_queue_customer_day,priority:3" json:"queue_day"`
	TokenNumber string `gorm:"size:20;not null;uniqueIndex:idx_queue_token,priority:3" json:"token_number"`
	TokenSeq    int    `json:"token_seq"`

	QueuePosition int        `json:"queue_position"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	CheckInTime   *time.Time `json:"check_in_time"`
	ServedAt      *time.Time `json:"served_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
