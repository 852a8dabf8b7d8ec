package models

import "time"

type ScheduleRequest struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	SalonID uint   `gorm:"index;not null" json:"salon_id"`
	StaffID uint   `gorm:"index;not null" json:"staff_id"`
	Type    string `gorm:"size:20;not null" json:"type"`
	Status  string `gorm:"size:20;not null;index" json:"status"`

	BlockTime BlockTimeDetails `gorm:"embedded;embeddedPrefix:block_" json:"block_time"`
	Leave     LeaveDetails     `gorm:"embedded;embeddedPrefix:leave_" json:"leave"`
	ShiftSwap ShiftSwapDetails `gorm:"embedded;embeddedPrefix:swap_" json:"shift_swap"`

	BlockedAppointmentID *uint `json:"blocked_appointment_id,omitempty"`

	PeerApprovedBy  *uint      `json:"peer_approved_by,omitempty"`
	PeerApprovedAt  *time.Time `json:"peer_approved_at,omitempty"`
	ApprovedBy      *uint      `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *uint      `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"size:255" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BlockTimeDetails struct {
	Date      string `gorm:"size:10" json:"date,omitempty"`
	StartTime string `gorm:"size:5" json:"start_time,omitempty"`
	EndTime   string `gorm:"size:5" json:"end_time,omitempty"`
	Reason    string `gorm:"size:20" json:"reason,omitempty"`
}

type LeaveDetails struct {
	StartDate string `gorm:"size:10" json:"start_date,omitempty"`
	EndDate   string `gorm:"size:10" json:"end_date,omitempty"`
	Reason    string `gorm:"size:255" json:"reason,omitempty"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`
}

type ShiftSwapDetails struct {
	RequesterShiftID *uint  `json:"requester_shift_id,omitempty"`
	TargetStaffID    *uint  `gorm:"index" json:"target_staff_id,omitempty"`
	TargetShiftID    *uint  `json:"target_shift_id,omitempty"`
	RequesterNotes   string `gorm:"type:text" json:"requester_notes,omitempty"`
}
