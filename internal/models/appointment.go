package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SalonID      *uint `gorm:"index:idx_appointments_salon_day,priority:1" json:"salon_id"`
	FreelancerID *uint `gorm:"index:idx_appointments_freelancer_day,priority:1" json:"freelancer_id"`
	StaffID      *uint `gorm:"index:idx_appointments_staff_day,priority:1" json:"staff_id"`
	CustomerID   *uint `gorm:"index;uniqueIndex:idx_appointments_idempotency,priority:1" json:"customer_id"`

	AppointmentDate   string    `gorm:"size:10;not null;index:idx_appointments_salon_day,priority:2;index:idx_appointments_freelancer_day,priority:2;index:idx_appointments_staff_day,priority:2" json:"appointment_date"`
	AppointmentTime   string    `gorm:"size:5;not null" json:"appointment_time"`
	EstimatedDuration int       `json:"estimated_duration"`
	EstimatedEndTime  string    `gorm:"size:5" json:"estimated_end_time"`
	StartMinutes      int       `json:"start_minutes"`
	EndMinutes        int       `json:"end_minutes"`
	StartsAt          time.Time `json:"starts_at"`

	Services []AppointmentService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"services"`

	TotalAmount        float64 `json:"total_amount"`
	FinalAmount        float64 `json:"final_amount"`
	PointsRedeemed     int     `json:"points_redeemed"`
	DiscountFromPoints float64 `json:"discount_from_points"`

	Status         string `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus  string `gorm:"size:20;default:'Pending'" json:"payment_status"`
	PaymentOrderID string `gorm:"size:100" json:"payment_order_id,omitempty"`

	CustomerNotes   string `gorm:"type:text" json:"customer_notes"`
	SpecialRequests string `gorm:"type:text" json:"special_requests"`
	StaffNotes      string `gorm:"type:text" json:"staff_notes"`
	SalonNotes      string `gorm:"type:text" json:"salon_notes"`
	BlockReason     string `gorm:"size:20" json:"block_reason,omitempty"`

	Rating   *int   `json:"rating"`
	Feedback string `gorm:"type:text" json:"feedback"`

	CheckInTime    *time.Time `json:"check_in_time"`
	IsFirstVisit   bool       `json:"is_first_visit"`
	Source         string     `gorm:"size:20" json:"source"`
	IdempotencyKey *string    `gorm:"size:100;uniqueIndex:idx_appointments_idempotency,priority:2" json:"-"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentService is one priced line of a booking.
type AppointmentService struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	AppointmentID uint  `gorm:"index;not null" json:"appointment_id"`
	ServiceID     *uint `json:"service_id,omitempty"`

	Kind        string  `gorm:"size:20" json:"kind"`
	Name        string  `gorm:"size:100" json:"name"`
	Category    string  `gorm:"size:50" json:"category"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_min"`
}
