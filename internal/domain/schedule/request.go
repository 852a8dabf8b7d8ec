package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

type Type string

const (
	TypeBlockTime Type = "block-time"
	TypeLeave     Type = "leave"
	TypeShiftSwap Type = "shift-swap"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusPeerApproved Status = "peer-approved"
	StatusCompleted    Status = "completed"
)

func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCompleted
}

const DefaultRejectionReason = "No reason provided"

var BlockReasons = []string{"Lunch", "Break", "Personal", "Other"}

// Details is the variant part of a request: BlockTime, Leave or ShiftSwap.
type Details interface {
	Type() Type
	Validate() error
	apply(r *models.ScheduleRequest)
}

type BlockTime struct {
	Date      string
	StartTime string
	EndTime   string
	Reason    string
}

type Leave struct {
	StartDate string
	EndDate   string
	Reason    string
	Notes     string
}

type ShiftSwap struct {
	RequesterShiftID uint
	TargetStaffID    uint
	TargetShiftID    uint
	RequesterNotes   string
}

func (BlockTime) Type() Type { return TypeBlockTime }
func (Leave) Type() Type     { return TypeLeave }
func (ShiftSwap) Type() Type { return TypeShiftSwap }

// Window returns the blocked minutes. Blocks cannot cross midnight.
func (b BlockTime) Window() (start, end int, err error) {
	if start, err = timeofday.ToMinutes(b.StartTime); err != nil {
		return 0, 0, httperr.Validation("invalid_time", "Start time must be HH:MM")
	}
	if end, err = timeofday.ToMinutes(b.EndTime); err != nil {
		return 0, 0, httperr.Validation("invalid_time", "End time must be HH:MM")
	}
	if b.StartTime == "" || b.EndTime == "" || end <= start {
		return 0, 0, httperr.Validation("invalid_window", "End time must be after start time")
	}
	return start, end, nil
}

func (b BlockTime) Validate() error {
	if _, err := timeofday.NormalizeDate(b.Date); err != nil {
		return httperr.Validation("invalid_date", "Date must be YYYY-MM-DD")
	}
	if _, _, err := b.Window(); err != nil {
		return err
	}
	if !slices.Contains(BlockReasons, b.Reason) {
		return httperr.Validation(
			"invalid_reason",
			fmt.Sprintf("Reason must be one of %s", strings.Join(BlockReasons, ", ")),
		)
	}
	return nil
}

func (l Leave) Validate() error {
	start, err := timeofday.NormalizeDate(l.StartDate)
	if err != nil {
		return httperr.Validation("invalid_date", "Start date must be YYYY-MM-DD")
	}
	end, err := timeofday.NormalizeDate(l.EndDate)
	if err != nil {
		return httperr.Validation("invalid_date", "End date must be YYYY-MM-DD")
	}
	if timeofday.IsBefore(end, start) {
		return httperr.Validation("invalid_window", "End date cannot be before start date")
	}
	if strings.TrimSpace(l.Reason) == "" {
		return httperr.Validation("missing_reason", "A reason is required")
	}
	return nil
}

func (s ShiftSwap) Validate() error {
	if s.RequesterShiftID == 0 || s.TargetShiftID == 0 || s.TargetStaffID == 0 {
		return httperr.Validation("missing_fields", "Both shifts and the target staff member are required")
	}
	if s.RequesterShiftID == s.TargetShiftID {
		return httperr.Validation("same_shift", "Cannot swap a shift with itself")
	}
	return nil
}

func (b BlockTime) apply(r *models.ScheduleRequest) {
	r.BlockTime = models.BlockTimeDetails{Date: b.Date, StartTime: b.StartTime, EndTime: b.EndTime, Reason: b.Reason}
}

func (l Leave) apply(r *models.ScheduleRequest) {
	r.Leave = models.LeaveDetails{StartDate: l.StartDate, EndDate: l.EndDate, Reason: l.Reason, Notes: l.Notes}
}

func (s ShiftSwap) apply(r *models.ScheduleRequest) {
	req, target, shift := s.RequesterShiftID, s.TargetStaffID, s.TargetShiftID
	r.ShiftSwap = models.ShiftSwapDetails{
		RequesterShiftID: &req,
		TargetStaffID:    &target,
		TargetShiftID:    &shift,
		RequesterNotes:   s.RequesterNotes,
	}
}

// New builds a pending request for staffID at salonID.
func New(salonID, staffID uint, d Details) *models.ScheduleRequest {
	r := &models.ScheduleRequest{
		SalonID: salonID,
		StaffID: staffID,
		Type:    string(d.Type()),
		Status:  string(StatusPending),
	}
	d.apply(r)
	return r
}

// SwapOf reads the shift-swap variant of r.
func SwapOf(r *models.ScheduleRequest) (ShiftSwap, bool) {
	if Type(r.Type) != TypeShiftSwap {
		return ShiftSwap{}, false
	}
	s := r.ShiftSwap
	if s.RequesterShiftID == nil || s.TargetShiftID == nil || s.TargetStaffID == nil {
		return ShiftSwap{}, false
	}
	return ShiftSwap{
		RequesterShiftID: *s.RequesterShiftID,
		TargetStaffID:    *s.TargetStaffID,
		TargetShiftID:    *s.TargetShiftID,
		RequesterNotes:   s.RequesterNotes,
	}, true
}

// ===============================
// Transitions
// ===============================

func alreadyResolved(r *models.ScheduleRequest) error {
	return httperr.Conflict(
		"already_resolved",
		fmt.Sprintf("Request has already been %s", r.Status),
	)
}

func targetOnly(r *models.ScheduleRequest, staffID uint) error {
	swap, ok := SwapOf(r)
	if !ok {
		return httperr.Validation("not_a_swap", "Only shift swap requests need peer approval")
	}
	if swap.TargetStaffID != staffID {
		return httperr.Forbidden("not_target", "Only the target staff member can respond to this swap")
	}
	if Status(r.Status).Resolved() || Status(r.Status) == StatusPeerApproved {
		return alreadyResolved(r)
	}
	return nil
}

func PeerApprove(r *models.ScheduleRequest, staffID uint, now time.Time) error {
	if err := targetOnly(r, staffID); err != nil {
		return err
	}
	r.Status = string(StatusPeerApproved)
	r.PeerApprovedBy = &staffID
	r.PeerApprovedAt = &now
	return nil
}

// PeerReject ends a swap without an owner step.
func PeerReject(r *models.ScheduleRequest, staffID uint, reason string, now time.Time) error {
	if err := targetOnly(r, staffID); err != nil {
		return err
	}
	markRejected(r, staffID, reason, now)
	return nil
}

// Approve is the owner's final decision. Swaps must be peer approved first.
func Approve(r *models.ScheduleRequest, ownerID uint, now time.Time) error {
	status := Status(r.Status)
	if status.Resolved() {
		return alreadyResolved(r)
	}
	if Type(r.Type) == TypeShiftSwap && status != StatusPeerApproved {
		return httperr.InvalidTransition("awaiting_peer", "The target staff member has not approved this swap yet")
	}
	r.Status = string(StatusApproved)
	r.ApprovedBy = &ownerID
	r.ApprovedAt = &now
	return nil
}

func Reject(r *models.ScheduleRequest, ownerID uint, reason string, now time.Time) error {
	if Status(r.Status).Resolved() {
		return alreadyResolved(r)
	}
	markRejected(r, ownerID, reason, now)
	return nil
}

func markRejected(r *models.ScheduleRequest, by uint, reason string, now time.Time) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultRejectionReason
	}
	r.Status = string(StatusRejected)
	r.RejectedBy = &by
	r.RejectedAt = &now
	r.RejectionReason = reason
}
