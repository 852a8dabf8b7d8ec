package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending      Status = "Pending"
	StatusConfirmed    Status = "Confirmed"
	StatusApproved     Status = "Approved"
	StatusInProgress   Status = "In-Progress"
	StatusCompleted    Status = "Completed"
	StatusCancelled    Status = "Cancelled"
	StatusNoShow       Status = "No-Show"
	StatusStaffBlocked Status = "STAFF_BLOCKED"
)

const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"

	SourceWebsite = "Website"
	SourceStaff   = "Staff"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusApproved, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusApproved, StatusInProgress, StatusCancelled, StatusNoShow},
	StatusApproved:   {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// OccupyingStatuses consume resource time for conflict purposes.
var OccupyingStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusApproved,
	StatusInProgress,
	StatusStaffBlocked,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusApproved, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow, StatusStaffBlocked:
		return true
	}
	return false
}

func (s Status) Occupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// ===============================
// Validations
// ===============================

// CanTransition validates a status change against the lifecycle table.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return httperr.Validation("invalid_status", fmt.Sprintf("Unknown status %q", to))
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.InvalidTransition(
		"invalid_transition",
		fmt.Sprintf("Cannot change status from %s to %s", from, to),
	)
}

func InitialStatus() Status {
	return StatusPending
}

// OccupyingStrings is OccupyingStatuses as plain strings for store queries.
func OccupyingStrings() []string {
	out := make([]string, len(OccupyingStatuses))
	for i, s := range OccupyingStatuses {
		out[i] = string(s)
	}
	return out
}
