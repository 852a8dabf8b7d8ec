package queue

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusArrived   Status = "arrived"
	StatusInService Status = "in-service"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Minutes a waiting customer is estimated to take per position.
const MinutesPerPosition = 15

const DefaultMaxAttempts = 5

type Action string

const (
	ActionNext     Action = "next"
	ActionSkip     Action = "skip"
	ActionComplete Action = "complete"
)

func (a Action) Valid() bool {
	return a == ActionNext || a == ActionSkip || a == ActionComplete
}

// TokenPrefix is the first three letters of the salon name upper-cased,
// or "Q" when the name has none.
func TokenPrefix(salonName string) string {
	var b strings.Builder
	for _, r := range salonName {
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() >= 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "Q"
	}
	return b.String()
}

func FormatToken(prefix string, seq int) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// Reactivate applies the check-in rule to an existing entry and reports
// whether it changed.
func Reactivate(e *models.QueueEntry) bool {
	switch Status(e.Status) {
	case StatusCompleted, StatusCancelled, StatusWaiting:
		e.Status = string(StatusArrived)
		return true
	}
	return false
}

func EstimatedWait(position int) int {
	if position <= 0 {
		return 0
	}
	return position * MinutesPerPosition
}

type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	FindForCustomer(ctx context.Context, salonID, customerID uint, day string) (*models.QueueEntry, error)
	CountWaiting(ctx context.Context, salonID uint, day string) (int, error)
	LastTokenSeq(ctx context.Context, salonID uint, day string) (int, error)
	CreateEntry(ctx context.Context, e *models.QueueEntry) error
	UpdateEntry(ctx context.Context, e *models.QueueEntry) error
	GetByToken(ctx context.Context, salonID uint, day, token string) (*models.QueueEntry, error)
	ListForDay(ctx context.Context, salonID uint, day string) ([]models.QueueEntry, error)

	// CloseGap decrements the position of waiting and arrived entries
	// behind position after an entry leaves the line.
	CloseGap(ctx context.Context, salonID uint, day string, position int) error
}
