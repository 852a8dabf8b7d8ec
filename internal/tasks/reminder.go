// Package tasks holds the background jobs run by cmd/worker.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

const TypeCancellationReminder = "appointment:cancellation_reminder"

type ReminderPayload struct {
	AppointmentID uint      `json:"appointment_id"`
	StartsAt      time.Time `json:"starts_at"`
}

func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCancellationReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("reminder:%d:%d", payload.AppointmentID, payload.StartsAt.Unix())),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ======================================================
// Scheduling side (API)
// ======================================================

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues a reminder lead before an approved appointment starts.
type Scheduler struct {
	client Enqueuer
	lead   time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewScheduler(client Enqueuer, lead time.Duration, log zerolog.Logger) *Scheduler {
	if lead <= 0 {
		lead = 48 * time.Hour
	}
	return &Scheduler{
		client: client,
		lead:   lead,
		log:    log.With().Str("component", "reminders").Logger(),
		now:    time.Now,
	}
}

// ScheduleCancellationReminder is best effort: errors are logged, and a
// reminder whose fire time already passed is skipped.
func (s *Scheduler) ScheduleCancellationReminder(ctx context.Context, ap *models.Appointment) {
	if ap.StartsAt.IsZero() {
		return
	}
	fireAt := ap.StartsAt.Add(-s.lead)
	if !fireAt.After(s.now()) {
		return
	}

	task, opts, err := NewReminderTask(ReminderPayload{AppointmentID: ap.ID, StartsAt: ap.StartsAt}, fireAt)
	if err != nil {
		s.log.Error().Err(err).Uint("appointment_id", ap.ID).Msg("build reminder task")
		return
	}

	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return
		}
		s.log.Error().Err(err).Uint("appointment_id", ap.ID).Msg("enqueue reminder")
		return
	}

	s.log.Debug().Uint("appointment_id", ap.ID).Time("fire_at", fireAt).Msg("reminder scheduled")
}

// ======================================================
// Processing side (worker)
// ======================================================

// NewReminderHandler notifies the customer if the appointment is still
// approved when the task fires.
func NewReminderHandler(repo domain.Repository, notifier notify.Notifier, log zerolog.Logger) asynq.HandlerFunc {
	log = log.With().Str("task", TypeCancellationReminder).Logger()

	return func(ctx context.Context, task *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Error().Err(err).Msg("invalid payload")
			return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
		}

		ap, err := repo.GetAppointment(ctx, p.AppointmentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Uint("appointment_id", p.AppointmentID).Msg("appointment gone, skipping reminder")
			return nil
		}
		if err != nil {
			return err
		}

		if domain.Status(ap.Status) != domain.StatusApproved || ap.CustomerID == nil {
			return nil
		}
		// moved since the reminder was scheduled
		if !ap.StartsAt.Equal(p.StartsAt) {
			return nil
		}

		to := notify.Recipient{ID: *ap.CustomerID, Role: "customer"}
		if c, err := repo.GetCustomer(ctx, *ap.CustomerID); err == nil {
			to.Name, to.Email, to.Phone = c.Name, c.Email, c.Phone
		}

		notifier.Notify(ctx, notify.Notification{
			To:    to,
			Kind:  notify.KindCancellationReminder,
			Title: "Upcoming appointment",
			Message: fmt.Sprintf(
				"Your appointment on %s at %s is coming up. Cancel before the notice window closes if your plans changed.",
				ap.AppointmentDate, ap.AppointmentTime,
			),
			Data: map[string]any{"appointment_id": ap.ID},
		})
		return nil
	}
}

// Register wires every task handler into mux.
func Register(mux *asynq.ServeMux, repo domain.Repository, notifier notify.Notifier, log zerolog.Logger) {
	mux.HandleFunc(TypeCancellationReminder, NewReminderHandler(repo, notifier, log))
}
