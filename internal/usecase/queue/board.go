package queue

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Board is the owner's view of the day's queue.
type Board struct {
	repo   domain.Repository
	salons SalonLookup
	audit  *audit.Dispatcher
	now    func() time.Time
}

func NewBoard(repo domain.Repository, salons SalonLookup, a *audit.Dispatcher, now func() time.Time) *Board {
	if now == nil {
		now = time.Now
	}
	return &Board{repo: repo, salons: salons, audit: a, now: now}
}

type Snapshot struct {
	Day          string              `json:"day"`
	InService    *models.QueueEntry  `json:"in_service"`
	Upcoming     []models.QueueEntry `json:"upcoming"`
	TotalWaiting int                 `json:"total_waiting"`
	Completed    []models.QueueEntry `json:"completed"`
}

// EntryView is one token with its estimated wait.
type EntryView struct {
	models.QueueEntry
	EstimatedWait    int    `json:"estimated_wait_minutes"`
	CurrentInService string `json:"current_in_service,omitempty"`
}

func (b *Board) salonFor(ctx context.Context, actor identity.Actor) (*models.Salon, string, error) {
	if !actor.Is(identity.RoleOwner, identity.RoleAdmin) || actor.SalonID == 0 {
		return nil, "", httperr.Forbidden("owners_only", "Only the salon owner can manage the queue")
	}
	salon, err := b.salons.GetSalon(ctx, actor.SalonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", httperr.NotFoundErr("salon_not_found", "Salon not found")
		}
		return nil, "", err
	}
	if !actor.Is(identity.RoleAdmin) && salon.OwnerID != actor.ID {
		return nil, "", httperr.Forbidden("not_owner", "You do not own this salon")
	}
	return salon, timeofday.Today(b.now(), timezone.Location(salon.Timezone)), nil
}

func (b *Board) Status(ctx context.Context, actor identity.Actor) (*Snapshot, error) {
	salon, day, err := b.salonFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	entries, err := b.repo.ListForDay(ctx, salon.ID, day)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Day: day, Upcoming: []models.QueueEntry{}, Completed: []models.QueueEntry{}}
	for i := range entries {
		e := entries[i]
		switch domain.Status(e.Status) {
		case domain.StatusInService:
			snap.InService = &e
		case domain.StatusWaiting, domain.StatusArrived:
			snap.TotalWaiting++
			if len(snap.Upcoming) < 5 {
				snap.Upcoming = append(snap.Upcoming, e)
			}
		case domain.StatusCompleted:
			snap.Completed = append(snap.Completed, e)
		}
	}
	return snap, nil
}

// Lookup returns one of today's tokens at a salon with its wait estimate.
func (b *Board) Lookup(ctx context.Context, salonID uint, token string) (*EntryView, error) {
	salon, err := b.salons.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("salon_not_found", "Salon not found")
		}
		return nil, err
	}
	day := timeofday.Today(b.now(), timezone.Location(salon.Timezone))

	e, err := b.repo.GetByToken(ctx, salonID, day, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("token_not_found", "Queue token not found")
		}
		return nil, err
	}

	view := &EntryView{QueueEntry: *e, EstimatedWait: domain.EstimatedWait(e.QueuePosition)}
	if cur, err := b.inService(ctx, salonID, day); err == nil && cur != nil {
		view.CurrentInService = cur.TokenNumber
	}
	return view, nil
}

func (b *Board) inService(ctx context.Context, salonID uint, day string) (*models.QueueEntry, error) {
	entries, err := b.repo.ListForDay(ctx, salonID, day)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if domain.Status(entries[i].Status) == domain.StatusInService {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// Advance applies next, skip or complete to a token. Every action takes the
// entry out of the line and moves the people behind it up by one.
func (b *Board) Advance(
	ctx context.Context,
	actor identity.Actor,
	token string,
	action domain.Action,
) (*models.QueueEntry, error) {
	if !action.Valid() {
		return nil, httperr.Validation("invalid_action", "Invalid action. Use next, skip, or complete")
	}

	salon, day, err := b.salonFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	now := b.now()

	var out *models.QueueEntry
	err = b.repo.WithinTx(ctx, func(ctx context.Context) error {
		e, err := b.repo.GetByToken(ctx, salon.ID, day, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.NotFoundErr("token_not_found", "Queue entry not found")
			}
			return err
		}

		status := domain.Status(e.Status)
		if status == domain.StatusCompleted || status == domain.StatusCancelled {
			return httperr.InvalidTransition("entry_closed", "Queue entry is already closed")
		}
		inLine := status == domain.StatusWaiting || status == domain.StatusArrived

		switch action {
		case domain.ActionNext:
			if !inLine {
				return httperr.InvalidTransition("not_waiting", "Only waiting customers can be called next")
			}
			cur, err := b.inService(ctx, salon.ID, day)
			if err != nil {
				return err
			}
			if cur != nil {
				cur.Status = string(domain.StatusCompleted)
				if err := b.repo.UpdateEntry(ctx, cur); err != nil {
					return err
				}
			}
			e.Status = string(domain.StatusInService)
			e.ServedAt = &now

		case domain.ActionSkip:
			e.Status = string(domain.StatusCancelled)

		case domain.ActionComplete:
			e.Status = string(domain.StatusCompleted)
		}

		position := e.QueuePosition
		if inLine {
			e.QueuePosition = 0
		}
		if err := b.repo.UpdateEntry(ctx, e); err != nil {
			return err
		}
		if inLine {
			if err := b.repo.CloseGap(ctx, salon.ID, day, position); err != nil {
				return err
			}
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	actorID := actor.ID
	b.audit.Dispatch(audit.Event{
		SalonID:   &salon.ID,
		ActorID:   &actorID,
		ActorRole: string(actor.Role),
		Action:    "queue_" + string(action),
		Entity:    "queue_entry",
		EntityID:  &out.ID,
		Metadata:  map[string]any{"token": out.TokenNumber},
	})

	return out, nil
}
