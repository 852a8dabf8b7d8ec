package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ownedSalon loads the salon named in the owner's token and checks that
// the caller really owns it.
func ownedSalon(ctx context.Context, repo domain.Repository, a identity.Actor) (*models.Salon, error) {
	if a.SalonID == 0 {
		return nil, httperr.Forbidden("no_business", "No salon linked to this account")
	}
	salon, err := repo.GetSalon(ctx, a.SalonID)
	if err != nil {
		return nil, domain.NotFound(err, "salon_not_found", "Salon not found")
	}
	if !a.Is(identity.RoleAdmin) && salon.OwnerID != a.ID {
		return nil, httperr.Forbidden("not_owner", "You do not own this salon")
	}
	return salon, nil
}

// ======================================================
// HANDLER
// ======================================================

type SalonHandler struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewSalonHandler(repo domain.Repository, a *audit.Dispatcher) *SalonHandler {
	return &SalonHandler{repo: repo, audit: a}
}

type BusinessHoursResponse struct {
	OpenTime                string   `json:"open_time"`
	CloseTime               string   `json:"close_time"`
	WorkingDays             []string `json:"working_days"`
	Timezone                string   `json:"timezone"`
	CancellationNoticeHours int      `json:"cancellation_notice_hours"`
}

type UpdateBusinessHoursRequest struct {
	OpenTime                *string  `json:"open_time"`
	CloseTime               *string  `json:"close_time"`
	WorkingDays             []string `json:"working_days"`
	Timezone                *string  `json:"timezone"`
	CancellationNoticeHours *int     `json:"cancellation_notice_hours"`
}

func hoursOf(s *models.Salon) BusinessHoursResponse {
	days := []string{}
	for _, d := range domain.ParseWorkingDays(s.WorkingDays) {
		days = append(days, d.String())
	}
	return BusinessHoursResponse{
		OpenTime:                s.OpenTime,
		CloseTime:               s.CloseTime,
		WorkingDays:             days,
		Timezone:                s.Timezone,
		CancellationNoticeHours: s.CancellationNoticeHours,
	}
}

func (h *SalonHandler) GetBusinessHours(c *gin.Context) {
	salon, err := ownedSalon(c.Request.Context(), h.repo, middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "", hoursOf(salon))
}

func (h *SalonHandler) UpdateBusinessHours(c *gin.Context) {
	actor := middleware.Actor(c)
	salon, err := ownedSalon(c.Request.Context(), h.repo, actor)
	if err != nil {
		httperr.From(c, err)
		return
	}

	var req UpdateBusinessHoursRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := req.apply(salon); err != nil {
		httperr.From(c, err)
		return
	}

	if err := h.repo.SaveSalon(c.Request.Context(), salon); err != nil {
		httperr.From(c, err)
		return
	}

	actorID := actor.ID
	h.audit.Dispatch(audit.Event{
		SalonID:   &salon.ID,
		ActorID:   &actorID,
		ActorRole: string(actor.Role),
		Action:    "business_hours_updated",
		Entity:    "salon",
		EntityID:  &salon.ID,
		Metadata: map[string]any{
			"open_time":    salon.OpenTime,
			"close_time":   salon.CloseTime,
			"working_days": salon.WorkingDays,
		},
	})

	httpresp.OK(c, "Business hours updated", hoursOf(salon))
}

func (req UpdateBusinessHoursRequest) apply(s *models.Salon) error {
	opening, closing := s.OpenTime, s.CloseTime
	if req.OpenTime != nil {
		opening = strings.TrimSpace(*req.OpenTime)
	}
	if req.CloseTime != nil {
		closing = strings.TrimSpace(*req.CloseTime)
	}
	o, err1 := timeofday.ToMinutes(opening)
	cl, err2 := timeofday.ToMinutes(closing)
	if err1 != nil || err2 != nil {
		return httperr.Validation("invalid_time", "Opening and closing times must be HH:MM")
	}
	if cl <= o {
		return httperr.Validation("invalid_window", "Closing time must be after opening time")
	}
	s.OpenTime, s.CloseTime = timeofday.FromMinutes(o), timeofday.FromMinutes(cl)

	if req.WorkingDays != nil {
		days := domain.ParseWorkingDays(strings.Join(req.WorkingDays, ","))
		if len(days) != len(req.WorkingDays) {
			return httperr.Validation("invalid_working_days", "Working days must be distinct day names")
		}
		s.WorkingDays = domain.FormatWorkingDays(days)
	}

	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			return httperr.Validation("invalid_timezone", "Unknown timezone")
		}
		s.Timezone = *req.Timezone
	}

	if req.CancellationNoticeHours != nil {
		n := *req.CancellationNoticeHours
		if n < 1 || n > 168 {
			return httperr.Validation("invalid_notice_hours", "Cancellation notice must be between 1 and 168 hours")
		}
		s.CancellationNoticeHours = n
	}
	return nil
}
