package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// AvailabilityHandler is public: anyone may look at free slots.
type AvailabilityHandler struct {
	availability *ucAppointment.GetAvailability
}

func NewAvailabilityHandler(d ucAppointment.Deps) *AvailabilityHandler {
	return &AvailabilityHandler{availability: ucAppointment.NewGetAvailability(d)}
}

// Slots serves ?salonId|freelancerId&date&staffId&duration.
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	salonID, ok := queryUint(c, "salonId")
	if !ok {
		return
	}
	freelancerID, ok := queryUint(c, "freelancerId")
	if !ok {
		return
	}
	staffID, ok := queryUint(c, "staffId")
	if !ok {
		return
	}

	var owner domain.Owner
	switch {
	case salonID != nil && freelancerID == nil:
		owner = domain.SalonOwner(*salonID)
	case freelancerID != nil && salonID == nil:
		owner = domain.FreelancerOwner(*freelancerID)
	default:
		httperr.BadRequest(c, "invalid_target", "Exactly one of salonId or freelancerId is required")
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "date is required")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		Owner:    owner,
		StaffID:  staffID,
		Date:     date,
		Duration: queryInt(c, "duration", domain.DefaultDuration),
	})
	if err != nil {
		httperr.From(c, err)
		return
	}

	httpresp.OK(c, "", gin.H{
		"date":  date,
		"slots": slots,
	})
}
