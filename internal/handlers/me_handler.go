package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
)

type MeHandler struct {
	repo domain.Repository
}

func NewMeHandler(repo domain.Repository) *MeHandler {
	return &MeHandler{repo: repo}
}

// GetMe returns the caller's token claims and the profile they map to.
func (h *MeHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	actor := middleware.Actor(c)

	out := gin.H{"actor": actor}

	switch actor.Role {
	case identity.RoleCustomer:
		customer, err := h.repo.GetCustomer(ctx, actor.ID)
		if err != nil {
			httperr.From(c, domain.NotFound(err, "customer_not_found", "Customer not found"))
			return
		}
		out["customer"] = customer

	case identity.RoleStaff:
		st, err := h.repo.GetStaff(ctx, actor.ID)
		if err != nil {
			httperr.From(c, domain.NotFound(err, "staff_not_found", "Staff member not found"))
			return
		}
		out["staff"] = st

	case identity.RoleOwner:
		if actor.SalonID != 0 {
			salon, err := ownedSalon(ctx, h.repo, actor)
			if err != nil {
				httperr.From(c, err)
				return
			}
			out["salon"] = salon
		}
	}

	httpresp.OK(c, "", out)
}
