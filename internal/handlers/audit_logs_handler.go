package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	repo  domain.Repository
	store audit.Store
}

func NewAuditLogsHandler(repo domain.Repository, store audit.Store) *AuditLogsHandler {
	return &AuditLogsHandler{repo: repo, store: store}
}

// List returns the newest entries of the owner's salon, optionally
// narrowed by action and entity.
func (h *AuditLogsHandler) List(c *gin.Context) {
	salon, err := ownedSalon(c.Request.Context(), h.repo, middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}

	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	action := c.Query("action")
	entity := c.Query("entity")

	// --------------------------------------------------
	// Filters are applied after the fetch, so fetch more
	// --------------------------------------------------
	fetch := limit
	if action != "" || entity != "" {
		fetch = 1000
	}

	logs, err := h.store.ListAudit(c.Request.Context(), salon.ID, fetch)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs")
		return
	}

	out := make([]models.AuditLog, 0, limit)
	for _, l := range logs {
		if (action != "" && l.Action != action) || (entity != "" && l.Entity != entity) {
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}

	httpresp.List(c, out)
}
