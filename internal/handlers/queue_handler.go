package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucQueue "github.com/BruksfildServices01/salon-scheduler/internal/usecase/queue"
)

type QueueHandler struct {
	board *ucQueue.Board
}

func NewQueueHandler(board *ucQueue.Board) *QueueHandler {
	return &QueueHandler{board: board}
}

type AdvanceQueueRequest struct {
	Action string `json:"action" binding:"required"`
}

func (h *QueueHandler) Status(c *gin.Context) {
	snap, err := h.board.Status(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "", snap)
}

func (h *QueueHandler) Advance(c *gin.Context) {
	var req AdvanceQueueRequest
	if !bindJSON(c, &req) {
		return
	}
	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))

	e, err := h.board.Advance(c.Request.Context(), middleware.Actor(c), token, domain.Action(req.Action))
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Queue updated", e)
}

// Lookup is public so a customer can follow their token.
func (h *QueueHandler) Lookup(c *gin.Context) {
	salonID, ok := idParam(c, "salonId")
	if !ok {
		return
	}
	token := strings.ToUpper(strings.TrimSpace(c.Param("token")))

	view, err := h.board.Lookup(c.Request.Context(), salonID, token)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "", view)
}
