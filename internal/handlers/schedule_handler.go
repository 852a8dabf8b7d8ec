package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucSchedule "github.com/BruksfildServices01/salon-scheduler/internal/usecase/schedule"
)

type ScheduleHandler struct {
	blockTime *ucSchedule.BlockTime
	leave     *ucSchedule.RequestLeave
	swap      *ucSchedule.RequestShiftSwap
	peer      *ucSchedule.PeerResponse
	review    *ucSchedule.Review
	list      *ucSchedule.ListRequests
}

func NewScheduleHandler(d ucSchedule.Deps) *ScheduleHandler {
	return &ScheduleHandler{
		blockTime: ucSchedule.NewBlockTime(d),
		leave:     ucSchedule.NewRequestLeave(d),
		swap:      ucSchedule.NewRequestShiftSwap(d),
		peer:      ucSchedule.NewPeerResponse(d),
		review:    ucSchedule.NewReview(d),
		list:      ucSchedule.NewListRequests(d),
	}
}

// --------- Requests ---------

type BlockTimeRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type LeaveRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Notes     string `json:"notes"`
}

type ShiftSwapRequest struct {
	RequesterShiftID uint   `json:"requester_shift_id" binding:"required"`
	TargetStaffID    uint   `json:"target_staff_id" binding:"required"`
	TargetShiftID    uint   `json:"target_shift_id" binding:"required"`
	Notes            string `json:"notes"`
}

// --------- Staff ---------

func (h *ScheduleHandler) BlockTime(c *gin.Context) {
	var req BlockTimeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.blockTime.Execute(c.Request.Context(), middleware.Actor(c), domain.BlockTime{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.Created(c, "Time blocked", res)
}

func (h *ScheduleHandler) Leave(c *gin.Context) {
	var req LeaveRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.leave.Execute(c.Request.Context(), middleware.Actor(c), domain.Leave{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.Created(c, "Leave requested", r)
}

func (h *ScheduleHandler) ShiftSwap(c *gin.Context) {
	var req ShiftSwapRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.swap.Execute(c.Request.Context(), middleware.Actor(c), domain.ShiftSwap{
		RequesterShiftID: req.RequesterShiftID,
		TargetStaffID:    req.TargetStaffID,
		TargetShiftID:    req.TargetShiftID,
		RequesterNotes:   req.Notes,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.Created(c, "Shift swap requested", r)
}

func (h *ScheduleHandler) Mine(c *gin.Context) {
	page, err := h.list.Mine(
		c.Request.Context(),
		middleware.Actor(c),
		c.Query("status"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 0),
	)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "", page)
}

func (h *ScheduleHandler) PeerApprove(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.peer.Approve(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Shift swap accepted", r)
}

func (h *ScheduleHandler) PeerReject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	r, err := h.peer.Reject(c.Request.Context(), middleware.Actor(c), id, req.Reason)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Shift swap declined", r)
}

// --------- Owner ---------

func (h *ScheduleHandler) Pending(c *gin.Context) {
	items, err := h.list.Actionable(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.List(c, items)
}

func (h *ScheduleHandler) Approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.review.Approve(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Request approved", r)
}

func (h *ScheduleHandler) Reject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	r, err := h.review.Reject(c.Request.Context(), middleware.Actor(c), id, req.Reason)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Request rejected", r)
}
