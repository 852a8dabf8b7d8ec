package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book       *ucAppointment.BookAppointment
	get        *ucAppointment.GetAppointment
	list       *ucAppointment.ListAppointments
	update     *ucAppointment.UpdateAppointment
	reschedule *ucAppointment.RescheduleAppointment
	cancel     *ucAppointment.CancelAppointment
	complete   *ucAppointment.CompleteAppointment
	rate       *ucAppointment.RateAppointment
	payment    *ucAppointment.ConfirmPayment
	checkIn    *ucAppointment.CheckIn
}

func NewAppointmentHandler(d ucAppointment.Deps) *AppointmentHandler {
	return &AppointmentHandler{
		book:       ucAppointment.NewBookAppointment(d),
		get:        ucAppointment.NewGetAppointment(d),
		list:       ucAppointment.NewListAppointments(d),
		update:     ucAppointment.NewUpdateAppointment(d),
		reschedule: ucAppointment.NewRescheduleAppointment(d),
		cancel:     ucAppointment.NewCancelAppointment(d),
		complete:   ucAppointment.NewCompleteAppointment(d),
		rate:       ucAppointment.NewRateAppointment(d),
		payment:    ucAppointment.NewConfirmPayment(d),
		checkIn:    ucAppointment.NewCheckIn(d),
	}
}

// ======================================================
// REQUESTS
// ======================================================

// LineItemRequest is one requested service. Catalog lines carry a
// service_id; offer and freelancer-skill lines carry their own price.
type LineItemRequest struct {
	Type      string  `json:"type"`
	ServiceID uint    `json:"service_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Duration  int     `json:"duration"`
}

func (r LineItemRequest) toDomain() (domain.LineItem, error) {
	switch domain.LineItemKind(r.Type) {
	case "", domain.KindCatalog:
		if r.ServiceID == 0 {
			return nil, httperr.Validation("missing_service", "service_id is required")
		}
		return domain.Catalog{ServiceID: r.ServiceID}, nil
	case domain.KindOffer:
		return domain.Offer{Name: r.Name, Category: r.Category, Price: r.Price, Duration: r.Duration}, nil
	case domain.KindFreelancerSkill:
		return domain.FreelancerSkill{Name: r.Name, Category: r.Category, Price: r.Price, Duration: r.Duration}, nil
	}
	return nil, httperr.Validation("invalid_service_type", "Unknown service type "+r.Type)
}

type BookRequest struct {
	SalonID         uint              `json:"salon_id"`
	FreelancerID    uint              `json:"freelancer_id"`
	StaffID         *uint             `json:"staff_id"`
	Services        []LineItemRequest `json:"services" binding:"required,min=1"`
	Date            string            `json:"date" binding:"required"`
	Time            string            `json:"time" binding:"required"`
	PointsToRedeem  int               `json:"points_to_redeem"`
	PointsDiscount  float64           `json:"points_discount"`
	CustomerNotes   string            `json:"customer_notes"`
	SpecialRequests string            `json:"special_requests"`
}

type UpdateRequest struct {
	Status          *string `json:"status"`
	CustomerNotes   *string `json:"customer_notes"`
	SpecialRequests *string `json:"special_requests"`
	StaffNotes      *string `json:"staff_notes"`
	SalonNotes      *string `json:"salon_notes"`
	StaffID         *uint   `json:"staff_id"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
}

type RescheduleRequest struct {
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	StaffID *uint  `json:"staff_id"`
	Reason  string `json:"reason"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type ReviewRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Feedback string `json:"feedback"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type CheckInRequest struct {
	SalonID uint `json:"salon_id" binding:"required"`
}

// ======================================================
// BOOK
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req BookRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]domain.LineItem, 0, len(req.Services))
	for _, s := range req.Services {
		item, err := s.toDomain()
		if err != nil {
			httperr.From(c, err)
			return
		}
		items = append(items, item)
	}

	ap, err := h.book.Execute(c.Request.Context(), ucAppointment.BookInput{
		Actor:           middleware.Actor(c),
		SalonID:         req.SalonID,
		FreelancerID:    req.FreelancerID,
		StaffID:         req.StaffID,
		Items:           items,
		Date:            req.Date,
		Time:            req.Time,
		Redemption:      loyalty.Redemption{Points: req.PointsToRedeem, Discount: req.PointsDiscount},
		CustomerNotes:   req.CustomerNotes,
		SpecialRequests: req.SpecialRequests,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		httperr.From(c, err)
		return
	}

	httpresp.Created(c, "Appointment booked", ap)
}

// ======================================================
// READ
// ======================================================

// List serves ?date=YYYY-MM-DD or ?year=&month=.
func (h *AppointmentHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)

	if date := c.Query("date"); date != "" {
		items, err := h.list.ByDate(c.Request.Context(), actor, date)
		if err != nil {
			httperr.From(c, err)
			return
		}
		httpresp.List(c, items)
		return
	}

	if c.Query("year") == "" || c.Query("month") == "" {
		httperr.BadRequest(c, "missing_date", "Either date or year and month are required")
		return
	}
	items, err := h.list.ByMonth(c.Request.Context(), actor, queryInt(c, "year", 0), queryInt(c, "month", 0))
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.List(c, items)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ap, err := h.get.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "", ap)
}

// ======================================================
// CHANGE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), ucAppointment.UpdateInput{
		Actor:           middleware.Actor(c),
		AppointmentID:   id,
		Status:          req.Status,
		CustomerNotes:   req.CustomerNotes,
		SpecialRequests: req.SpecialRequests,
		StaffNotes:      req.StaffNotes,
		SalonNotes:      req.SalonNotes,
		StaffID:         req.StaffID,
		Date:            req.Date,
		Time:            req.Time,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Appointment updated", ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleInput{
		Actor:         middleware.Actor(c),
		AppointmentID: id,
		Date:          req.Date,
		Time:          req.Time,
		StaffID:       req.StaffID,
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Appointment rescheduled", ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), ucAppointment.CancelInput{
		Actor:         middleware.Actor(c),
		AppointmentID: id,
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Appointment cancelled", ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ap, err := h.complete.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Appointment completed", ap)
}

func (h *AppointmentHandler) Review(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.rate.Execute(c.Request.Context(), ucAppointment.RateInput{
		Actor:         middleware.Actor(c),
		AppointmentID: id,
		Rating:        req.Rating,
		Feedback:      req.Feedback,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Thanks for your review", ap)
}

// ======================================================
// PAYMENT / CHECK-IN
// ======================================================

func (h *AppointmentHandler) VerifyPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.payment.Execute(c.Request.Context(), ucAppointment.ConfirmPaymentInput{
		Actor:         middleware.Actor(c),
		AppointmentID: id,
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Payment confirmed", ap)
}

func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.checkIn.Execute(c.Request.Context(), ucAppointment.CheckInInput{
		Actor:   middleware.Actor(c),
		SalonID: req.SalonID,
	})
	if err != nil {
		httperr.From(c, err)
		return
	}
	httpresp.OK(c, "Checked in", res)
}
