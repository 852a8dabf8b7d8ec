package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ServiceHandler manages the salon's service catalog.
type ServiceHandler struct {
	repo domain.Repository
}

func NewServiceHandler(repo domain.Repository) *ServiceHandler {
	return &ServiceHandler{repo: repo}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Category        string   `json:"category" binding:"required"`
	DurationMin     int      `json:"duration_min" binding:"required,min=1"`
	Price           float64  `json:"price" binding:"min=0"`
	DiscountedPrice *float64 `json:"discounted_price"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Category        *string  `json:"category,omitempty"`
	DurationMin     *int     `json:"duration_min,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
	Active          *bool    `json:"active,omitempty"`
}

func checkPrice(price float64, discounted *float64) error {
	if discounted != nil && (*discounted < 0 || *discounted > price) {
		return httperr.Validation("invalid_discounted_price", "Discounted price must be between 0 and the price")
	}
	return nil
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	salon, err := ownedSalon(c.Request.Context(), h.repo, middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}

	services, err := h.repo.ListServices(c.Request.Context(), domain.SalonOwner(salon.ID), c.Query("active") == "true")
	if err != nil {
		httperr.From(c, err)
		return
	}

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if category != "" {
		filtered := services[:0]
		for _, s := range services {
			if strings.EqualFold(s.Category, category) {
				filtered = append(filtered, s)
			}
		}
		services = filtered
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	salon, err := ownedSalon(c.Request.Context(), h.repo, middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}

	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := checkPrice(req.Price, req.DiscountedPrice); err != nil {
		httperr.From(c, err)
		return
	}

	salonID := salon.ID
	svc := &models.Service{
		SalonID:         &salonID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Category:        strings.TrimSpace(req.Category),
		DurationMin:     req.DurationMin,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		Active:          true,
	}
	if err := h.repo.SaveService(c.Request.Context(), svc); err != nil {
		httperr.From(c, err)
		return
	}

	httpresp.Created(c, "Service created", svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	salon, err := ownedSalon(c.Request.Context(), h.repo, middleware.Actor(c))
	if err != nil {
		httperr.From(c, err)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc, err := h.repo.GetService(c.Request.Context(), domain.SalonOwner(salon.ID), id)
	if err != nil {
		httperr.From(c, domain.NotFound(err, "service_not_found", "Service not found"))
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Category != nil {
		svc.Category = strings.TrimSpace(*req.Category)
	}
	if req.DurationMin != nil {
		if *req.DurationMin < 1 {
			httperr.BadRequest(c, "invalid_duration", "Duration must be at least one minute")
			return
		}
		svc.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.DiscountedPrice != nil {
		svc.DiscountedPrice = req.DiscountedPrice
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	if err := checkPrice(svc.Price, svc.DiscountedPrice); err != nil {
		httperr.From(c, err)
		return
	}

	if err := h.repo.SaveService(c.Request.Context(), svc); err != nil {
		httperr.From(c, err)
		return
	}

	httpresp.OK(c, "Service updated", svc)
}
