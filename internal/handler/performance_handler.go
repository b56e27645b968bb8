package handler

import (
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PerformanceHandler struct {
	performances service.PerformanceService
}

func NewPerformanceHandler(performances service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performances: performances}
}

func (h *PerformanceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("events/:id/performances", h.ListByEvent)
	r.GET("performances/:id", h.GetPerformance)
	r.POST("performances", auth.RequireRole(model.RoleManager), h.CreatePerformance)
	r.PUT("performances/:id/inventory", auth.RequireRole(model.RoleManager), h.OverrideInventory)
	r.PUT("performances/:id/cancel", auth.RequireRole(model.RoleManager), h.CancelPerformance)
	r.PUT("performances/:id/deactivate", auth.RequireRole(model.RoleManager), h.DeactivatePerformance)
}

func (h *PerformanceHandler) CreatePerformance(c *gin.Context) {
	var req model.CreatePerformanceRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	performance, err := h.performances.Create(c, &req)
	if err != nil {
		handleError(c, err, "CreatePerformance")
		return
	}

	handleSuccess(c, performance, http.StatusCreated)
}

func (h *PerformanceHandler) GetPerformance(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	performance, err := h.performances.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetPerformance")
		return
	}

	handleSuccess(c, performance, http.StatusOK)
}

func (h *PerformanceHandler) ListByEvent(c *gin.Context) {
	eventID, ok := PathID(c, "id")
	if !ok {
		return
	}

	performances, err := h.performances.ListByEvent(c, eventID)
	if err != nil {
		handleError(c, err, "ListByEvent")
		return
	}

	handleSuccess(c, performances, http.StatusOK)
}

type overrideInventoryRequest struct {
	AvailableTickets int `json:"available_tickets" binding:"min=0"`
}

func (h *PerformanceHandler) OverrideInventory(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req overrideInventoryRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	identity, _ := auth.IdentityFrom(c)

	performance, err := h.performances.OverrideAvailable(c, id, req.AvailableTickets, identity.UserID)
	if err != nil {
		handleError(c, err, "OverrideInventory")
		return
	}

	handleSuccess(c, performance, http.StatusOK)
}

func (h *PerformanceHandler) CancelPerformance(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.performances.MarkCancelled(c, id); err != nil {
		handleError(c, err, "CancelPerformance")
		return
	}

	handleSuccess(c, nil, http.StatusOK)
}

func (h *PerformanceHandler) DeactivatePerformance(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.performances.Deactivate(c, id); err != nil {
		handleError(c, err, "DeactivatePerformance")
		return
	}

	handleSuccess(c, nil, http.StatusOK)
}
