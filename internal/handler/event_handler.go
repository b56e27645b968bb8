package handler

import (
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	events service.EventService
}

func NewEventHandler(events service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("events", h.GetEvents)
	r.GET("events/:id", h.GetEvent)
	r.POST("events", auth.RequireRole(model.RoleManager), h.CreateEvent)
	r.PUT("events/:id", auth.RequireRole(model.RoleManager), h.UpdateEvent)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	identity, _ := auth.IdentityFrom(c)

	event, err := h.events.Create(c, identity.UserID, &req)
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}

	handleSuccess(c, event, http.StatusCreated)
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.events.List(c)
	if err != nil {
		handleError(c, err, "GetEvents")
		return
	}

	handleSuccess(c, events, http.StatusOK)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	event, err := h.events.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetEvent")
		return
	}

	handleSuccess(c, event, http.StatusOK)
}

type updateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	VenueName   *string `json:"venue_name"`
	IsActive    *bool   `json:"is_active"`
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req updateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	event, err := h.events.Update(c, id, model.UpdateEventParams{
		Name:        req.Name,
		Description: req.Description,
		VenueName:   req.VenueName,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}

	handleSuccess(c, event, http.StatusOK)
}
