package handler

import (
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	holds service.SeatHoldService
}

func NewSeatHandler(holds service.SeatHoldService) *SeatHandler {
	return &SeatHandler{holds: holds}
}

func (h *SeatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("performances/:id/holds", h.HoldSeats)
	r.DELETE("performances/:id/holds", h.ReleaseSeats)
	r.POST("performances/:id/holds/availability", h.SeatAvailability)
}

type seatHoldRequest struct {
	Seats []model.SeatRef `json:"seats" binding:"required,min=1"`
}

func (h *SeatHandler) HoldSeats(c *gin.Context) {
	performanceID, seats, identity, ok := h.bindHoldRequest(c)
	if !ok {
		return
	}

	if err := h.holds.HoldSeats(c, performanceID, seats, identity.UserID); err != nil {
		handleError(c, err, "HoldSeats")
		return
	}

	handleSuccess(c, nil, http.StatusCreated)
}

func (h *SeatHandler) ReleaseSeats(c *gin.Context) {
	performanceID, seats, identity, ok := h.bindHoldRequest(c)
	if !ok {
		return
	}

	released, err := h.holds.ReleaseSeats(c, performanceID, seats, identity.UserID)
	if err != nil {
		handleError(c, err, "ReleaseSeats")
		return
	}

	handleSuccess(c, gin.H{"released": released}, http.StatusOK)
}

func (h *SeatHandler) SeatAvailability(c *gin.Context) {
	performanceID, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req seatHoldRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	availability, err := h.holds.SeatAvailability(c, performanceID, req.Seats)
	if err != nil {
		handleError(c, err, "SeatAvailability")
		return
	}

	handleSuccess(c, availability, http.StatusOK)
}

func (h *SeatHandler) bindHoldRequest(c *gin.Context) (int, []model.SeatRef, model.Identity, bool) {
	performanceID, ok := PathID(c, "id")
	if !ok {
		return 0, nil, model.Identity{}, false
	}

	var req seatHoldRequest
	if err := BindJson(c, &req); err != nil {
		return 0, nil, model.Identity{}, false
	}

	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return 0, nil, model.Identity{}, false
	}

	return performanceID, req.Seats, identity, true
}
