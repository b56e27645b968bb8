package handler

import (
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/service"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("payments", h.CreatePayment)
	r.GET("payments/:id", h.GetPayment)
	r.PUT("payments/:id/status", auth.RequireRole(model.RoleStaff), h.UpdateStatus)
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req model.CreatePaymentRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	payment, err := h.payments.Create(c, identity.UserID, &req)
	if err != nil {
		handleError(c, err, "CreatePayment")
		return
	}

	handleSuccess(c, payment, http.StatusCreated)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetPayment")
		return
	}

	if identity, ok := auth.IdentityFrom(c); ok {
		if payment.CustomerID != identity.UserID && !identity.Role.AtLeast(model.RoleStaff) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	handleSuccess(c, payment, http.StatusOK)
}

type updatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var req updatePaymentStatusRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	status := model.PaymentStatus(req.Status)
	if !status.IsValid() {
		handleError(c, apperrors.ErrInvalidInput, "UpdatePaymentStatus")
		return
	}

	payment, err := h.payments.UpdateStatus(c, id, status)
	if err != nil {
		handleError(c, err, "UpdatePaymentStatus")
		return
	}

	handleSuccess(c, payment, http.StatusOK)
}
