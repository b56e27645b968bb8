package handler

import (
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	purchase     service.PurchaseService
	cancellation service.CancellationService
}

func NewOrderHandler(purchase service.PurchaseService, cancellation service.CancellationService) *OrderHandler {
	return &OrderHandler{purchase: purchase, cancellation: cancellation}
}

func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("orders", h.GetOrders)
	r.GET("orders/:id", h.GetOrder)
	r.POST("orders", h.PlaceOrder)
	r.PUT("orders/:id/cancel", h.CancelOrder)
	r.PUT("orders/:id/refund", h.RefundOrder)
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req model.PlaceOrderRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	req.CustomerID = identity.UserID

	order, err := h.purchase.PlaceOrder(c, req)
	if err != nil {
		handleError(c, err, "PlaceOrder")
		return
	}

	handleSuccess(c, order.ToResponse(), http.StatusCreated)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	order, err := h.purchase.GetOrderByID(c, id)
	if err != nil {
		handleError(c, err, "GetOrder")
		return
	}

	// 只允許本人或 staff 以上查詢
	if identity, ok := auth.IdentityFrom(c); ok {
		if order.CustomerID != identity.UserID && !identity.Role.AtLeast(model.RoleStaff) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	handleSuccess(c, order.ToResponse(), http.StatusOK)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	orders, err := h.purchase.ListOrdersByCustomer(c, identity.UserID)
	if err != nil {
		handleError(c, err, "GetOrders")
		return
	}

	responses := make([]*model.OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, order.ToResponse())
	}
	handleSuccess(c, responses, http.StatusOK)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.transitionOrder(c, model.OrderStatusCancelled, "CancelOrder")
}

func (h *OrderHandler) RefundOrder(c *gin.Context) {
	h.transitionOrder(c, model.OrderStatusRefunded, "RefundOrder")
}

func (h *OrderHandler) transitionOrder(c *gin.Context, target model.OrderStatus, operation string) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	// 與 GetOrder 相同的守門：只有本人或 staff 以上能取消/退款
	existing, err := h.purchase.GetOrderByID(c, id)
	if err != nil {
		handleError(c, err, operation)
		return
	}
	if existing.CustomerID != identity.UserID && !identity.Role.AtLeast(model.RoleStaff) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	order, err := h.cancellation.CancelOrder(c, id, target)
	if err != nil {
		handleError(c, err, operation)
		return
	}

	handleSuccess(c, order.ToResponse(), http.StatusOK)
}
