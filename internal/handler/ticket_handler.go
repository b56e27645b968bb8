package handler

import (
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/service"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	tickets      service.TicketService
	cancellation service.CancellationService
}

func NewTicketHandler(tickets service.TicketService, cancellation service.CancellationService) *TicketHandler {
	return &TicketHandler{tickets: tickets, cancellation: cancellation}
}

func (h *TicketHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("tickets", h.GetMyTickets)
	r.GET("tickets/:id", h.GetTicket)
	r.POST("tickets/cancel", h.CancelTickets)
	r.POST("tickets/:id/check-in", auth.RequireRole(model.RoleStaff), h.CheckIn)
	r.POST("tickets/:id/reactivate", auth.RequireRole(model.RoleManager), h.Reactivate)
}

func (h *TicketHandler) GetMyTickets(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	tickets, err := h.tickets.ListByCustomer(c, identity.UserID)
	if err != nil {
		handleError(c, err, "GetMyTickets")
		return
	}

	responses := make([]*model.TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		responses = append(responses, ticket.ToResponse())
	}
	handleSuccess(c, responses, http.StatusOK)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.tickets.GetByID(c, id)
	if err != nil {
		handleError(c, err, "GetTicket")
		return
	}

	if identity, ok := auth.IdentityFrom(c); ok {
		if ticket.CustomerID != identity.UserID && !identity.Role.AtLeast(model.RoleStaff) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	handleSuccess(c, ticket.ToResponse(), http.StatusOK)
}

type cancelTicketsRequest struct {
	TicketIDs []int  `json:"ticket_ids" binding:"required,min=1"`
	Target    string `json:"target"`
}

// CancelTickets 批次取消/退票；target 省略時預設 cancelled。
// 一般顧客只能取消自己的票，staff 以上不受限
func (h *TicketHandler) CancelTickets(c *gin.Context) {
	var req cancelTicketsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	target := model.TicketStatusCancelled
	if req.Target != "" {
		normalized, ok := model.NormalizeTicketStatus(req.Target)
		if !ok {
			handleError(c, apperrors.ErrInvalidInput, "CancelTickets")
			return
		}
		target = normalized
	}

	if err := h.cancellation.CancelTickets(c, req.TicketIDs, target, identity); err != nil {
		handleError(c, err, "CancelTickets")
		return
	}

	handleSuccess(c, nil, http.StatusOK)
}

func (h *TicketHandler) CheckIn(c *gin.Context) {
	ticketNumber := c.Param("id")
	if ticketNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	ticket, err := h.tickets.CheckIn(c, ticketNumber)
	if err != nil {
		handleError(c, err, "CheckIn")
		return
	}

	handleSuccess(c, ticket.ToResponse(), http.StatusOK)
}

func (h *TicketHandler) Reactivate(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	identity, _ := auth.IdentityFrom(c)

	ticket, err := h.tickets.Reactivate(c, id, identity.UserID)
	if err != nil {
		handleError(c, err, "Reactivate")
		return
	}

	handleSuccess(c, ticket.ToResponse(), http.StatusOK)
}
