package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"ticketing-backend/internal/auth"
	"ticketing-backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func createJSONHTTPRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// identityMiddleware 測試用：跳過 JWT 直接注入身分
func identityMiddleware(identity model.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SetIdentity(c, identity)
		c.Next()
	}
}

type PurchaseServiceMock struct {
	mock.Mock
}

func (m *PurchaseServiceMock) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *PurchaseServiceMock) GetOrderByID(ctx context.Context, id int) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *PurchaseServiceMock) ListOrdersByCustomer(ctx context.Context, customerID int) ([]*model.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

type CancellationServiceMock struct {
	mock.Mock
}

func (m *CancellationServiceMock) CancelOrder(ctx context.Context, orderID int, target model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *CancellationServiceMock) CancelTickets(ctx context.Context, ticketIDs []int, target model.TicketStatus, actor model.Identity) error {
	args := m.Called(ctx, ticketIDs, target, actor)
	return args.Error(0)
}

type TicketServiceMock struct {
	mock.Mock
}

func (m *TicketServiceMock) GetByID(ctx context.Context, id int) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) GetByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) ListByCustomer(ctx context.Context, customerID int) ([]*model.Ticket, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) CheckIn(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) Reactivate(ctx context.Context, ticketID int, actorID int) (*model.Ticket, error) {
	args := m.Called(ctx, ticketID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}
