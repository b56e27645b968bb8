package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusCancelled, OrderStatusRefunded},
		OrderStatusCancelled: {},
		OrderStatusRefunded:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// IsTerminal 取消/退款後不再轉換
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// Order 訂單：單次付款產生的一組票券，狀態變更會連動成員票券
type Order struct {
	ID            int             `json:"id" db:"id"`
	CustomerID    int             `json:"customer_id" db:"customer_id"`
	EventID       int             `json:"event_id" db:"event_id"`
	PerformanceID int             `json:"performance_id" db:"performance_id"`
	PaymentID     int             `json:"payment_id" db:"payment_id"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Tickets []*Ticket `json:"tickets,omitempty" db:"-"`
}

// SeatSelection 購票時的單一座位選擇；非劃位票座位欄位留空
type SeatSelection struct {
	Section  string          `json:"section"`
	Row      string          `json:"row"`
	Seat     string          `json:"seat"`
	Category string          `json:"category" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

// Ref 座位定位
func (s SeatSelection) Ref() SeatRef {
	return SeatRef{Section: s.Section, Row: s.Row, Seat: s.Seat}
}

// PlaceOrderRequest 建立訂單請求；CustomerID 由認證中介層帶入，不由 body 提供
type PlaceOrderRequest struct {
	PaymentID     int             `json:"payment_id" binding:"required"`
	EventID       int             `json:"event_id" binding:"required"`
	PerformanceID int             `json:"performance_id" binding:"required"`
	Seats         []SeatSelection `json:"seats" binding:"required,min=1,dive"`
	CustomerID    int             `json:"-"`
}

// OrderResponse 訂單響應
type OrderResponse struct {
	ID            int               `json:"id"`
	CustomerID    int               `json:"customer_id"`
	EventID       int               `json:"event_id"`
	PerformanceID int               `json:"performance_id"`
	PaymentID     int               `json:"payment_id"`
	TotalAmount   string            `json:"total_amount"`
	Status        string            `json:"status"`
	Tickets       []*TicketResponse `json:"tickets,omitempty"`
	CreatedAt     string            `json:"created_at"`
}

func (o *Order) ToResponse() *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		EventID:       o.EventID,
		PerformanceID: o.PerformanceID,
		PaymentID:     o.PaymentID,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, t := range o.Tickets {
		resp.Tickets = append(resp.Tickets, t.ToResponse())
	}
	return resp
}
