package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusReserved  TicketStatus = "reserved"
	TicketStatusPurchased TicketStatus = "purchased"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusReserved, TicketStatusPurchased, TicketStatusUsed,
		TicketStatusCancelled, TicketStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// cancelled -> purchased 是管理端的重新啟用路徑，需重新檢查座位與庫存
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusReserved:  {TicketStatusPurchased, TicketStatusCancelled},
		TicketStatusPurchased: {TicketStatusUsed, TicketStatusCancelled, TicketStatusRefunded},
		TicketStatusUsed:      {},
		TicketStatusCancelled: {TicketStatusPurchased},
		TicketStatusRefunded:  {},
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

// OccupiesInventory 此狀態是否佔用演出庫存
func (s TicketStatus) OccupiesInventory() bool {
	switch s {
	case TicketStatusReserved, TicketStatusPurchased, TicketStatusUsed:
		return true
	}
	return false
}

// IsTerminal 終態（refunded、used）不再轉換；cancelled 保留重新啟用路徑
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusUsed || s == TicketStatusRefunded
}

// TicketPaymentStatus 票券付款狀態
type TicketPaymentStatus string

const (
	TicketPaymentPending   TicketPaymentStatus = "pending"
	TicketPaymentPaid      TicketPaymentStatus = "paid"
	TicketPaymentFailed    TicketPaymentStatus = "failed"
	TicketPaymentRefunded  TicketPaymentStatus = "refunded"
	TicketPaymentCancelled TicketPaymentStatus = "cancelled"
)

func (s TicketPaymentStatus) IsValid() bool {
	switch s {
	case TicketPaymentPending, TicketPaymentPaid, TicketPaymentFailed,
		TicketPaymentRefunded, TicketPaymentCancelled:
		return true
	}
	return false
}

// 邊界正規化表：舊資料與外部輸入的同義值只在此對應，不做額外猜測
var ticketStatusAliases = map[string]TicketStatus{
	"reserved":   TicketStatusReserved,
	"purchased":  TicketStatusPurchased,
	"active":     TicketStatusPurchased,
	"used":       TicketStatusUsed,
	"checked-in": TicketStatusUsed,
	"cancelled":  TicketStatusCancelled,
	"refunded":   TicketStatusRefunded,
}

var ticketPaymentAliases = map[string]TicketPaymentStatus{
	"pending":   TicketPaymentPending,
	"paid":      TicketPaymentPaid,
	"completed": TicketPaymentPaid,
	"failed":    TicketPaymentFailed,
	"refunded":  TicketPaymentRefunded,
	"cancelled": TicketPaymentCancelled,
}

// NormalizeTicketStatus 將外部輸入正規化為合法狀態
func NormalizeTicketStatus(raw string) (TicketStatus, bool) {
	s, ok := ticketStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// NormalizeTicketPaymentStatus 將外部輸入正規化為合法付款狀態
func NormalizeTicketPaymentStatus(raw string) (TicketPaymentStatus, bool) {
	s, ok := ticketPaymentAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// SeatRef 座位定位（section, row, seat）；全空代表非劃位（general admission）
type SeatRef struct {
	Section string `json:"section"`
	Row     string `json:"row"`
	Seat    string `json:"seat"`
}

// IsZero 非劃位票沒有座位定位
func (s SeatRef) IsZero() bool {
	return s.Section == "" && s.Row == "" && s.Seat == ""
}

// Key "section-row-seat"，座位衝突回報使用
func (s SeatRef) Key() string {
	return fmt.Sprintf("%s-%s-%s", s.Section, s.Row, s.Seat)
}

// Ticket 票券：一個已售出/保留的座位或非劃位單位
// PerformanceDate/PerformanceStart 為建立當下的快照，演出改期後刻意維持原值
type Ticket struct {
	ID               int                 `json:"id" db:"id"`
	TicketNumber     string              `json:"ticket_number" db:"ticket_number"`
	EventID          int                 `json:"event_id" db:"event_id"`
	PerformanceID    int                 `json:"performance_id" db:"performance_id"`
	PerformanceDate  time.Time           `json:"performance_date" db:"performance_date"`
	PerformanceStart time.Time           `json:"performance_start" db:"performance_start"`
	CustomerID       int                 `json:"customer_id" db:"customer_id"`
	OrderID          *int                `json:"order_id,omitempty" db:"order_id"`
	PurchaseDate     time.Time           `json:"purchase_date" db:"purchase_date"`
	Price            decimal.Decimal     `json:"price" db:"price"`
	Category         string              `json:"category" db:"category"`
	Section          *string             `json:"section,omitempty" db:"section"`
	Row              *string             `json:"row,omitempty" db:"row_label"`
	Seat             *string             `json:"seat,omitempty" db:"seat_number"`
	Status           TicketStatus        `json:"status" db:"status"`
	PaymentStatus    TicketPaymentStatus `json:"payment_status" db:"payment_status"`
	Barcode          string              `json:"barcode" db:"barcode"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// SeatRef 從選填欄位組回座位定位
func (t *Ticket) SeatRef() SeatRef {
	var ref SeatRef
	if t.Section != nil {
		ref.Section = *t.Section
	}
	if t.Row != nil {
		ref.Row = *t.Row
	}
	if t.Seat != nil {
		ref.Seat = *t.Seat
	}
	return ref
}

// BarcodePayload 條碼內容：由票號與識別欄位決定性導出，同樣輸入永遠得到同樣 payload
func BarcodePayload(ticketNumber string, eventID, performanceID int, seat SeatRef) string {
	raw := fmt.Sprintf("%s|%d|%d|%s", ticketNumber, eventID, performanceID, seat.Key())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TicketResponse 票券響應
type TicketResponse struct {
	ID            int     `json:"id"`
	TicketNumber  string  `json:"ticket_number"`
	EventID       int     `json:"event_id"`
	PerformanceID int     `json:"performance_id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Price         string  `json:"price"`
	Category      string  `json:"category"`
	Seat          *string `json:"seat,omitempty"`
	Barcode       string  `json:"barcode"`
}

func (t *Ticket) ToResponse() *TicketResponse {
	resp := &TicketResponse{
		ID:            t.ID,
		TicketNumber:  t.TicketNumber,
		EventID:       t.EventID,
		PerformanceID: t.PerformanceID,
		Status:        string(t.Status),
		PaymentStatus: string(t.PaymentStatus),
		Price:         t.Price.StringFixed(2),
		Category:      t.Category,
		Barcode:       t.Barcode,
	}
	if ref := t.SeatRef(); !ref.IsZero() {
		key := ref.Key()
		resp.Seat = &key
	}
	return resp
}
