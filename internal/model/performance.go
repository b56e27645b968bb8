package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Performance 一場活動的單次演出：剩餘庫存的唯一事實來源
type Performance struct {
	ID               int        `json:"id" db:"id"`
	PerformanceID    uuid.UUID  `json:"performance_id" db:"performance_id"`
	EventID          int        `json:"event_id" db:"event_id"`
	Date             time.Time  `json:"date" db:"date"`
	StartTime        time.Time  `json:"start_time" db:"start_time"`
	EndTime          time.Time  `json:"end_time" db:"end_time"`
	TotalCapacity    int        `json:"total_capacity" db:"total_capacity"`
	AvailableTickets int        `json:"available_tickets" db:"available_tickets"`
	IsSoldOut        bool       `json:"is_sold_out" db:"is_sold_out"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	IsCancelled      bool       `json:"is_cancelled" db:"is_cancelled"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	TicketTypes []*TicketType `json:"ticket_types,omitempty" db:"-"`
}

// Purchasable 檢查演出是否可售（上架中、未取消、未售完）
func (p *Performance) Purchasable() bool {
	return p.IsActive && !p.IsCancelled && !p.IsSoldOut && p.DeletedAt == nil
}

// TicketType 票種定義（名稱、票價、各票種數量）
type TicketType struct {
	ID            int             `json:"id" db:"id"`
	PerformanceID int             `json:"performance_id" db:"performance_id"`
	Name          string          `json:"name" db:"name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Description   *string         `json:"description,omitempty" db:"description"`
	Available     int             `json:"available" db:"available"`
}

type CreateTicketTypeRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description *string         `json:"description"`
	Available   int             `json:"available" binding:"required,min=0"`
}

type CreatePerformanceRequest struct {
	EventID     int                       `json:"event_id" binding:"required"`
	Date        time.Time                 `json:"date" binding:"required"`
	StartTime   time.Time                 `json:"start_time" binding:"required"`
	EndTime     time.Time                 `json:"end_time" binding:"required"`
	TicketTypes []CreateTicketTypeRequest `json:"ticket_types" binding:"required,min=1,dive"`
}

// TotalFromTypes 初始可售量 = 各票種數量總和
func (r *CreatePerformanceRequest) TotalFromTypes() int {
	total := 0
	for _, tt := range r.TicketTypes {
		total += tt.Available
	}
	return total
}

// InventoryAdjustment 庫存異動稽核紀錄：workflow 異動與人工覆寫分開記錄，不可混用
type InventoryAdjustment struct {
	ID            int       `json:"id" db:"id"`
	PerformanceID int       `json:"performance_id" db:"performance_id"`
	Delta         int       `json:"delta" db:"delta"`
	NewAvailable  int       `json:"new_available" db:"new_available"`
	Source        string    `json:"source" db:"source"` // purchase / cancellation / refund / reactivation / manual
	ActorID       *int      `json:"actor_id,omitempty" db:"actor_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

const (
	AdjustmentSourcePurchase     = "purchase"
	AdjustmentSourceCancellation = "cancellation"
	AdjustmentSourceRefund       = "refund"
	AdjustmentSourceReactivation = "reactivation"
	AdjustmentSourceManual       = "manual"
)
