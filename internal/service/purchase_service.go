package service

import (
	"context"
	"errors"
	"time"

	"ticketing-backend/internal/database"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/queue"
	"ticketing-backend/internal/repository"
	"ticketing-backend/monitoring"
	apperrors "ticketing-backend/pkg/app_errors"
	"ticketing-backend/pkg/logger"
	"ticketing-backend/pkg/random"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 票號碰撞時的重新產生次數；8 bytes 的亂數空間碰撞機率極低，重試是保險
const ticketNumberAttempts = 3

type PurchaseService interface {
	// PlaceOrder 購票 workflow：付款驗證、座位檢查、建立訂單與票券、扣庫存，
	// 全部在同一個 serializable 交易內完成；提交後才發寄送任務
	PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error)
	GetOrderByID(ctx context.Context, id int) (*model.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int) ([]*model.Order, error)
}

type PurchaseServiceImpl struct {
	db                    database.TxBeginner
	orderRepository       repository.OrderRepository
	ticketRepository      repository.TicketRepository
	performanceRepository repository.PerformanceRepository
	paymentRepository     repository.PaymentRepository
	userRepository        repository.UserRepository
	deliveryQueue         queue.DeliveryQueue
}

func NewPurchaseService(
	db database.TxBeginner,
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
	performanceRepository repository.PerformanceRepository,
	paymentRepository repository.PaymentRepository,
	userRepository repository.UserRepository,
	deliveryQueue queue.DeliveryQueue,
) PurchaseService {
	return &PurchaseServiceImpl{
		db:                    db,
		orderRepository:       orderRepository,
		ticketRepository:      ticketRepository,
		performanceRepository: performanceRepository,
		paymentRepository:     paymentRepository,
		userRepository:        userRepository,
		deliveryQueue:         deliveryQueue,
	}
}

func (s *PurchaseServiceImpl) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	timer := prometheus.NewTimer(monitoring.PurchaseDuration)
	defer timer.ObserveDuration()

	order, err := s.placeOrder(ctx, req)
	monitoring.PurchaseAttempts.WithLabelValues(purchaseResultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	// 提交後的寄送任務：盡力而為，失敗只記 log，已成立的購買不受影響
	s.publishDeliveries(ctx, order)

	return order, nil
}

func (s *PurchaseServiceImpl) placeOrder(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	if err := validateSeatSelections(req.Seats); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 付款必須屬於本人且已完成；一筆付款只能支撐一張訂單（orders.payment_id 唯一）
	payment, err := s.paymentRepository.FindByIDWithLock(ctx, tx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.CustomerID != req.CustomerID {
		return nil, apperrors.ErrPaymentMismatch
	}
	if payment.Status != model.PaymentStatusCompleted {
		return nil, apperrors.ErrPaymentNotCompleted
	}

	// 2. 演出存在、屬於該活動、可售
	performance, err := s.performanceRepository.FindByIDWithLock(ctx, tx, req.PerformanceID)
	if err != nil {
		return nil, err
	}
	if performance.EventID != req.EventID {
		return nil, apperrors.ErrPerformanceMismatch
	}
	if performance.IsCancelled {
		return nil, apperrors.ErrPerformanceCancelled
	}
	if !performance.IsActive {
		return nil, apperrors.ErrPerformanceInactive
	}
	if performance.IsSoldOut {
		return nil, apperrors.ErrPerformanceSoldOut
	}

	// 3. 座位檢查：check-then-insert 留在同一交易內，唯一索引是最後防線
	seatRefs := seatedRefs(req.Seats)
	if len(seatRefs) > 0 {
		taken, err := s.ticketRepository.FindTakenSeats(ctx, tx, performance.ID, seatRefs)
		if err != nil {
			return nil, err
		}
		if len(taken) > 0 {
			keys := make([]string, 0, len(taken))
			for _, ref := range taken {
				keys = append(keys, ref.Key())
			}
			return nil, apperrors.NewSeatUnavailableError(keys)
		}
	}

	// 4. 建立訂單
	total := decimal.Zero
	for _, seat := range req.Seats {
		total = total.Add(seat.Price)
	}

	order, err := s.orderRepository.Create(ctx, tx, &model.Order{
		CustomerID:    req.CustomerID,
		EventID:       req.EventID,
		PerformanceID: performance.ID,
		PaymentID:     payment.ID,
		TotalAmount:   total,
		Status:        model.OrderStatusConfirmed,
	})
	if err != nil {
		return nil, err
	}

	// 5. 建立票券：付款已確認，直接進 purchased 狀態
	now := time.Now().UTC()
	for _, seat := range req.Seats {
		ticket, err := s.createTicket(ctx, tx, order, performance, seat, now)
		if err != nil {
			return nil, err
		}
		order.Tickets = append(order.Tickets, ticket)
	}

	// 6. 扣庫存：單一條件式 UPDATE，同句重算 is_sold_out
	remaining, err := s.performanceRepository.DecrementAvailable(ctx, tx, performance.ID, len(req.Seats))
	if err != nil {
		return nil, err
	}
	err = s.performanceRepository.RecordAdjustment(ctx, tx, &model.InventoryAdjustment{
		PerformanceID: performance.ID,
		Delta:         -len(req.Seats),
		NewAvailable:  remaining,
		Source:        model.AdjustmentSourcePurchase,
	})
	if err != nil {
		return nil, err
	}

	// 7. 提交；序列化衝突在這裡浮現成可重試錯誤
	if err := tx.Commit(ctx); err != nil {
		return nil, repository.TranslateError(err)
	}

	monitoring.InventoryAdjustments.WithLabelValues(model.AdjustmentSourcePurchase).Inc()

	return order, nil
}

func (s *PurchaseServiceImpl) createTicket(
	ctx context.Context,
	tx pgx.Tx,
	order *model.Order,
	performance *model.Performance,
	seat model.SeatSelection,
	now time.Time,
) (*model.Ticket, error) {
	ref := seat.Ref()

	var section, rowLabel, seatNumber *string
	if !ref.IsZero() {
		section, rowLabel, seatNumber = &ref.Section, &ref.Row, &ref.Seat
	}

	for attempt := 0; attempt < ticketNumberAttempts; attempt++ {
		code, err := random.Code(8)
		if err != nil {
			return nil, err
		}
		ticketNumber := "TKT-" + code

		// 23505 會讓整筆交易進入 aborted 狀態，之後的重試必定失敗（25P02）。
		// 每次 insert 包在 savepoint 裡，碰撞時回滾到 savepoint 再試。
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, err
		}

		ticket, err := s.ticketRepository.Create(ctx, sp, &model.Ticket{
			TicketNumber:     ticketNumber,
			EventID:          order.EventID,
			PerformanceID:    performance.ID,
			PerformanceDate:  performance.Date,
			PerformanceStart: performance.StartTime,
			CustomerID:       order.CustomerID,
			OrderID:          &order.ID,
			PurchaseDate:     now,
			Price:            seat.Price,
			Category:         seat.Category,
			Section:          section,
			Row:              rowLabel,
			Seat:             seatNumber,
			Status:           model.TicketStatusPurchased,
			PaymentStatus:    model.TicketPaymentPaid,
			Barcode:          model.BarcodePayload(ticketNumber, order.EventID, performance.ID, ref),
		})
		if err != nil {
			_ = sp.Rollback(ctx)
			if errors.Is(err, apperrors.ErrTicketNumberCollision) {
				continue
			}
			if errors.Is(err, apperrors.ErrSeatUnavailable) {
				return nil, apperrors.NewSeatUnavailableError([]string{ref.Key()})
			}
			return nil, err
		}
		if err := sp.Commit(ctx); err != nil {
			return nil, err
		}
		return ticket, nil
	}

	return nil, apperrors.ErrTicketNumberCollision
}

func (s *PurchaseServiceImpl) publishDeliveries(ctx context.Context, order *model.Order) {
	log := logger.WithComponent("service")

	customer, err := s.userRepository.FindByID(ctx, order.CustomerID)
	if err != nil {
		log.Warn("lookup customer for delivery failed", zap.Int("order_id", order.ID), zap.Error(err))
		return
	}

	for _, ticket := range order.Tickets {
		task := &model.TicketDelivery{
			TicketID:       ticket.ID,
			OrderID:        order.ID,
			RecipientName:  customer.Name,
			RecipientEmail: customer.Email,
		}
		if err := s.deliveryQueue.PublishDelivery(ctx, task); err != nil {
			log.Warn("publish ticket delivery failed",
				zap.Int("ticket_id", ticket.ID), zap.Int("order_id", order.ID), zap.Error(err))
		}
	}
}

func (s *PurchaseServiceImpl) GetOrderByID(ctx context.Context, id int) (*model.Order, error) {
	order, err := s.orderRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tickets, err := s.ticketRepository.ListByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Tickets = tickets

	return order, nil
}

func (s *PurchaseServiceImpl) ListOrdersByCustomer(ctx context.Context, customerID int) ([]*model.Order, error) {
	return s.orderRepository.ListByCustomerID(ctx, customerID)
}

// validateSeatSelections 擋掉同一請求內的重複座位；座位欄位要嘛全填要嘛全空
func validateSeatSelections(seats []model.SeatSelection) error {
	seen := make(map[string]bool, len(seats))
	for _, seat := range seats {
		ref := seat.Ref()
		if ref.IsZero() {
			continue
		}
		if ref.Section == "" || ref.Row == "" || ref.Seat == "" {
			return apperrors.ErrInvalidInput
		}
		if seen[ref.Key()] {
			return apperrors.ErrInvalidInput
		}
		seen[ref.Key()] = true
	}
	return nil
}

func seatedRefs(seats []model.SeatSelection) []model.SeatRef {
	refs := make([]model.SeatRef, 0, len(seats))
	for _, seat := range seats {
		if ref := seat.Ref(); !ref.IsZero() {
			refs = append(refs, ref)
		}
	}
	return refs
}

func purchaseResultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrSeatUnavailable):
		return "seat_unavailable"
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, apperrors.ErrConflictRetryable):
		return "conflict"
	case errors.Is(err, apperrors.ErrPaymentNotCompleted),
		errors.Is(err, apperrors.ErrPerformanceSoldOut),
		errors.Is(err, apperrors.ErrPerformanceCancelled),
		errors.Is(err, apperrors.ErrPerformanceInactive),
		errors.Is(err, apperrors.ErrPerformanceMismatch):
		return "invalid_state"
	default:
		return "error"
	}
}
