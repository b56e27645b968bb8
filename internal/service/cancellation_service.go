package service

import (
	"context"

	"ticketing-backend/internal/database"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/repository"
	"ticketing-backend/monitoring"
	apperrors "ticketing-backend/pkg/app_errors"
	"ticketing-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CancellationService interface {
	// CancelOrder 訂單取消/退款：狀態連動所有成員票券，
	// 庫存以「實際轉出佔用狀態的票數」一次回補，與狀態寫入同一交易提交
	CancelOrder(ctx context.Context, orderID int, target model.OrderStatus) (*model.Order, error)
	// CancelTickets 以票為單位的取消/退款；回補量按演出分組各自一次調整。
	// actor 低於 staff 時只能取消自己的票
	CancelTickets(ctx context.Context, ticketIDs []int, target model.TicketStatus, actor model.Identity) error
}

type CancellationServiceImpl struct {
	db                    database.TxBeginner
	orderRepository       repository.OrderRepository
	ticketRepository      repository.TicketRepository
	performanceRepository repository.PerformanceRepository
}

func NewCancellationService(
	db database.TxBeginner,
	orderRepository repository.OrderRepository,
	ticketRepository repository.TicketRepository,
	performanceRepository repository.PerformanceRepository,
) CancellationService {
	return &CancellationServiceImpl{
		db:                    db,
		orderRepository:       orderRepository,
		ticketRepository:      ticketRepository,
		performanceRepository: performanceRepository,
	}
}

func (s *CancellationServiceImpl) CancelOrder(ctx context.Context, orderID int, target model.OrderStatus) (*model.Order, error) {
	if target != model.OrderStatusCancelled && target != model.OrderStatusRefunded {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := s.orderRepository.FindByIDWithLock(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == target {
		// 重複取消是 no-op：不再動庫存
		return order, nil
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	tickets, err := s.ticketRepository.ListByOrderIDWithLock(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	restored, err := s.transitionTickets(ctx, tx, tickets, ticketTargetFor(target))
	if err != nil {
		return nil, err
	}

	source := model.AdjustmentSourceCancellation
	if target == model.OrderStatusRefunded {
		source = model.AdjustmentSourceRefund
	}
	if restored > 0 {
		if err := s.restoreInventory(ctx, tx, order.PerformanceID, restored, source); err != nil {
			return nil, err
		}
	}

	updated, err := s.orderRepository.UpdateStatus(ctx, tx, orderID, target)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, repository.TranslateError(err)
	}

	if restored > 0 {
		monitoring.InventoryAdjustments.WithLabelValues(source).Add(float64(restored))
	}

	logger.WithComponent("service").Info("order cancelled",
		zap.Int("order_id", orderID), zap.String("status", string(target)), zap.Int("restored", restored))

	return updated, nil
}

func (s *CancellationServiceImpl) CancelTickets(ctx context.Context, ticketIDs []int, target model.TicketStatus, actor model.Identity) error {
	if target != model.TicketStatusCancelled && target != model.TicketStatusRefunded {
		return apperrors.ErrInvalidInput
	}
	if len(ticketIDs) == 0 {
		return apperrors.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tickets, err := s.ticketRepository.ListByIDsWithLock(ctx, tx, ticketIDs)
	if err != nil {
		return err
	}
	if len(tickets) != len(ticketIDs) {
		return apperrors.ErrTicketNotFound
	}

	if !actor.Role.AtLeast(model.RoleStaff) {
		for _, ticket := range tickets {
			if ticket.CustomerID != actor.UserID {
				return apperrors.ErrForbidden
			}
		}
	}

	// 同一批票可能橫跨多場演出，回補量按演出分組
	restoredByPerformance := make(map[int]int)
	for _, ticket := range tickets {
		transitioned, err := s.transitionTicket(ctx, tx, ticket, target)
		if err != nil {
			return err
		}
		if transitioned {
			restoredByPerformance[ticket.PerformanceID]++
		}
	}

	source := model.AdjustmentSourceCancellation
	if target == model.TicketStatusRefunded {
		source = model.AdjustmentSourceRefund
	}
	for performanceID, count := range restoredByPerformance {
		if err := s.restoreInventory(ctx, tx, performanceID, count, source); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.TranslateError(err)
	}

	for _, count := range restoredByPerformance {
		monitoring.InventoryAdjustments.WithLabelValues(source).Add(float64(count))
	}

	return nil
}

// transitionTickets 批次轉換；回傳轉出佔用狀態的票數
func (s *CancellationServiceImpl) transitionTickets(ctx context.Context, tx pgx.Tx, tickets []*model.Ticket, target model.TicketStatus) (int, error) {
	restored := 0
	for _, ticket := range tickets {
		transitioned, err := s.transitionTicket(ctx, tx, ticket, target)
		if err != nil {
			return 0, err
		}
		if transitioned {
			restored++
		}
	}
	return restored, nil
}

// transitionTicket 單票轉換。已處於 cancelled/refunded 的票跳過（冪等），
// 無法退款的 reserved 票退而取消。回傳是否真的轉出了佔用庫存的狀態。
func (s *CancellationServiceImpl) transitionTicket(ctx context.Context, tx pgx.Tx, ticket *model.Ticket, target model.TicketStatus) (bool, error) {
	if ticket.Status == model.TicketStatusCancelled || ticket.Status == model.TicketStatusRefunded {
		return false, nil
	}

	effective := target
	if !ticket.Status.CanTransitionTo(effective) {
		if effective == model.TicketStatusRefunded && ticket.Status.CanTransitionTo(model.TicketStatusCancelled) {
			effective = model.TicketStatusCancelled
		} else {
			// used 等終態票不可取消；跳過而非中斷整批
			logger.WithComponent("service").Warn("skip ticket transition",
				zap.Int("ticket_id", ticket.ID),
				zap.String("from", string(ticket.Status)), zap.String("to", string(target)))
			return false, nil
		}
	}

	// 先前已付款 → refunded，否則 cancelled
	paymentStatus := model.TicketPaymentCancelled
	if ticket.PaymentStatus == model.TicketPaymentPaid {
		paymentStatus = model.TicketPaymentRefunded
	}

	if err := s.ticketRepository.UpdateStatus(ctx, tx, ticket.ID, effective, paymentStatus); err != nil {
		return false, err
	}

	return ticket.Status.OccupiesInventory(), nil
}

func (s *CancellationServiceImpl) restoreInventory(ctx context.Context, tx pgx.Tx, performanceID, count int, source string) error {
	remaining, err := s.performanceRepository.IncrementAvailable(ctx, tx, performanceID, count)
	if err != nil {
		return err
	}

	return s.performanceRepository.RecordAdjustment(ctx, tx, &model.InventoryAdjustment{
		PerformanceID: performanceID,
		Delta:         count,
		NewAvailable:  remaining,
		Source:        source,
	})
}

func ticketTargetFor(orderTarget model.OrderStatus) model.TicketStatus {
	if orderTarget == model.OrderStatusRefunded {
		return model.TicketStatusRefunded
	}
	return model.TicketStatusCancelled
}
