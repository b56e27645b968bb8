package service

import (
	"context"

	"ticketing-backend/internal/database"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/repository"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type TicketService interface {
	GetByID(ctx context.Context, id int) (*model.Ticket, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	ListByCustomer(ctx context.Context, customerID int) ([]*model.Ticket, error)
	// CheckIn 入場核銷：purchased -> used
	CheckIn(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	// Reactivate 管理端重新啟用已取消的票：需重新檢查座位並重扣庫存，
	// 庫存已耗盡或座位已被賣掉時失敗且不留任何部分效果
	Reactivate(ctx context.Context, ticketID int, actorID int) (*model.Ticket, error)
}

type TicketServiceImpl struct {
	db                    database.TxBeginner
	ticketRepository      repository.TicketRepository
	performanceRepository repository.PerformanceRepository
}

func NewTicketService(
	db database.TxBeginner,
	ticketRepository repository.TicketRepository,
	performanceRepository repository.PerformanceRepository,
) TicketService {
	return &TicketServiceImpl{
		db:                    db,
		ticketRepository:      ticketRepository,
		performanceRepository: performanceRepository,
	}
}

func (s *TicketServiceImpl) GetByID(ctx context.Context, id int) (*model.Ticket, error) {
	return s.ticketRepository.FindByID(ctx, id)
}

func (s *TicketServiceImpl) GetByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	return s.ticketRepository.FindByTicketNumber(ctx, ticketNumber)
}

func (s *TicketServiceImpl) ListByCustomer(ctx context.Context, customerID int) ([]*model.Ticket, error) {
	return s.ticketRepository.ListByCustomerID(ctx, customerID)
}

func (s *TicketServiceImpl) CheckIn(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	found, err := s.ticketRepository.FindByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.ticketRepository.FindByIDWithLock(ctx, tx, found.ID)
	if err != nil {
		return nil, err
	}

	if !ticket.Status.CanTransitionTo(model.TicketStatusUsed) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	if err := s.ticketRepository.UpdateStatus(ctx, tx, ticket.ID, model.TicketStatusUsed, ticket.PaymentStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, repository.TranslateError(err)
	}

	ticket.Status = model.TicketStatusUsed
	return ticket, nil
}

func (s *TicketServiceImpl) Reactivate(ctx context.Context, ticketID int, actorID int) (*model.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.ticketRepository.FindByIDWithLock(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	if !ticket.Status.CanTransitionTo(model.TicketStatusPurchased) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	// 取消期間座位可能已被賣掉
	if ref := ticket.SeatRef(); !ref.IsZero() {
		taken, err := s.ticketRepository.FindTakenSeats(ctx, tx, ticket.PerformanceID, []model.SeatRef{ref})
		if err != nil {
			return nil, err
		}
		if len(taken) > 0 {
			return nil, apperrors.NewSeatUnavailableError([]string{ref.Key()})
		}
	}

	remaining, err := s.performanceRepository.DecrementAvailable(ctx, tx, ticket.PerformanceID, 1)
	if err != nil {
		return nil, err
	}
	err = s.performanceRepository.RecordAdjustment(ctx, tx, &model.InventoryAdjustment{
		PerformanceID: ticket.PerformanceID,
		Delta:         -1,
		NewAvailable:  remaining,
		Source:        model.AdjustmentSourceReactivation,
		ActorID:       &actorID,
	})
	if err != nil {
		return nil, err
	}

	// 付款狀態回到取消前的樣子：退過款/付過款 → paid，從未付款 → pending
	restoredPayment := model.TicketPaymentPending
	if ticket.PaymentStatus == model.TicketPaymentPaid || ticket.PaymentStatus == model.TicketPaymentRefunded {
		restoredPayment = model.TicketPaymentPaid
	}

	if err := s.ticketRepository.UpdateStatus(ctx, tx, ticket.ID, model.TicketStatusPurchased, restoredPayment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, repository.TranslateError(err)
	}

	ticket.Status = model.TicketStatusPurchased
	ticket.PaymentStatus = restoredPayment
	return ticket, nil
}
