package service

import (
	"context"

	"ticketing-backend/internal/database"
	"ticketing-backend/internal/model"
	"ticketing-backend/internal/repository"
	"ticketing-backend/monitoring"
	"ticketing-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PerformanceService interface {
	Create(ctx context.Context, req *model.CreatePerformanceRequest) (*model.Performance, error)
	GetByID(ctx context.Context, id int) (*model.Performance, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.Performance, error)
	// OverrideAvailable 人工校正庫存：與購買/取消流程分離並留下稽核紀錄
	OverrideAvailable(ctx context.Context, performanceID int, value int, actorID int) (*model.Performance, error)
	MarkCancelled(ctx context.Context, performanceID int) error
	Deactivate(ctx context.Context, performanceID int) error
}

type PerformanceServiceImpl struct {
	db                    database.TxBeginner
	performanceRepository repository.PerformanceRepository
	logger                *zap.Logger
}

func NewPerformanceService(db database.TxBeginner, performanceRepository repository.PerformanceRepository) PerformanceService {
	return &PerformanceServiceImpl{
		db:                    db,
		performanceRepository: performanceRepository,
		logger:                logger.WithComponent("performance_service"),
	}
}

func (s *PerformanceServiceImpl) Create(ctx context.Context, req *model.CreatePerformanceRequest) (*model.Performance, error) {
	total := req.TotalFromTypes()

	performance := &model.Performance{
		PerformanceID:    uuid.New(),
		EventID:          req.EventID,
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		TotalCapacity:    total,
		AvailableTickets: total,
		IsSoldOut:        total == 0,
		IsActive:         true,
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := s.performanceRepository.Create(ctx, tx, performance)
	if err != nil {
		return nil, err
	}

	for _, t := range req.TicketTypes {
		ticketType := &model.TicketType{
			PerformanceID: created.ID,
			Name:          t.Name,
			Price:         t.Price,
			Description:   t.Description,
			Available:     t.Available,
		}
		tt, err := s.performanceRepository.CreateTicketType(ctx, tx, ticketType)
		if err != nil {
			return nil, err
		}
		created.TicketTypes = append(created.TicketTypes, tt)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, repository.TranslateError(err)
	}

	return created, nil
}

func (s *PerformanceServiceImpl) GetByID(ctx context.Context, id int) (*model.Performance, error) {
	performance, err := s.performanceRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	types, err := s.performanceRepository.ListTicketTypes(ctx, id)
	if err != nil {
		return nil, err
	}
	performance.TicketTypes = types
	return performance, nil
}

func (s *PerformanceServiceImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.Performance, error) {
	return s.performanceRepository.ListByEventID(ctx, eventID)
}

func (s *PerformanceServiceImpl) OverrideAvailable(ctx context.Context, performanceID int, value int, actorID int) (*model.Performance, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 先鎖定以取得舊值計算 delta
	before, err := s.performanceRepository.FindByIDWithLock(ctx, tx, performanceID)
	if err != nil {
		return nil, err
	}

	available, err := s.performanceRepository.OverrideAvailable(ctx, tx, performanceID, value)
	if err != nil {
		return nil, err
	}

	err = s.performanceRepository.RecordAdjustment(ctx, tx, &model.InventoryAdjustment{
		PerformanceID: performanceID,
		Delta:         available - before.AvailableTickets,
		NewAvailable:  available,
		Source:        model.AdjustmentSourceManual,
		ActorID:       &actorID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, repository.TranslateError(err)
	}

	monitoring.InventoryAdjustments.WithLabelValues(model.AdjustmentSourceManual).Inc()
	s.logger.Info("inventory override",
		zap.Int("performance_id", performanceID),
		zap.Int("actor_id", actorID),
		zap.Int("previous", before.AvailableTickets),
		zap.Int("available", available),
	)
	before.AvailableTickets = available
	before.IsSoldOut = available <= 0
	return before, nil
}

func (s *PerformanceServiceImpl) MarkCancelled(ctx context.Context, performanceID int) error {
	return s.performanceRepository.MarkCancelled(ctx, performanceID)
}

func (s *PerformanceServiceImpl) Deactivate(ctx context.Context, performanceID int) error {
	return s.performanceRepository.Deactivate(ctx, performanceID)
}
