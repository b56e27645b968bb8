package service

import (
	"context"
	"errors"
	"time"

	"ticketing-backend/internal/cache"
	"ticketing-backend/internal/model"
	"ticketing-backend/monitoring"
	apperrors "ticketing-backend/pkg/app_errors"
)

// DefaultHoldTTL 前端結帳流程的座位佔位時間
const DefaultHoldTTL = 5 * time.Minute

type SeatHoldService interface {
	HoldSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int) error
	ReleaseSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int) (int, error)
	SeatAvailability(ctx context.Context, performanceID int, seats []model.SeatRef) (map[string]bool, error)
}

type SeatHoldServiceImpl struct {
	holds   cache.SeatHoldManager
	holdTTL time.Duration
}

func NewSeatHoldService(holds cache.SeatHoldManager, holdTTL time.Duration) SeatHoldService {
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &SeatHoldServiceImpl{
		holds:   holds,
		holdTTL: holdTTL,
	}
}

func (s *SeatHoldServiceImpl) HoldSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int) error {
	err := s.holds.HoldSeats(ctx, performanceID, seats, userID, s.holdTTL)
	monitoring.SeatHoldOperations.WithLabelValues("hold", holdResultLabel(err)).Inc()
	return err
}

func (s *SeatHoldServiceImpl) ReleaseSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int) (int, error) {
	released, err := s.holds.ReleaseSeats(ctx, performanceID, seats, userID)
	monitoring.SeatHoldOperations.WithLabelValues("release", holdResultLabel(err)).Inc()
	return released, err
}

func (s *SeatHoldServiceImpl) SeatAvailability(ctx context.Context, performanceID int, seats []model.SeatRef) (map[string]bool, error) {
	return s.holds.SeatAvailability(ctx, performanceID, seats)
}

func holdResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrSeatUnavailable):
		return "conflict"
	default:
		return "error"
	}
}
