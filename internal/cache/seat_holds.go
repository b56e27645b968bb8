package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing-backend/internal/model"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// HoldSeatsScript 全有全無的座位保留：任何一個座位已被其他人持有就整批失敗，
// 回傳第一個衝突座位的 KEYS index；全部可保留時一次 SET 完成
const HoldSeatsScript = `
	local user_id = ARGV[1]
	local ttl = tonumber(ARGV[2])

	for i, key in ipairs(KEYS) do
		local holder = redis.call('GET', key)
		if holder and holder ~= user_id then
			return i
		end
	end

	for _, key in ipairs(KEYS) do
		redis.call('SET', key, user_id, 'EX', ttl)
	end

	return 0
`

// ReleaseSeatsScript 只釋放自己持有的座位
const ReleaseSeatsScript = `
	local user_id = ARGV[1]
	local released = 0

	for _, key in ipairs(KEYS) do
		if redis.call('GET', key) == user_id then
			redis.call('DEL', key)
			released = released + 1
		end
	end

	return released
`

// SeatHoldManager 結帳前的座位預留（advisory）。
// 保留只是給前端的佔位體驗，購買交易內的座位檢查與唯一索引才是正確性的依據。
type SeatHoldManager interface {
	HoldSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int, ttl time.Duration) error
	ReleaseSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int) (int, error)
	SeatAvailability(ctx context.Context, performanceID int, seats []model.SeatRef) (map[string]bool, error)
}

type SeatHoldManagerImpl struct {
	client *redis.Client
}

func NewSeatHoldManager(client *redis.Client) SeatHoldManager {
	return &SeatHoldManagerImpl{
		client: client,
	}
}

func (m *SeatHoldManagerImpl) seatKey(performanceID int, seat model.SeatRef) string {
	return fmt.Sprintf("hold:%d:%s", performanceID, seat.Key())
}

func (m *SeatHoldManagerImpl) seatKeys(performanceID int, seats []model.SeatRef) []string {
	keys := make([]string, 0, len(seats))
	for _, s := range seats {
		keys = append(keys, m.seatKey(performanceID, s))
	}
	return keys
}

func (m *SeatHoldManagerImpl) HoldSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int, ttl time.Duration) error {
	if len(seats) == 0 {
		return apperrors.ErrInvalidInput
	}

	keys := m.seatKeys(performanceID, seats)

	result, err := m.client.Eval(ctx, HoldSeatsScript, keys, userID, int(ttl.Seconds())).Result()
	if err != nil {
		return err
	}

	conflictIndex, ok := result.(int64)
	if !ok {
		return errors.New("unexpected result")
	}

	if conflictIndex > 0 {
		return apperrors.NewSeatUnavailableError([]string{seats[conflictIndex-1].Key()})
	}

	return nil
}

func (m *SeatHoldManagerImpl) ReleaseSeats(ctx context.Context, performanceID int, seats []model.SeatRef, userID int) (int, error) {
	if len(seats) == 0 {
		return 0, nil
	}

	keys := m.seatKeys(performanceID, seats)

	result, err := m.client.Eval(ctx, ReleaseSeatsScript, keys, userID).Result()
	if err != nil {
		return 0, err
	}

	released, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result")
	}

	return int(released), nil
}

func (m *SeatHoldManagerImpl) SeatAvailability(ctx context.Context, performanceID int, seats []model.SeatRef) (map[string]bool, error) {
	availability := make(map[string]bool, len(seats))

	for _, seat := range seats {
		held, err := m.client.Exists(ctx, m.seatKey(performanceID, seat)).Result()
		if err != nil {
			return nil, err
		}
		availability[seat.Key()] = held == 0
	}

	return availability, nil
}
