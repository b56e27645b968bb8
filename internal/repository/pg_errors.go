package repository

import (
	"errors"

	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"

	seatUniqueConstraint   = "tickets_seat_unique"
	ticketNumberConstraint = "tickets_ticket_number_key"
	orderPaymentConstraint = "orders_payment_id_key"
)

// translatePgError 將 Postgres 錯誤轉成應用層錯誤：
// 序列化失敗/死鎖 → 可重試衝突；座位唯一索引違反 → 座位不可用（儲存層後盾）；
// 票號唯一違反 → 票號碰撞，service 重新產生票號後重試；
// payment 唯一違反 → 該筆付款已支撐過另一張訂單
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return apperrors.ErrConflictRetryable
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case seatUniqueConstraint:
			return apperrors.ErrSeatUnavailable
		case ticketNumberConstraint:
			return apperrors.ErrTicketNumberCollision
		case orderPaymentConstraint:
			return apperrors.ErrPaymentAlreadyUsed
		}
	}

	return err
}

// TranslateError 供 service 層在 Commit 時使用同一套轉換
func TranslateError(err error) error {
	return translatePgError(err)
}
