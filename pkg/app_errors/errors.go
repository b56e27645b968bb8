package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrPerformanceNotFound = errors.New("performance not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrUserNotFound        = errors.New("user not found")

	ErrPaymentNotCompleted     = errors.New("payment is not completed")
	ErrPaymentMismatch         = errors.New("payment does not belong to customer")
	ErrPaymentAlreadyUsed      = errors.New("payment is already used by another order")
	ErrPerformanceSoldOut      = errors.New("performance is sold out")
	ErrPerformanceCancelled    = errors.New("performance is cancelled")
	ErrPerformanceInactive     = errors.New("performance is not active")
	ErrPerformanceMismatch     = errors.New("performance does not belong to event")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInsufficientInventory   = errors.New("insufficient inventory")
	ErrSeatUnavailable         = errors.New("seat unavailable")
	ErrSeatHoldConflict        = errors.New("seat already held")
	ErrConflictRetryable       = errors.New("transaction conflict, retry")
	ErrTicketNumberCollision   = errors.New("ticket number collision")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInternalServerError     = errors.New("internal server error")
)

// SeatUnavailableError 座位衝突錯誤：攜帶具體衝突的座位清單，errors.Is 仍可比對 ErrSeatUnavailable
type SeatUnavailableError struct {
	Seats []string // "section-row-seat" 格式
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ", "))
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

func NewSeatUnavailableError(seats []string) error {
	return &SeatUnavailableError{Seats: seats}
}
