package handler

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "ticketing-backend/pkg/app_errors"
	"ticketing-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func PathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid id",
		})
		return 0, false
	}
	return id, true
}

// handleError 將領域錯誤對應到 HTTP 狀態碼。
// 409 代表與目前狀態衝突（座位、庫存、狀態機），
// 503 代表 serializable 交易衝突，重試即可成功。
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var seatErr *apperrors.SeatUnavailableError
	if errors.As(err, &seatErr) {
		log.Warn("Seats unavailable")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Seats unavailable",
			"seats": seatErr.Seats,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrPerformanceNotFound),
		errors.Is(err, apperrors.ErrTicketNotFound),
		errors.Is(err, apperrors.ErrOrderNotFound),
		errors.Is(err, apperrors.ErrPaymentNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("Resource not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrSeatUnavailable),
		errors.Is(err, apperrors.ErrSeatHoldConflict),
		errors.Is(err, apperrors.ErrInsufficientInventory),
		errors.Is(err, apperrors.ErrPerformanceSoldOut),
		errors.Is(err, apperrors.ErrPerformanceCancelled),
		errors.Is(err, apperrors.ErrPerformanceInactive),
		errors.Is(err, apperrors.ErrPerformanceMismatch),
		errors.Is(err, apperrors.ErrPaymentNotCompleted),
		errors.Is(err, apperrors.ErrPaymentMismatch),
		errors.Is(err, apperrors.ErrPaymentAlreadyUsed),
		errors.Is(err, apperrors.ErrInvalidStatusTransition):
		log.Warn("Conflicting state")
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrConflictRetryable):
		log.Warn("Transaction conflict, retry")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Temporary conflict, please retry",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
