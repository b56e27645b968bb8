package service

import (
	"context"
	"testing"

	"ticketing-backend/internal/model"
	"ticketing-backend/internal/queue"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	tx              *fakeTx
	orderRepo       *OrderRepositoryMock
	ticketRepo      *TicketRepositoryMock
	performanceRepo *PerformanceRepositoryMock
	paymentRepo     *PaymentRepositoryMock
	userRepo        *UserRepositoryMock
	queue           queue.DeliveryQueue
	service         PurchaseService
}

func newPurchaseFixture() *purchaseFixture {
	f := &purchaseFixture{
		tx:              &fakeTx{},
		orderRepo:       &OrderRepositoryMock{},
		ticketRepo:      &TicketRepositoryMock{},
		performanceRepo: &PerformanceRepositoryMock{},
		paymentRepo:     &PaymentRepositoryMock{},
		userRepo:        &UserRepositoryMock{},
		queue:           queue.NewDeliveryQueue(16),
	}
	f.service = NewPurchaseService(
		&fakeTxBeginner{tx: f.tx},
		f.orderRepo, f.ticketRepo, f.performanceRepo, f.paymentRepo, f.userRepo, f.queue,
	)
	return f
}

func purchasablePerformance() *model.Performance {
	return &model.Performance{
		ID:               7,
		EventID:          3,
		TotalCapacity:    100,
		AvailableTickets: 50,
		IsActive:         true,
	}
}

func seatedRequest() model.PlaceOrderRequest {
	return model.PlaceOrderRequest{
		PaymentID:     11,
		EventID:       3,
		PerformanceID: 7,
		CustomerID:    42,
		Seats: []model.SeatSelection{
			{Section: "A", Row: "1", Seat: "5", Category: "VIP", Price: decimal.NewFromInt(150)},
			{Section: "A", Row: "1", Seat: "6", Category: "VIP", Price: decimal.NewFromInt(150)},
		},
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	f := newPurchaseFixture()
	req := seatedRequest()

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.ticketRepo.On("FindTakenSeats", mock.Anything, f.tx, 7, mock.Anything).
		Return([]model.SeatRef{}, nil)
	f.orderRepo.On("Create", mock.Anything, f.tx, mock.Anything).
		Return(&model.Order{ID: 99, CustomerID: 42, EventID: 3, PerformanceID: 7, PaymentID: 11, Status: model.OrderStatusConfirmed}, nil)
	f.ticketRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.Ticket{ID: 1, Status: model.TicketStatusPurchased}, nil)
	f.performanceRepo.On("DecrementAvailable", mock.Anything, f.tx, 7, 2).Return(48, nil)
	f.performanceRepo.On("RecordAdjustment", mock.Anything, f.tx, mock.MatchedBy(func(a *model.InventoryAdjustment) bool {
		return a.Delta == -2 && a.NewAvailable == 48 && a.Source == model.AdjustmentSourcePurchase
	})).Return(nil)
	f.userRepo.On("FindByID", mock.Anything, 42).
		Return(&model.User{ID: 42, Name: "Alice", Email: "alice@example.com"}, nil)

	order, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, f.tx.committed)
	assert.Equal(t, model.OrderStatusConfirmed, order.Status)
	assert.Len(t, order.Tickets, 2)
	f.performanceRepo.AssertExpectations(t)
	f.ticketRepo.AssertExpectations(t)
}

func TestPlaceOrderPaymentNotCompleted(t *testing.T) {
	f := newPurchaseFixture()

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusPending}, nil)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrPaymentNotCompleted)
	assert.False(t, f.tx.committed)
	assert.True(t, f.tx.rolledBack)
	f.performanceRepo.AssertNotCalled(t, "DecrementAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderSeatsTaken(t *testing.T) {
	f := newPurchaseFixture()

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.ticketRepo.On("FindTakenSeats", mock.Anything, f.tx, 7, mock.Anything).
		Return([]model.SeatRef{{Section: "A", Row: "1", Seat: "5"}}, nil)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrSeatUnavailable)
	var seatErr *apperrors.SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []string{"A-1-5"}, seatErr.Seats)
	assert.False(t, f.tx.committed)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderInsufficientInventory(t *testing.T) {
	f := newPurchaseFixture()

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.ticketRepo.On("FindTakenSeats", mock.Anything, f.tx, 7, mock.Anything).
		Return([]model.SeatRef{}, nil)
	f.orderRepo.On("Create", mock.Anything, f.tx, mock.Anything).
		Return(&model.Order{ID: 99, EventID: 3, CustomerID: 42}, nil)
	f.ticketRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.Ticket{ID: 1}, nil)
	f.performanceRepo.On("DecrementAvailable", mock.Anything, f.tx, 7, 2).
		Return(0, apperrors.ErrInsufficientInventory)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
	assert.False(t, f.tx.committed)
	assert.True(t, f.tx.rolledBack)
}

func TestPlaceOrderSoldOut(t *testing.T) {
	f := newPurchaseFixture()

	performance := purchasablePerformance()
	performance.IsSoldOut = true
	performance.AvailableTickets = 0

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(performance, nil)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrPerformanceSoldOut)
}

func TestPlaceOrderPerformanceMismatch(t *testing.T) {
	f := newPurchaseFixture()

	performance := purchasablePerformance()
	performance.EventID = 999

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(performance, nil)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrPerformanceMismatch)
}

func TestPlaceOrderDuplicateSeatsInRequest(t *testing.T) {
	f := newPurchaseFixture()

	req := seatedRequest()
	req.Seats[1] = req.Seats[0]

	_, err := f.service.PlaceOrder(context.Background(), req)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.paymentRepo.AssertNotCalled(t, "FindByIDWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderPartialSeatFields(t *testing.T) {
	f := newPurchaseFixture()

	req := seatedRequest()
	req.Seats[0].Seat = ""

	_, err := f.service.PlaceOrder(context.Background(), req)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaceOrderGeneralAdmissionSkipsSeatCheck(t *testing.T) {
	f := newPurchaseFixture()

	req := model.PlaceOrderRequest{
		PaymentID:     11,
		EventID:       3,
		PerformanceID: 7,
		CustomerID:    42,
		Seats: []model.SeatSelection{
			{Category: "GA", Price: decimal.NewFromInt(80)},
		},
	}

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.orderRepo.On("Create", mock.Anything, f.tx, mock.Anything).
		Return(&model.Order{ID: 99, CustomerID: 42, EventID: 3}, nil)
	f.ticketRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(ticket *model.Ticket) bool {
		return ticket.Section == nil && ticket.Row == nil && ticket.Seat == nil
	})).Return(&model.Ticket{ID: 1}, nil)
	f.performanceRepo.On("DecrementAvailable", mock.Anything, f.tx, 7, 1).Return(49, nil)
	f.performanceRepo.On("RecordAdjustment", mock.Anything, f.tx, mock.Anything).Return(nil)
	f.userRepo.On("FindByID", mock.Anything, 42).
		Return(&model.User{ID: 42, Name: "Alice", Email: "alice@example.com"}, nil)

	_, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	f.ticketRepo.AssertNotCalled(t, "FindTakenSeats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderTicketNumberCollisionRetries(t *testing.T) {
	f := newPurchaseFixture()

	req := seatedRequest()
	req.Seats = req.Seats[:1]

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.ticketRepo.On("FindTakenSeats", mock.Anything, f.tx, 7, mock.Anything).
		Return([]model.SeatRef{}, nil)
	f.orderRepo.On("Create", mock.Anything, f.tx, mock.Anything).
		Return(&model.Order{ID: 99, CustomerID: 42, EventID: 3}, nil)
	f.ticketRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrTicketNumberCollision).Once()
	f.ticketRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.Ticket{ID: 1}, nil).Once()
	f.performanceRepo.On("DecrementAvailable", mock.Anything, f.tx, 7, 1).Return(49, nil)
	f.performanceRepo.On("RecordAdjustment", mock.Anything, f.tx, mock.Anything).Return(nil)
	f.userRepo.On("FindByID", mock.Anything, 42).
		Return(&model.User{ID: 42, Name: "Alice", Email: "alice@example.com"}, nil)

	_, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	f.ticketRepo.AssertNumberOfCalls(t, "Create", 2)
	// 失敗的 insert 必須先回滾到 savepoint，否則交易已 aborted、重試必定失敗
	assert.Equal(t, 1, f.tx.savepointsRolledBack)
	assert.Equal(t, 1, f.tx.savepointsCommitted)
	assert.True(t, f.tx.committed)
}

func TestPlaceOrderPaymentOwnedByOtherCustomer(t *testing.T) {
	f := newPurchaseFixture()

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 7, Status: model.PaymentStatusCompleted}, nil)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrPaymentMismatch)
	assert.False(t, f.tx.committed)
	f.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderPaymentAlreadyUsed(t *testing.T) {
	f := newPurchaseFixture()

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.ticketRepo.On("FindTakenSeats", mock.Anything, f.tx, 7, mock.Anything).
		Return([]model.SeatRef{}, nil)
	// orders.payment_id 唯一索引：同一筆付款不能再支撐第二張訂單
	f.orderRepo.On("Create", mock.Anything, f.tx, mock.Anything).
		Return(nil, apperrors.ErrPaymentAlreadyUsed)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadyUsed)
	assert.False(t, f.tx.committed)
	assert.True(t, f.tx.rolledBack)
	f.performanceRepo.AssertNotCalled(t, "DecrementAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderCommitConflictRetryable(t *testing.T) {
	f := newPurchaseFixture()
	f.tx.commitErr = apperrors.ErrConflictRetryable

	f.paymentRepo.On("FindByIDWithLock", mock.Anything, f.tx, 11).
		Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusCompleted}, nil)
	f.performanceRepo.On("FindByIDWithLock", mock.Anything, f.tx, 7).
		Return(purchasablePerformance(), nil)
	f.ticketRepo.On("FindTakenSeats", mock.Anything, f.tx, 7, mock.Anything).
		Return([]model.SeatRef{}, nil)
	f.orderRepo.On("Create", mock.Anything, f.tx, mock.Anything).
		Return(&model.Order{ID: 99, CustomerID: 42, EventID: 3}, nil)
	f.ticketRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.Ticket{ID: 1}, nil)
	f.performanceRepo.On("DecrementAvailable", mock.Anything, f.tx, 7, 2).Return(48, nil)
	f.performanceRepo.On("RecordAdjustment", mock.Anything, f.tx, mock.Anything).Return(nil)

	_, err := f.service.PlaceOrder(context.Background(), seatedRequest())

	assert.ErrorIs(t, err, apperrors.ErrConflictRetryable)
	f.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetOrderByIDAttachesTickets(t *testing.T) {
	f := newPurchaseFixture()

	f.orderRepo.On("FindByID", mock.Anything, 99).
		Return(&model.Order{ID: 99}, nil)
	f.ticketRepo.On("ListByOrderID", mock.Anything, 99).
		Return([]*model.Ticket{{ID: 1}, {ID: 2}}, nil)

	order, err := f.service.GetOrderByID(context.Background(), 99)

	require.NoError(t, err)
	assert.Len(t, order.Tickets, 2)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	f := newPurchaseFixture()

	f.orderRepo.On("FindByID", mock.Anything, 404).
		Return(nil, apperrors.ErrOrderNotFound)

	_, err := f.service.GetOrderByID(context.Background(), 404)

	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}
