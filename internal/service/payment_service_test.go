package service

import (
	"context"
	"testing"

	"ticketing-backend/internal/model"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentStartsPending(t *testing.T) {
	repo := &PaymentRepositoryMock{}
	svc := NewPaymentService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		return p.CustomerID == 42 && p.Status == model.PaymentStatusPending
	})).Return(&model.Payment{ID: 11, CustomerID: 42, Status: model.PaymentStatusPending}, nil)

	payment, err := svc.Create(context.Background(), 42, &model.CreatePaymentRequest{
		Amount:   decimal.NewFromInt(300),
		Currency: "TWD",
		Method:   "credit_card",
	})

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	repo.AssertExpectations(t)
}

func TestUpdatePaymentStatusValidTransition(t *testing.T) {
	repo := &PaymentRepositoryMock{}
	svc := NewPaymentService(repo)

	repo.On("FindByID", mock.Anything, 11).
		Return(&model.Payment{ID: 11, Status: model.PaymentStatusPending}, nil)
	repo.On("UpdateStatus", mock.Anything, 11, model.PaymentStatusCompleted).
		Return(&model.Payment{ID: 11, Status: model.PaymentStatusCompleted}, nil)

	payment, err := svc.UpdateStatus(context.Background(), 11, model.PaymentStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, payment.Status)
}

func TestUpdatePaymentStatusInvalidTransition(t *testing.T) {
	repo := &PaymentRepositoryMock{}
	svc := NewPaymentService(repo)

	repo.On("FindByID", mock.Anything, 11).
		Return(&model.Payment{ID: 11, Status: model.PaymentStatusFailed}, nil)

	_, err := svc.UpdateStatus(context.Background(), 11, model.PaymentStatusCompleted)

	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePaymentStatusUnknownStatus(t *testing.T) {
	repo := &PaymentRepositoryMock{}
	svc := NewPaymentService(repo)

	_, err := svc.UpdateStatus(context.Background(), 11, model.PaymentStatus("bogus"))

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
