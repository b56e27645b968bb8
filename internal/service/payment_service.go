package service

import (
	"context"

	"ticketing-backend/internal/model"
	"ticketing-backend/internal/repository"
	apperrors "ticketing-backend/pkg/app_errors"
)

type PaymentService interface {
	Create(ctx context.Context, customerID int, req *model.CreatePaymentRequest) (*model.Payment, error)
	GetByID(ctx context.Context, id int) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id int, status model.PaymentStatus) (*model.Payment, error)
}

type PaymentServiceImpl struct {
	paymentRepository repository.PaymentRepository
}

func NewPaymentService(paymentRepository repository.PaymentRepository) PaymentService {
	return &PaymentServiceImpl{
		paymentRepository: paymentRepository,
	}
}

func (s *PaymentServiceImpl) Create(ctx context.Context, customerID int, req *model.CreatePaymentRequest) (*model.Payment, error) {
	payment := &model.Payment{
		CustomerID: customerID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Method:     req.Method,
		Status:     model.PaymentStatusPending,
	}
	return s.paymentRepository.Create(ctx, payment)
}

func (s *PaymentServiceImpl) GetByID(ctx context.Context, id int) (*model.Payment, error) {
	return s.paymentRepository.FindByID(ctx, id)
}

func (s *PaymentServiceImpl) UpdateStatus(ctx context.Context, id int, status model.PaymentStatus) (*model.Payment, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	payment, err := s.paymentRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.Status.CanTransitionTo(status) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	return s.paymentRepository.UpdateStatus(ctx, id, status)
}
