package repository

import (
	"context"
	"time"

	"ticketing-backend/internal/model"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	FindByID(ctx context.Context, id int) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id int, status model.PaymentStatus) (*model.Payment, error)

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Payment, error)
}

type PaymentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &PaymentRepositoryImpl{
		pool: pool,
	}
}

const paymentColumns = `id, customer_id, amount, currency, method, status, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.CustomerID,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	query := `
		INSERT INTO payments (customer_id, amount, currency, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + paymentColumns

	return scanPayment(r.pool.QueryRow(ctx, query,
		payment.CustomerID, payment.Amount, payment.Currency,
		payment.Method, payment.Status,
	))
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
	`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

func (r *PaymentRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
		FOR UPDATE
	`
	return scanPayment(tx.QueryRow(ctx, query, id))
}

func (r *PaymentRepositoryImpl) UpdateStatus(ctx context.Context, id int, status model.PaymentStatus) (*model.Payment, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + paymentColumns

	return scanPayment(r.pool.QueryRow(ctx, query, status, time.Now().UTC(), id))
}
