package repository

import (
	"context"
	"time"

	"ticketing-backend/internal/model"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PerformanceRepository interface {
	FindByID(ctx context.Context, id int) (*model.Performance, error)
	FindByPerformanceID(ctx context.Context, performanceID uuid.UUID) (*model.Performance, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.Performance, error)
	ListTicketTypes(ctx context.Context, performanceID int) ([]*model.TicketType, error)
	Deactivate(ctx context.Context, id int) error
	MarkCancelled(ctx context.Context, id int) error

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, performance *model.Performance) (*model.Performance, error)
	CreateTicketType(ctx context.Context, tx pgx.Tx, ticketType *model.TicketType) (*model.TicketType, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Performance, error)
	// DecrementAvailable 條件式單一 UPDATE（available_tickets >= n），同句重算 is_sold_out；
	// 影響 0 列即庫存不足。絕不 read-modify-write 兩段式更新。
	DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) (int, error)
	// IncrementAvailable 回補庫存，上限為 total_capacity，同句重算 is_sold_out
	IncrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) (int, error)
	// OverrideAvailable 管理端直接覆寫，夾制在 [0, total_capacity]；呼叫端必須記 manual 稽核
	OverrideAvailable(ctx context.Context, tx pgx.Tx, id int, value int) (int, error)
	RecordAdjustment(ctx context.Context, tx pgx.Tx, adjustment *model.InventoryAdjustment) error
}

type PerformanceRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPerformanceRepository(pool *pgxpool.Pool) PerformanceRepository {
	return &PerformanceRepositoryImpl{
		pool: pool,
	}
}

const performanceColumns = `id, performance_id, event_id, date, start_time, end_time,
		total_capacity, available_tickets, is_sold_out, is_active, is_cancelled,
		created_at, updated_at, deleted_at`

func scanPerformance(row pgx.Row) (*model.Performance, error) {
	var p model.Performance
	err := row.Scan(
		&p.ID,
		&p.PerformanceID,
		&p.EventID,
		&p.Date,
		&p.StartTime,
		&p.EndTime,
		&p.TotalCapacity,
		&p.AvailableTickets,
		&p.IsSoldOut,
		&p.IsActive,
		&p.IsCancelled,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPerformanceNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PerformanceRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, performance *model.Performance) (*model.Performance, error) {
	query := `
		INSERT INTO performances (
			performance_id, event_id, date, start_time, end_time,
			total_capacity, available_tickets, is_sold_out, is_active, is_cancelled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7 <= 0, $8, $9)
		RETURNING ` + performanceColumns

	return scanPerformance(tx.QueryRow(ctx, query,
		performance.PerformanceID, performance.EventID,
		performance.Date, performance.StartTime, performance.EndTime,
		performance.TotalCapacity, performance.AvailableTickets,
		performance.IsActive, performance.IsCancelled,
	))
}

func (r *PerformanceRepositoryImpl) CreateTicketType(ctx context.Context, tx pgx.Tx, ticketType *model.TicketType) (*model.TicketType, error) {
	query := `
		INSERT INTO ticket_types (performance_id, name, price, description, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, performance_id, name, price, description, available
	`
	err := tx.QueryRow(ctx, query,
		ticketType.PerformanceID, ticketType.Name, ticketType.Price,
		ticketType.Description, ticketType.Available,
	).Scan(
		&ticketType.ID,
		&ticketType.PerformanceID,
		&ticketType.Name,
		&ticketType.Price,
		&ticketType.Description,
		&ticketType.Available,
	)
	if err != nil {
		return nil, err
	}
	return ticketType, nil
}

func (r *PerformanceRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Performance, error) {
	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanPerformance(r.pool.QueryRow(ctx, query, id))
}

func (r *PerformanceRepositoryImpl) FindByPerformanceID(ctx context.Context, performanceID uuid.UUID) (*model.Performance, error) {
	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE performance_id = $1 AND deleted_at IS NULL
	`
	return scanPerformance(r.pool.QueryRow(ctx, query, performanceID))
}

func (r *PerformanceRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Performance, error) {
	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`
	return scanPerformance(tx.QueryRow(ctx, query, id))
}

func (r *PerformanceRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.Performance, error) {
	query := `
		SELECT ` + performanceColumns + `
		FROM performances
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY date ASC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performances := make([]*model.Performance, 0)
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		performances = append(performances, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return performances, nil
}

func (r *PerformanceRepositoryImpl) ListTicketTypes(ctx context.Context, performanceID int) ([]*model.TicketType, error) {
	query := `
		SELECT id, performance_id, name, price, description, available
		FROM ticket_types
		WHERE performance_id = $1
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, performanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*model.TicketType, 0)
	for rows.Next() {
		var tt model.TicketType
		err := rows.Scan(
			&tt.ID,
			&tt.PerformanceID,
			&tt.Name,
			&tt.Price,
			&tt.Description,
			&tt.Available,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, &tt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *PerformanceRepositoryImpl) DecrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperrors.ErrInvalidInput
	}

	query := `
		UPDATE performances
		SET available_tickets = available_tickets - $1,
		    is_sold_out = (available_tickets - $1 <= 0),
		    updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL AND available_tickets >= $1
		RETURNING available_tickets
	`

	var remaining int
	err := tx.QueryRow(ctx, query, quantity, time.Now().UTC(), id).Scan(&remaining)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrInsufficientInventory
		}
		return 0, translatePgError(err)
	}

	return remaining, nil
}

func (r *PerformanceRepositoryImpl) IncrementAvailable(ctx context.Context, tx pgx.Tx, id int, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperrors.ErrInvalidInput
	}

	query := `
		UPDATE performances
		SET available_tickets = LEAST(total_capacity, available_tickets + $1),
		    is_sold_out = (LEAST(total_capacity, available_tickets + $1) <= 0),
		    updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING available_tickets
	`

	var remaining int
	err := tx.QueryRow(ctx, query, quantity, time.Now().UTC(), id).Scan(&remaining)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrPerformanceNotFound
		}
		return 0, translatePgError(err)
	}

	return remaining, nil
}

func (r *PerformanceRepositoryImpl) OverrideAvailable(ctx context.Context, tx pgx.Tx, id int, value int) (int, error) {
	query := `
		UPDATE performances
		SET available_tickets = LEAST(total_capacity, GREATEST(0, $1)),
		    is_sold_out = (LEAST(total_capacity, GREATEST(0, $1)) <= 0),
		    updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING available_tickets
	`

	var remaining int
	err := tx.QueryRow(ctx, query, value, time.Now().UTC(), id).Scan(&remaining)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrPerformanceNotFound
		}
		return 0, translatePgError(err)
	}

	return remaining, nil
}

func (r *PerformanceRepositoryImpl) RecordAdjustment(ctx context.Context, tx pgx.Tx, adjustment *model.InventoryAdjustment) error {
	query := `
		INSERT INTO inventory_adjustments (performance_id, delta, new_available, source, actor_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Exec(ctx, query,
		adjustment.PerformanceID, adjustment.Delta, adjustment.NewAvailable,
		adjustment.Source, adjustment.ActorID,
	)
	return err
}

func (r *PerformanceRepositoryImpl) Deactivate(ctx context.Context, id int) error {
	query := `
		UPDATE performances
		SET is_active = FALSE, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPerformanceNotFound
	}

	return nil
}

func (r *PerformanceRepositoryImpl) MarkCancelled(ctx context.Context, id int) error {
	query := `
		UPDATE performances
		SET is_cancelled = TRUE, is_active = FALSE, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPerformanceNotFound
	}

	return nil
}
