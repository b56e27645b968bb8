package repository

import (
	"context"
	"time"

	"ticketing-backend/internal/model"
	apperrors "ticketing-backend/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	FindByID(ctx context.Context, id int) (*model.Ticket, error)
	FindByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	ListByOrderID(ctx context.Context, orderID int) ([]*model.Ticket, error)
	ListByCustomerID(ctx context.Context, customerID int) ([]*model.Ticket, error)

	// Transaction methods
	// Create 依賴 tickets_seat_unique 部分唯一索引作為最後防線：
	// 應用層檢查漏掉的座位衝突在這裡以 ErrSeatUnavailable 浮現
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	// FindTakenSeats 回傳要求座位中已被非 cancelled/refunded 票佔用的子集合；
	// 必須與票券建立在同一個交易內執行
	FindTakenSeats(ctx context.Context, tx pgx.Tx, performanceID int, seats []model.SeatRef) ([]model.SeatRef, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Ticket, error)
	ListByOrderIDWithLock(ctx context.Context, tx pgx.Tx, orderID int) ([]*model.Ticket, error)
	ListByIDsWithLock(ctx context.Context, tx pgx.Tx, ids []int) ([]*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus, paymentStatus model.TicketPaymentStatus) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, ticket_number, event_id, performance_id, performance_date,
		performance_start, customer_id, order_id, purchase_date, price, category,
		section, row_label, seat_number, status, payment_status, barcode,
		created_at, updated_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID,
		&t.TicketNumber,
		&t.EventID,
		&t.PerformanceID,
		&t.PerformanceDate,
		&t.PerformanceStart,
		&t.CustomerID,
		&t.OrderID,
		&t.PurchaseDate,
		&t.Price,
		&t.Category,
		&t.Section,
		&t.Row,
		&t.Seat,
		&t.Status,
		&t.PaymentStatus,
		&t.Barcode,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			ticket_number, event_id, performance_id, performance_date, performance_start,
			customer_id, order_id, purchase_date, price, category,
			section, row_label, seat_number, status, payment_status, barcode
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + ticketColumns

	created, err := scanTicket(tx.QueryRow(ctx, query,
		ticket.TicketNumber, ticket.EventID, ticket.PerformanceID,
		ticket.PerformanceDate, ticket.PerformanceStart,
		ticket.CustomerID, ticket.OrderID, ticket.PurchaseDate,
		ticket.Price, ticket.Category,
		ticket.Section, ticket.Row, ticket.Seat,
		ticket.Status, ticket.PaymentStatus, ticket.Barcode,
	))
	if err != nil {
		return nil, translatePgError(err)
	}

	return created, nil
}

func (r *TicketRepositoryImpl) FindTakenSeats(ctx context.Context, tx pgx.Tx, performanceID int, seats []model.SeatRef) ([]model.SeatRef, error) {
	if len(seats) == 0 {
		return nil, nil
	}

	sections := make([]string, 0, len(seats))
	rowLabels := make([]string, 0, len(seats))
	seatNumbers := make([]string, 0, len(seats))
	for _, s := range seats {
		sections = append(sections, s.Section)
		rowLabels = append(rowLabels, s.Row)
		seatNumbers = append(seatNumbers, s.Seat)
	}

	query := `
		SELECT section, row_label, seat_number
		FROM tickets
		WHERE performance_id = $1
		  AND status NOT IN ('cancelled', 'refunded')
		  AND (section, row_label, seat_number) IN (
			SELECT * FROM unnest($2::text[], $3::text[], $4::text[])
		  )
	`

	rows, err := tx.Query(ctx, query, performanceID, sections, rowLabels, seatNumbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make([]model.SeatRef, 0)
	for rows.Next() {
		var ref model.SeatRef
		if err := rows.Scan(&ref.Section, &ref.Row, &ref.Seat); err != nil {
			return nil, err
		}
		taken = append(taken, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return taken, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
	`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *TicketRepositoryImpl) FindByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_number = $1
	`
	return scanTicket(r.pool.QueryRow(ctx, query, ticketNumber))
}

func (r *TicketRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1
		FOR UPDATE
	`
	return scanTicket(tx.QueryRow(ctx, query, id))
}

func (r *TicketRepositoryImpl) ListByOrderID(ctx context.Context, orderID int) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) ListByCustomerID(ctx context.Context, customerID int) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) ListByOrderIDWithLock(ctx context.Context, tx pgx.Tx, orderID int) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE order_id = $1
		ORDER BY id ASC
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) ListByIDsWithLock(ctx context.Context, tx pgx.Tx, ids []int) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = ANY($1)
		ORDER BY id ASC
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus, paymentStatus model.TicketPaymentStatus) error {
	query := `
		UPDATE tickets
		SET status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, status, paymentStatus, time.Now().UTC(), id)
	if err != nil {
		return translatePgError(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func collectTickets(rows pgx.Rows) ([]*model.Ticket, error) {
	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
