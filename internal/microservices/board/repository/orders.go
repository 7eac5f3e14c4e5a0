package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kitchen-display/internal/domain"
)

// Querier is the part of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type OrdersRepositoryInterface interface {
	// ListActive returns every order not yet READY, oldest first.
	ListActive(ctx context.Context) ([]domain.NewOrder, error)
}

type OrdersRepository struct {
	db Querier
}

func NewOrdersRepository(db Querier) OrdersRepositoryInterface {
	return &OrdersRepository{db: db}
}

const listActiveSQL = `
	SELECT id::text, table_label, status, initial_duration, started_at,
	       GREATEST(0, EXTRACT(EPOCH FROM now() - started_at))::int AS elapsed
	FROM kitchen_orders
	WHERE status <> 'READY'
	ORDER BY created_at, id`

type orderRow struct {
	ID              string
	Table           string
	Status          string
	InitialDuration *int
	StartedAt       *time.Time
	Elapsed         *int
}

func (r *OrdersRepository) ListActive(ctx context.Context) ([]domain.NewOrder, error) {
	rows, err := r.db.Query(ctx, listActiveSQL)
	if err != nil {
		return nil, fmt.Errorf("query active orders: %w", err)
	}
	defer rows.Close()

	var out []domain.NewOrder
	for rows.Next() {
		var row orderRow
		if err := rows.Scan(&row.ID, &row.Table, &row.Status, &row.InitialDuration, &row.StartedAt, &row.Elapsed); err != nil {
			return nil, fmt.Errorf("scan active order: %w", err)
		}
		out = append(out, row.toNewOrder())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active orders: %w", err)
	}
	return out, nil
}

func (row orderRow) toNewOrder() domain.NewOrder {
	n := domain.NewOrder{
		ID:              domain.OrderID(row.ID),
		Table:           domain.Label(row.Table),
		Status:          row.Status,
		InitialDuration: row.InitialDuration,
		ElapsedSeconds:  row.Elapsed,
	}
	if row.StartedAt != nil {
		n.StartedAtLabel = row.StartedAt.Local().Format("15:04")
	}
	return n
}
