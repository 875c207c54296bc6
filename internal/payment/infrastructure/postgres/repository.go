package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Retail-Checkout-System/internal/payment/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS payments (
	checkout_id    TEXT PRIMARY KEY,
	customer_id    TEXT NOT NULL,
	amount         NUMERIC NOT NULL,
	balance_before NUMERIC NOT NULL,
	balance_after  NUMERIC NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

func (r *Repository) Save(ctx context.Context, checkoutID string, p domain.Payment) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO payments (checkout_id, customer_id, amount, balance_before, balance_after, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (checkout_id) DO NOTHING`,
		checkoutID, p.CustomerID, p.Amount, p.BalanceBefore, p.BalanceAfter, p.Status, p.CreatedAt)
	return err
}
