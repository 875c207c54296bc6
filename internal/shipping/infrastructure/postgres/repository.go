package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Retail-Checkout-System/internal/shipping/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS shipments (
	checkout_id        TEXT PRIMARY KEY,
	customer_id        TEXT NOT NULL,
	status             TEXT NOT NULL,
	lines              JSONB NOT NULL,
	total_weight_grams DOUBLE PRECISION NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
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

func (r *Repository) Save(ctx context.Context, s domain.Shipment) error {
	lines, err := json.Marshal(s.Manifest.Lines)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO shipments (checkout_id, customer_id, status, lines, total_weight_grams, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (checkout_id) DO NOTHING`,
		s.CheckoutID, s.CustomerID, s.Status, lines, s.Manifest.TotalWeight, s.CreatedAt)
	return err
}

func (r *Repository) Cancel(ctx context.Context, checkoutID string) (bool, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE shipments SET status=$2 WHERE checkout_id=$1 AND status=$3`,
		checkoutID, domain.ShipmentCancelled, domain.ShipmentScheduled)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repository) Get(ctx context.Context, checkoutID string) (domain.Shipment, error) {
	var s domain.Shipment
	var lines []byte
	err := r.pool.QueryRow(ctx, `SELECT checkout_id, customer_id, status, lines, total_weight_grams, created_at
		FROM shipments WHERE checkout_id=$1`, checkoutID).
		Scan(&s.CheckoutID, &s.CustomerID, &s.Status, &lines, &s.Manifest.TotalWeight, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Shipment{}, domain.ErrShipmentNotFound
	}
	if err != nil {
		return domain.Shipment{}, err
	}
	if err := json.Unmarshal(lines, &s.Manifest.Lines); err != nil {
		return domain.Shipment{}, err
	}
	return s, nil
}
