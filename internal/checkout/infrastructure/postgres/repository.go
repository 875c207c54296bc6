package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Retail-Checkout-System/internal/checkout/domain"
	inventory "github.com/dmehra2102/Retail-Checkout-System/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// SaveWithOutbox writes the checkout, its lines and the outbox event in one transaction.
func (r *Repository) SaveWithOutbox(ctx context.Context, rec domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO checkouts (id, customer_id, status, stage, reason, subtotal, shipping_fee, amount, total_weight_grams, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.CustomerID, rec.Status, rec.Stage, rec.Reason, rec.Subtotal, rec.ShippingFee, rec.Amount, rec.TotalWeight, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert checkout: %w", err)
	}

	if len(rec.Lines) > 0 {
		batch := &pgx.Batch{}
		for i, l := range rec.Lines {
			batch.Queue(`INSERT INTO checkout_lines (checkout_id, position, item_id, name, quantity, unit_price, total)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				rec.ID, i, int(l.ItemID), l.Name, l.Quantity, l.UnitPrice, l.Total)
		}
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert checkout lines: %w", err)
		}
	}

	if err = enqueue(ctx, tx, rec.ID, eventType, payload, headers, traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Void marks a stored checkout rejected at rec's stage and queues the event in
// the same transaction.
func (r *Repository) Void(ctx context.Context, rec domain.Record, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE checkouts SET status=$2, stage=$3, reason=$4 WHERE id=$1`,
		rec.ID, domain.StatusRejected, rec.Stage, rec.Reason)
	if err != nil {
		return fmt.Errorf("void checkout: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err = enqueue(ctx, tx, rec.ID, eventType, payload, headers, traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func enqueue(ctx context.Context, tx pgx.Tx, checkoutID, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"checkout", checkoutID, eventType, payload, headers, traceparent)
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Record, error) {
	var rec domain.Record
	err := r.pool.QueryRow(ctx, `SELECT id, customer_id, status, stage, reason, subtotal, shipping_fee, amount, total_weight_grams, created_at
		FROM checkouts WHERE id=$1`, id).
		Scan(&rec.ID, &rec.CustomerID, &rec.Status, &rec.Stage, &rec.Reason, &rec.Subtotal, &rec.ShippingFee, &rec.Amount, &rec.TotalWeight, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT item_id, name, quantity, unit_price, total FROM checkout_lines WHERE checkout_id=$1 ORDER BY position`, id)
	if err != nil {
		return domain.Record{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.ReceiptLine
		var itemID int
		if err := rows.Scan(&itemID, &l.Name, &l.Quantity, &l.UnitPrice, &l.Total); err != nil {
			return domain.Record{}, err
		}
		l.ItemID = inventory.ItemID(itemID)
		rec.Lines = append(rec.Lines, l)
	}
	return rec, rows.Err()
}
