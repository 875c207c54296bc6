package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkouts (
	id                 TEXT PRIMARY KEY,
	customer_id        TEXT NOT NULL,
	status             TEXT NOT NULL,
	stage              TEXT NOT NULL,
	reason             TEXT NOT NULL DEFAULT '',
	subtotal           NUMERIC NOT NULL,
	shipping_fee       NUMERIC NOT NULL,
	amount             NUMERIC NOT NULL,
	total_weight_grams DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS checkout_lines (
	checkout_id TEXT NOT NULL REFERENCES checkouts(id),
	position    INT NOT NULL,
	item_id     INT NOT NULL,
	name        TEXT NOT NULL,
	quantity    INT NOT NULL,
	unit_price  NUMERIC NOT NULL,
	total       NUMERIC NOT NULL,
	PRIMARY KEY (checkout_id, position)
);

CREATE TABLE IF NOT EXISTS outbox (
	id             BIGSERIAL PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id   TEXT NOT NULL,
	type           TEXT NOT NULL,
	payload        JSONB NOT NULL,
	headers        JSONB NOT NULL DEFAULT '{}'::jsonb,
	traceparent    TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'pending',
	relay_id       TEXT,
	lease_until    TIMESTAMPTZ,
	retry_count    INT NOT NULL DEFAULT 0,
	last_error     TEXT,
	next_attempt_at TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE outbox ADD COLUMN IF NOT EXISTS next_attempt_at TIMESTAMPTZ;

CREATE INDEX IF NOT EXISTS outbox_status_idx ON outbox (status, id);
CREATE INDEX IF NOT EXISTS outbox_aggregate_idx ON outbox (aggregate_id, id);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
