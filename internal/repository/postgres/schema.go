package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id                       TEXT PRIMARY KEY,
	requester_contact        TEXT NOT NULL,
	requester_name           TEXT,
	pickup_label             TEXT NOT NULL,
	pickup_lat               DOUBLE PRECISION,
	pickup_lng               DOUBLE PRECISION,
	dropoff_label            TEXT NOT NULL,
	dropoff_lat              DOUBLE PRECISION,
	dropoff_lng              DOUBLE PRECISION,
	start_at                 TIMESTAMPTZ NOT NULL,
	end_at                   TIMESTAMPTZ NOT NULL CHECK (end_at > start_at),
	passengers               INTEGER NOT NULL,
	waiting_minutes          INTEGER NOT NULL DEFAULT 0,
	wait_and_return          BOOLEAN NOT NULL DEFAULT FALSE,
	distance_km              DOUBLE PRECISION NOT NULL,
	fare_amount              DOUBLE PRECISION NOT NULL,
	currency                 TEXT NOT NULL,
	estimated_pickup_minutes INTEGER NOT NULL DEFAULT 0,
	status                   TEXT NOT NULL,
	driver_response          TEXT,
	created_at               TIMESTAMPTZ NOT NULL,
	updated_at               TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS bookings_status_start_idx ON bookings (status, start_at);
CREATE INDEX IF NOT EXISTS bookings_contact_idx ON bookings (requester_contact);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables used by the repositories if they are missing.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
