package pgmarket

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS loads (
  id BIGSERIAL PRIMARY KEY,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  required_vehicle_type TEXT NOT NULL DEFAULT '',
  acceptable_vehicle_types TEXT[] NULL,
  max_budget DOUBLE PRECISION NULL,
  collection_time TIMESTAMPTZ NULL,
  collection_window_minutes INT NULL,
  adr_required BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS quotes (
  id BIGSERIAL PRIMARY KEY,
  load_id BIGINT NOT NULL REFERENCES loads(id) ON DELETE CASCADE,
  fleet_id TEXT NOT NULL,
  quoted_price DOUBLE PRECISION NOT NULL,
  status TEXT NOT NULL,
  requested_vehicle_type TEXT NOT NULL DEFAULT '',
  offered_vehicle_type TEXT NOT NULL DEFAULT '',
  eta_to_collection_minutes INT NOT NULL DEFAULT 0,
  adr_certified BOOLEAN NOT NULL DEFAULT FALSE,
  breakdown JSONB NULL,
  feedback TEXT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_load_id ON quotes(load_id)`,
		// The sweeper scans for due SENT quotes.
		`CREATE INDEX IF NOT EXISTS idx_quotes_status_expires_at ON quotes(status, expires_at)`,
		`
CREATE TABLE IF NOT EXISTS fleets (
  fleet_id TEXT PRIMARY KEY,
  rating DOUBLE PRECISION NOT NULL DEFAULT 3.0,
  jobs_completed BIGINT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
