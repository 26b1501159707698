package pgmarket

import (
	"context"

	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) UpsertFleet(ctx context.Context, fleetID string, rating float64) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO fleets (fleet_id, rating, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (fleet_id)
DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
`, fleetID, rating)
	return errors.Wrap(err, "upsert fleet")
}

func (s *Storage) GetFleetProfile(ctx context.Context, fleetID string) (*models.FleetProfile, error) {
	var p models.FleetProfile
	err := s.db.QueryRow(ctx,
		`SELECT fleet_id, rating, jobs_completed FROM fleets WHERE fleet_id = $1`, fleetID).
		Scan(&p.FleetID, &p.Rating, &p.JobsCompleted)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select fleet")
	}
	return &p, nil
}

// IncrementFleetJobsCompleted creates the row on first use so that demo
// fleets without an explicit profile still accumulate history.
func (s *Storage) IncrementFleetJobsCompleted(ctx context.Context, fleetID string) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO fleets (fleet_id, jobs_completed, created_at, updated_at)
VALUES ($1, 1, now(), now())
ON CONFLICT (fleet_id)
DO UPDATE SET jobs_completed = fleets.jobs_completed + 1, updated_at = now()
`, fleetID)
	return errors.Wrap(err, "increment fleet jobs")
}
