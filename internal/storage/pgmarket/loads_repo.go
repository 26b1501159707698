package pgmarket

import (
	"context"
	"time"

	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) CreateLoad(ctx context.Context, in models.LoadCreateInput) (*models.Load, error) {
	now := time.Now().UTC()

	var types []string
	for _, vt := range in.AcceptableVehicleTypes {
		types = append(types, string(vt))
	}

	var id uint64
	err := s.db.QueryRow(ctx, `
INSERT INTO loads (
  origin, destination, distance_km, status,
  required_vehicle_type, acceptable_vehicle_types, max_budget,
  collection_time, collection_window_minutes, adr_required,
  created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
RETURNING id
`, in.Origin, in.Destination, in.DistanceKM, models.LoadStatusPosted,
		string(in.RequiredVehicleType), types, in.MaxBudget,
		in.CollectionTime, in.CollectionWindowMinutes, in.ADRRequired, now).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert load")
	}

	return s.GetLoad(ctx, id)
}

func (s *Storage) GetLoad(ctx context.Context, id uint64) (*models.Load, error) {
	row := s.db.QueryRow(ctx, `
SELECT
  id, origin, destination, distance_km, status,
  required_vehicle_type, acceptable_vehicle_types, max_budget,
  collection_time, collection_window_minutes, adr_required,
  created_at, updated_at
FROM loads
WHERE id = $1
`, id)

	l, err := scanLoad(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select load")
	}
	return l, nil
}

func (s *Storage) UpdateLoadStatus(ctx context.Context, id uint64, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE loads SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	return errors.Wrap(err, "update load status")
}

func scanLoad(row pgx.Row) (*models.Load, error) {
	var l models.Load
	var requiredType string
	var acceptable []string
	if err := row.Scan(
		&l.ID, &l.Origin, &l.Destination, &l.DistanceKM, &l.Status,
		&requiredType, &acceptable, &l.MaxBudget,
		&l.CollectionTime, &l.CollectionWindowMinutes, &l.ADRRequired,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.RequiredVehicleType = models.VehicleType(requiredType)
	for _, t := range acceptable {
		l.AcceptableVehicleTypes = append(l.AcceptableVehicleTypes, models.VehicleType(t))
	}
	return &l, nil
}
