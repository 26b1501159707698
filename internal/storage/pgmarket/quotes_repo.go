package pgmarket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) CreateQuote(ctx context.Context, in models.QuoteCreateInput) (*models.Quote, error) {
	now := time.Now().UTC()

	expiresAt := in.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(24 * time.Hour)
	}

	var id uint64
	err := s.db.QueryRow(ctx, `
INSERT INTO quotes (
  load_id, fleet_id, quoted_price, status,
  requested_vehicle_type, offered_vehicle_type,
  eta_to_collection_minutes, adr_certified,
  expires_at, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
RETURNING id
`, in.LoadID, in.FleetID, in.QuotedPrice, models.QuoteStatusSent,
		string(in.RequestedVehicleType), string(in.OfferedVehicleType),
		in.EtaToCollectionMinutes, in.ADRCertified, expiresAt, now).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert quote")
	}

	return s.GetQuote(ctx, id)
}

const quoteColumns = `
  id, load_id, fleet_id, quoted_price, status,
  requested_vehicle_type, offered_vehicle_type,
  eta_to_collection_minutes, adr_certified,
  breakdown, feedback, expires_at,
  created_at, updated_at`

func (s *Storage) GetQuote(ctx context.Context, id uint64) (*models.Quote, error) {
	row := s.db.QueryRow(ctx, `SELECT`+quoteColumns+` FROM quotes WHERE id = $1`, id)

	q, err := scanQuote(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select quote")
	}
	return q, nil
}

// ListQuotesByLoad returns quotes in insertion order. Evaluation relies on
// this ordering to break composite-score ties deterministically.
func (s *Storage) ListQuotesByLoad(ctx context.Context, loadID uint64) ([]*models.Quote, error) {
	rows, err := s.db.Query(ctx,
		`SELECT`+quoteColumns+` FROM quotes WHERE load_id = $1 ORDER BY id ASC`, loadID)
	if err != nil {
		return nil, errors.Wrap(err, "select quotes by load")
	}
	defer rows.Close()

	var out []*models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan quote")
		}
		out = append(out, q)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpdateQuoteStatus(ctx context.Context, id uint64, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE quotes SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	return errors.Wrap(err, "update quote status")
}

func (s *Storage) SetQuoteScoreBreakdown(ctx context.Context, id uint64, b models.ScoreBreakdown) error {
	body, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "marshal breakdown")
	}
	_, err = s.db.Exec(ctx,
		`UPDATE quotes SET breakdown = $2, updated_at = now() WHERE id = $1`, id, body)
	return errors.Wrap(err, "set quote breakdown")
}

func (s *Storage) SetQuoteFeedback(ctx context.Context, id uint64, feedback string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE quotes SET feedback = $2, updated_at = now() WHERE id = $1`, id, feedback)
	return errors.Wrap(err, "set quote feedback")
}

// ExpireDueQuotes atomically flips due SENT quotes to EXPIRED and returns
// them. SKIP LOCKED lets several sweepers share the backlog, and the
// status = SENT guard means an expiry can never overwrite a decision made by
// a concurrent evaluation.
func (s *Storage) ExpireDueQuotes(ctx context.Context, now time.Time, limit int) ([]*models.Quote, error) {
	rows, err := s.db.Query(ctx, `
UPDATE quotes SET status = $1, updated_at = now()
WHERE id IN (
  SELECT id FROM quotes
  WHERE status = $2 AND expires_at <= $3
  ORDER BY expires_at ASC
  LIMIT $4
  FOR UPDATE SKIP LOCKED
)
RETURNING`+quoteColumns, models.QuoteStatusExpired, models.QuoteStatusSent, now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "expire due quotes")
	}
	defer rows.Close()

	var out []*models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan expired quote")
		}
		out = append(out, q)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func scanQuote(row pgx.Row) (*models.Quote, error) {
	var q models.Quote
	var requestedType, offeredType string
	var breakdown []byte
	if err := row.Scan(
		&q.ID, &q.LoadID, &q.FleetID, &q.QuotedPrice, &q.Status,
		&requestedType, &offeredType,
		&q.EtaToCollectionMinutes, &q.ADRCertified,
		&breakdown, &q.Feedback, &q.ExpiresAt,
		&q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	q.RequestedVehicleType = models.VehicleType(requestedType)
	q.OfferedVehicleType = models.VehicleType(offeredType)
	if len(breakdown) > 0 {
		var b models.ScoreBreakdown
		if json.Unmarshal(breakdown, &b) == nil {
			q.Breakdown = &b
		}
	}
	return &q, nil
}
