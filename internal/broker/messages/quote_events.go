package messages

import "time"

// QuoteSubmitted is produced by the carrier-facing service when a quote
// enters SENT status; quote-api consumes it and runs an evaluation.
type QuoteSubmitted struct {
	QuoteID     uint64    `json:"quote_id"`
	LoadID      uint64    `json:"load_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// QuoteDecided is published after any evaluation flips a quote out of SENT.
type QuoteDecided struct {
	QuoteID        uint64    `json:"quote_id"`
	LoadID         uint64    `json:"load_id"`
	FleetID        string    `json:"fleet_id"`
	Accepted       bool      `json:"accepted"`
	CompositeScore float64   `json:"composite_score"`
	DecidedAt      time.Time `json:"decided_at"`
}

// QuoteExpired is published by the sweeper for quotes that aged out of SENT
// without a decision.
type QuoteExpired struct {
	QuoteID   uint64    `json:"quote_id"`
	LoadID    uint64    `json:"load_id"`
	ExpiredAt time.Time `json:"expired_at"`
}
