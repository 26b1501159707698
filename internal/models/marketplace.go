package models

import "time"

// Статусы груза (lifecycle: DRAFT → POSTED → IN_TRANSIT → COMPLETED, или CANCELLED).
const (
	LoadStatusDraft     = "DRAFT"
	LoadStatusPosted    = "POSTED"
	LoadStatusInTransit = "IN_TRANSIT"
	LoadStatusCompleted = "COMPLETED"
	LoadStatusCancelled = "CANCELLED"
)

// Статусы котировки (lifecycle: DRAFT → SENT → {ACCEPTED|REJECTED}, или EXPIRED).
const (
	QuoteStatusDraft    = "DRAFT"
	QuoteStatusSent     = "SENT"
	QuoteStatusAccepted = "ACCEPTED"
	QuoteStatusRejected = "REJECTED"
	QuoteStatusExpired  = "EXPIRED"
)

// SimulatedFleetPrefix marks demo/test fleets that have no real profile.
const SimulatedFleetPrefix = "sim-"

type Load struct {
	ID          uint64
	Origin      string
	Destination string
	DistanceKM  float64
	Status      string

	RequiredVehicleType    VehicleType
	AcceptableVehicleTypes []VehicleType // order encodes poster preference

	MaxBudget *float64

	CollectionTime          *time.Time
	CollectionWindowMinutes *int

	ADRRequired bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Quote struct {
	ID      uint64
	LoadID  uint64
	FleetID string

	QuotedPrice float64
	Status      string

	RequestedVehicleType VehicleType
	OfferedVehicleType   VehicleType

	EtaToCollectionMinutes int
	ADRCertified           bool

	Breakdown *ScoreBreakdown
	Feedback  *string

	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OfferedOrRequestedVehicleType falls back to the requested type when the
// carrier did not say what it actually offers.
func (q *Quote) OfferedOrRequestedVehicleType() VehicleType {
	if q.OfferedVehicleType != "" {
		return q.OfferedVehicleType
	}
	return q.RequestedVehicleType
}

// ScoreBreakdown is immutable once attached to a quote. All five fields are
// rounded to 4 decimal places; CompositeScore is always derived from the four
// components under the evaluation weights, never set independently.
type ScoreBreakdown struct {
	PriceScore       float64 `json:"price_score"`
	EtaScore         float64 `json:"eta_score"`
	FleetRatingScore float64 `json:"fleet_rating_score"`
	VehicleMatch     float64 `json:"vehicle_match"`
	CompositeScore   float64 `json:"composite_score"`
}

type FleetProfile struct {
	FleetID       string
	Rating        float64 // 0..5
	JobsCompleted int64
}
