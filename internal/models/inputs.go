package models

import "time"

// LoadCreateInput seeds a posted load. Creation itself belongs to the
// load-posting flow; the storage keeps it for that service and for tests.
type LoadCreateInput struct {
	Origin      string
	Destination string
	DistanceKM  float64

	RequiredVehicleType    VehicleType
	AcceptableVehicleTypes []VehicleType
	MaxBudget              *float64

	CollectionTime          *time.Time
	CollectionWindowMinutes *int
	ADRRequired             bool
}

// QuoteCreateInput seeds a carrier quote in SENT status.
type QuoteCreateInput struct {
	LoadID  uint64
	FleetID string

	QuotedPrice float64

	RequestedVehicleType VehicleType
	OfferedVehicleType   VehicleType

	EtaToCollectionMinutes int
	ADRCertified           bool

	ExpiresAt time.Time
}
