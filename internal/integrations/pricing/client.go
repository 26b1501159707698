package pricing

import (
	"context"

	"github.com/BearBump/QuoteDesk/internal/models"
)

// Range is the recommended price band for a load: anything up to Mid is a
// good deal for the poster, Mid..Max is acceptable, beyond Max is expensive.
type Range struct {
	Min float64 `json:"min"`
	Mid float64 `json:"mid"`
	Max float64 `json:"max"`
}

// Client asks the benchmark service what a load should cost. A nil Range with
// a nil error means the service has no data for this lane.
type Client interface {
	RecommendPrice(ctx context.Context, load *models.Load, vehicleType models.VehicleType) (*Range, error)
}
