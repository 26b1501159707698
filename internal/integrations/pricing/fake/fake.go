package fake

import (
	"context"
	"math"

	"github.com/BearBump/QuoteDesk/internal/integrations/pricing"
	"github.com/BearBump/QuoteDesk/internal/models"
)

// Per-km rates for the local stand-in benchmark (GBP). The band floors keep
// short hops from recommending silly prices.
const (
	ratePerKmMin = 1.4
	ratePerKmMid = 1.9
	ratePerKmMax = 2.5

	floorMin = 25.0
	floorMid = 35.0
	floorMax = 45.0
)

// FakeClient is a deterministic local stand-in for the benchmark service:
// the range is a pure function of distance, so tests and demo environments
// get reproducible scores without the real service.
type FakeClient struct{}

func New() *FakeClient { return &FakeClient{} }

func (f *FakeClient) RecommendPrice(ctx context.Context, load *models.Load, vehicleType models.VehicleType) (*pricing.Range, error) {
	if load == nil || load.DistanceKM <= 0 {
		return nil, nil
	}
	km := load.DistanceKM
	return &pricing.Range{
		Min: math.Max(ratePerKmMin*km, floorMin),
		Mid: math.Max(ratePerKmMid*km, floorMid),
		Max: math.Max(ratePerKmMax*km, floorMax),
	}, nil
}
