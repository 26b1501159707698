package evaluation

import (
	"math"
	"time"

	"github.com/BearBump/QuoteDesk/internal/integrations/pricing"
	"github.com/BearBump/QuoteDesk/internal/models"
)

// Signal weights. All signals live in [0,1], so the composite does too.
const (
	weightPrice   = 0.40
	weightETA     = 0.25
	weightRating  = 0.15
	weightVehicle = 0.20
)

const (
	// defaultGraceMinutes tolerates lateness when the poster set no window.
	defaultGraceMinutes = 10

	// neutralPriceScore is the flat fallback when no recommended range exists.
	neutralPriceScore = 0.7

	// neutralFleetRating stands in for simulated fleets and missing profiles.
	neutralFleetRating = 3.0
)

// round4 pins scores to 4 decimal places so that threshold comparisons are
// reproducible across platforms.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

type scoredQuote struct {
	quote     *models.Quote
	breakdown models.ScoreBreakdown
}

// scoreQuote runs the full signal pipeline for one quote. Every component is
// rounded before the composite, so a persisted breakdown always reproduces
// its own composite under the fixed weights.
func scoreQuote(now time.Time, load *models.Load, q *models.Quote, rng *pricing.Range, fleetRating float64, cc competitionContext) scoredQuote {
	price := cc.BlendPrice(priceScore(load, q.QuotedPrice, rng), q.QuotedPrice)
	eta := cc.BlendETA(etaScore(now, load, q.EtaToCollectionMinutes), q.EtaToCollectionMinutes)

	b := models.ScoreBreakdown{
		PriceScore:       round4(price),
		EtaScore:         round4(eta),
		FleetRatingScore: round4(ratingScore(fleetRating)),
		VehicleMatch:     round4(vehicleMatchScore(load, q)),
	}
	b.CompositeScore = round4(weightPrice*b.PriceScore +
		weightETA*b.EtaScore +
		weightRating*b.FleetRatingScore +
		weightVehicle*b.VehicleMatch)

	return scoredQuote{quote: q, breakdown: b}
}

// vehicleMatchScore picks one of two strategies: the poster's preference list
// when there is one, otherwise the ordinal capacity gradient.
func vehicleMatchScore(load *models.Load, q *models.Quote) float64 {
	offered := q.OfferedOrRequestedVehicleType()
	if len(load.AcceptableVehicleTypes) > 0 {
		return preferenceListScore(offered, load.AcceptableVehicleTypes)
	}
	return ordinalGradientScore(offered, load.RequiredVehicleType)
}

func preferenceListScore(offered models.VehicleType, accepted []models.VehicleType) float64 {
	for i, vt := range accepted {
		if vt != offered {
			continue
		}
		switch i {
		case 0:
			return 1.0
		case 1:
			return 0.85
		default:
			return 0.7
		}
	}
	// Not in the list: the eligibility gate rejects this before scoring.
	return 0.0
}

func ordinalGradientScore(offered, requested models.VehicleType) float64 {
	requestedRank, ok := models.VehicleRank(requested)
	if !ok {
		// Nothing concrete requested: any known vehicle is a fit.
		return 1.0
	}
	offeredRank, ok := models.VehicleRank(offered)
	if !ok {
		return 0.0
	}

	diff := offeredRank - requestedRank
	switch {
	case diff < 0:
		// Undersized. Capacity cannot be faked.
		return 0.0
	case diff == 0:
		return 1.0
	case diff == 1:
		return 0.9
	case diff == 2:
		return 0.75
	default:
		return 0.6
	}
}

// priceScore picks the budget-aware strategy when the poster declared a hard
// ceiling, otherwise judges against the benchmark range. With no range at
// all, the score is a flat neutral value.
func priceScore(load *models.Load, price float64, rng *pricing.Range) float64 {
	if rng == nil || rng.Mid <= 0 {
		return neutralPriceScore
	}
	if load.MaxBudget != nil {
		return budgetAwarePriceScore(price, rng.Mid, *load.MaxBudget)
	}
	return benchmarkPriceScore(price, rng)
}

func benchmarkPriceScore(price float64, r *pricing.Range) float64 {
	switch {
	case price <= 0:
		return 0.0
	case price < 0.6*r.Min:
		// Suspiciously cheap: likely a typo or a bait quote.
		return 0.3
	case price <= r.Mid:
		return 1.0
	case price <= r.Max:
		return 1.0 - 0.3*(price-r.Mid)/(r.Max-r.Mid)
	case price <= 2*r.Max:
		return 0.7 * (2*r.Max - price) / r.Max
	default:
		return 0.0
	}
}

func budgetAwarePriceScore(price, mid, budget float64) float64 {
	switch {
	case price <= 0:
		return 0.0
	case price <= mid:
		return 1.0
	case price <= budget:
		return 1.0 - 0.5*(price-mid)/(budget-mid)
	default:
		// Above budget. Normally pre-empted by the eligibility gate.
		return 0.0
	}
}

// etaScore measures lateness against the collection time when the poster set
// one, with a grace window before the taper starts. Without a collection time
// it falls back to a distance heuristic: a reasonable ETA is one minute per
// km (at least 30), decaying to zero at three times that.
func etaScore(now time.Time, load *models.Load, etaMinutes int) float64 {
	if load.CollectionTime != nil {
		arrival := now.Add(time.Duration(etaMinutes) * time.Minute)
		lateness := arrival.Sub(*load.CollectionTime).Minutes()

		grace := float64(defaultGraceMinutes)
		if load.CollectionWindowMinutes != nil {
			grace = float64(*load.CollectionWindowMinutes)
		}

		switch {
		case lateness <= grace:
			return 1.0
		case lateness <= grace+20:
			return 1.0 - 0.5*(lateness-grace)/20
		case lateness <= grace+50:
			return 0.5 * (grace + 50 - lateness) / 30
		default:
			return 0.0
		}
	}

	reasonable := math.Max(load.DistanceKM, 30)
	eta := float64(etaMinutes)
	switch {
	case eta <= reasonable:
		return 1.0
	case eta < 3*reasonable:
		return (3*reasonable - eta) / (2 * reasonable)
	default:
		return 0.0
	}
}

func ratingScore(rating float64) float64 {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return rating / 5.0
}
