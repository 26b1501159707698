package evaluation

import "github.com/BearBump/QuoteDesk/internal/models"

// Mode says how many quotes compete for a load.
type Mode string

const (
	ModeSoleBidder  Mode = "SOLE_BIDDER"
	ModeCompetitive Mode = "COMPETITIVE"
)

const (
	soleBidderThreshold  = 0.60
	competitiveThreshold = 0.70
)

// absoluteBlendWeight is how much of the price/ETA signal stays absolute in
// competitive mode; the remainder rewards rank within the pool.
const absoluteBlendWeight = 0.6

// competitionContext parameterizes one scoring pipeline for both modes, so
// sole-bidder and competitive scoring share all of their code.
type competitionContext struct {
	mode Mode

	minPrice, maxPrice float64
	minETA, maxETA     int
}

func newCompetitionContext(pool []*models.Quote) competitionContext {
	c := competitionContext{mode: ModeSoleBidder}
	if len(pool) <= 1 {
		return c
	}

	c.mode = ModeCompetitive
	c.minPrice, c.maxPrice = pool[0].QuotedPrice, pool[0].QuotedPrice
	c.minETA, c.maxETA = pool[0].EtaToCollectionMinutes, pool[0].EtaToCollectionMinutes
	for _, q := range pool[1:] {
		if q.QuotedPrice < c.minPrice {
			c.minPrice = q.QuotedPrice
		}
		if q.QuotedPrice > c.maxPrice {
			c.maxPrice = q.QuotedPrice
		}
		if q.EtaToCollectionMinutes < c.minETA {
			c.minETA = q.EtaToCollectionMinutes
		}
		if q.EtaToCollectionMinutes > c.maxETA {
			c.maxETA = q.EtaToCollectionMinutes
		}
	}
	return c
}

func (c competitionContext) Threshold() float64 {
	if c.mode == ModeCompetitive {
		return competitiveThreshold
	}
	return soleBidderThreshold
}

// BlendPrice mixes the absolute price score with the quote's rank within the
// pool (1.0 for the cheapest). Uniformly priced pools keep the pure score.
func (c competitionContext) BlendPrice(score, price float64) float64 {
	if c.mode != ModeCompetitive || c.maxPrice == c.minPrice {
		return score
	}
	rel := 1 - (price-c.minPrice)/(c.maxPrice-c.minPrice)
	return absoluteBlendWeight*score + (1-absoluteBlendWeight)*rel
}

// BlendETA is the same rank blend over eta_to_collection.
func (c competitionContext) BlendETA(score float64, etaMinutes int) float64 {
	if c.mode != ModeCompetitive || c.maxETA == c.minETA {
		return score
	}
	rel := 1 - float64(etaMinutes-c.minETA)/float64(c.maxETA-c.minETA)
	return absoluteBlendWeight*score + (1-absoluteBlendWeight)*rel
}
