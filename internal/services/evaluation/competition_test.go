package evaluation

import (
	"testing"

	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestNewCompetitionContext_ModeAndThreshold(t *testing.T) {
	sole := newCompetitionContext([]*models.Quote{{QuotedPrice: 100}})
	require.Equal(t, ModeSoleBidder, sole.mode)
	require.Equal(t, 0.60, sole.Threshold())

	comp := newCompetitionContext([]*models.Quote{
		{QuotedPrice: 100, EtaToCollectionMinutes: 60},
		{QuotedPrice: 200, EtaToCollectionMinutes: 30},
	})
	require.Equal(t, ModeCompetitive, comp.mode)
	require.Equal(t, 0.70, comp.Threshold())
	require.Equal(t, 100.0, comp.minPrice)
	require.Equal(t, 200.0, comp.maxPrice)
	require.Equal(t, 30, comp.minETA)
	require.Equal(t, 60, comp.maxETA)
}

func TestBlendPrice(t *testing.T) {
	cc := newCompetitionContext([]*models.Quote{
		{QuotedPrice: 100},
		{QuotedPrice: 200},
	})

	// Cheapest gets full relative credit, dearest gets none.
	require.InDelta(t, 0.6*0.8+0.4, cc.BlendPrice(0.8, 100), 1e-9)
	require.InDelta(t, 0.6*0.8, cc.BlendPrice(0.8, 200), 1e-9)
	require.InDelta(t, 0.6*0.8+0.2, cc.BlendPrice(0.8, 150), 1e-9)
}

func TestBlendETA(t *testing.T) {
	cc := newCompetitionContext([]*models.Quote{
		{EtaToCollectionMinutes: 30, QuotedPrice: 100},
		{EtaToCollectionMinutes: 90, QuotedPrice: 200},
	})

	require.InDelta(t, 0.6*1.0+0.4, cc.BlendETA(1.0, 30), 1e-9)
	require.InDelta(t, 0.6*1.0, cc.BlendETA(1.0, 90), 1e-9)
}

func TestBlend_UniformPoolKeepsAbsoluteScore(t *testing.T) {
	cc := newCompetitionContext([]*models.Quote{
		{QuotedPrice: 150, EtaToCollectionMinutes: 45},
		{QuotedPrice: 150, EtaToCollectionMinutes: 45},
	})
	require.Equal(t, ModeCompetitive, cc.mode)
	require.InDelta(t, 0.8, cc.BlendPrice(0.8, 150), 1e-9)
	require.InDelta(t, 0.9, cc.BlendETA(0.9, 45), 1e-9)
}

func TestBlend_SoleBidderIsPassthrough(t *testing.T) {
	cc := newCompetitionContext([]*models.Quote{{QuotedPrice: 150}})
	require.InDelta(t, 0.42, cc.BlendPrice(0.42, 150), 1e-9)
	require.InDelta(t, 0.42, cc.BlendETA(0.42, 45), 1e-9)
}
