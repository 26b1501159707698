package evaluation

import (
	"testing"

	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCheckEligibility_BudgetCeiling(t *testing.T) {
	budget := 500.0
	load := &models.Load{MaxBudget: &budget}

	require.Nil(t, checkEligibility(load, &models.Quote{QuotedPrice: 500}))

	rej := checkEligibility(load, &models.Quote{QuotedPrice: 500.01})
	require.NotNil(t, rej)
	require.Equal(t, "Quoted price £500.01 exceeds the load's maximum budget of £500.00.", rej.feedback)
}

func TestCheckEligibility_AcceptableVehicleList(t *testing.T) {
	load := &models.Load{
		AcceptableVehicleTypes: []models.VehicleType{models.VehicleLuton, models.VehicleRigid7_5T},
	}

	require.Nil(t, checkEligibility(load, &models.Quote{OfferedVehicleType: models.VehicleRigid7_5T}))

	// Offered falls back to requested when unset.
	require.Nil(t, checkEligibility(load, &models.Quote{RequestedVehicleType: models.VehicleLuton}))

	rej := checkEligibility(load, &models.Quote{OfferedVehicleType: models.VehicleSmallVan})
	require.NotNil(t, rej)
	require.Equal(t,
		"Vehicle type small_van is not accepted for this load; accepted types: luton, rigid_7_5t.",
		rej.feedback)
}

func TestCheckEligibility_BudgetCheckedFirst(t *testing.T) {
	budget := 100.0
	load := &models.Load{
		MaxBudget:              &budget,
		AcceptableVehicleTypes: []models.VehicleType{models.VehicleLuton},
	}
	q := &models.Quote{QuotedPrice: 150, OfferedVehicleType: models.VehicleSmallVan}

	rej := checkEligibility(load, q)
	require.NotNil(t, rej)
	require.Contains(t, rej.feedback, "maximum budget")
}

func TestCheckEligibility_NoConstraints(t *testing.T) {
	require.Nil(t, checkEligibility(&models.Load{}, &models.Quote{QuotedPrice: 99999}))
}

func TestRejectionFeedback_WeakSignals(t *testing.T) {
	b := models.ScoreBreakdown{PriceScore: 0.3, EtaScore: 0.9, FleetRatingScore: 0.4, VehicleMatch: 0.6}
	msg := rejectionFeedback(b, &models.Quote{ID: 1}, nil)
	require.Contains(t, msg, "the price is outside the competitive range")
	require.Contains(t, msg, "the fleet rating is low")
	require.Contains(t, msg, "the offered vehicle is a poor fit")
	require.NotContains(t, msg, "arrival")
}

func TestRejectionFeedback_NoWeakSignals(t *testing.T) {
	b := models.ScoreBreakdown{PriceScore: 0.8, EtaScore: 0.8, FleetRatingScore: 0.8, VehicleMatch: 0.8, CompositeScore: 0.68}
	msg := rejectionFeedback(b, &models.Quote{ID: 1}, nil)
	require.Equal(t, "Quote rejected: the composite score did not meet the acceptance threshold.", msg)
}

func TestRejectionFeedback_WinnerDelta(t *testing.T) {
	b := models.ScoreBreakdown{PriceScore: 0.8, EtaScore: 0.8, FleetRatingScore: 0.8, VehicleMatch: 0.8}
	loser := &models.Quote{ID: 2, QuotedPrice: 400}

	cheaper := &scoredQuote{quote: &models.Quote{ID: 1, QuotedPrice: 350}}
	msg := rejectionFeedback(b, loser, cheaper)
	require.Contains(t, msg, "The winning quote was £50.00 cheaper.")

	dearer := &scoredQuote{quote: &models.Quote{ID: 1, QuotedPrice: 450}}
	msg = rejectionFeedback(b, loser, dearer)
	require.Contains(t, msg, "A competing quote won with a better overall score at £450.00.")
}

func TestWinnerFeedback(t *testing.T) {
	b := models.ScoreBreakdown{CompositeScore: 0.9111}
	msg := winnerFeedback(b, &models.Quote{QuotedPrice: 350})
	require.Equal(t, "Quote accepted at £350.00 with a composite score of 0.9111.", msg)
}
