package evaluation

import (
	"fmt"
	"strings"

	"github.com/BearBump/QuoteDesk/internal/models"
)

const outbidFeedback = "Outbid by a better quote"

// Component thresholds below which a signal is named in rejection feedback.
// Vehicle match uses a higher bar: a merely adequate vehicle is still worth
// mentioning to the carrier.
const (
	weakSignalThreshold  = 0.5
	weakVehicleThreshold = 0.7
)

func winnerFeedback(b models.ScoreBreakdown, q *models.Quote) string {
	return fmt.Sprintf("Quote accepted at £%.2f with a composite score of %.4f.",
		q.QuotedPrice, b.CompositeScore)
}

// rejectionFeedback names the signals that dragged the composite down and,
// when another quote won the load, how the winning price compared.
func rejectionFeedback(b models.ScoreBreakdown, q *models.Quote, winner *scoredQuote) string {
	var parts []string
	if b.PriceScore < weakSignalThreshold {
		parts = append(parts, "the price is outside the competitive range")
	}
	if b.EtaScore < weakSignalThreshold {
		parts = append(parts, "the estimated arrival is too late for collection")
	}
	if b.FleetRatingScore < weakSignalThreshold {
		parts = append(parts, "the fleet rating is low")
	}
	if b.VehicleMatch < weakVehicleThreshold {
		parts = append(parts, "the offered vehicle is a poor fit")
	}

	msg := "Quote rejected"
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	} else {
		msg += ": the composite score did not meet the acceptance threshold"
	}
	msg += "."

	if winner != nil && winner.quote.ID != q.ID {
		delta := q.QuotedPrice - winner.quote.QuotedPrice
		if delta > 0 {
			msg += fmt.Sprintf(" The winning quote was £%.2f cheaper.", delta)
		} else {
			msg += fmt.Sprintf(" A competing quote won with a better overall score at £%.2f.",
				winner.quote.QuotedPrice)
		}
	}
	return msg
}
