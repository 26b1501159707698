package evaluation

import (
	"fmt"
	"strings"

	"github.com/BearBump/QuoteDesk/internal/models"
)

// gateRejection is a hard eligibility failure: the quote never reaches
// scoring and is rejected with an all-zero breakdown.
type gateRejection struct {
	feedback string
}

// checkEligibility runs the ZOPA gate: the poster's budget ceiling and the
// acceptable-vehicle list. Either failing means there is no zone of possible
// agreement, however good the other signals are. Returns nil when the quote
// may proceed to scoring.
func checkEligibility(load *models.Load, q *models.Quote) *gateRejection {
	if load.MaxBudget != nil && q.QuotedPrice > *load.MaxBudget {
		return &gateRejection{feedback: fmt.Sprintf(
			"Quoted price £%.2f exceeds the load's maximum budget of £%.2f.",
			q.QuotedPrice, *load.MaxBudget)}
	}

	if len(load.AcceptableVehicleTypes) > 0 {
		offered := q.OfferedOrRequestedVehicleType()
		for _, vt := range load.AcceptableVehicleTypes {
			if vt == offered {
				return nil
			}
		}
		names := make([]string, 0, len(load.AcceptableVehicleTypes))
		for _, vt := range load.AcceptableVehicleTypes {
			names = append(names, string(vt))
		}
		return &gateRejection{feedback: fmt.Sprintf(
			"Vehicle type %s is not accepted for this load; accepted types: %s.",
			offered, strings.Join(names, ", "))}
	}

	return nil
}
