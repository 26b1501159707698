package quotes_api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/BearBump/QuoteDesk/internal/services/evaluation"
	"github.com/go-chi/chi/v5"
)

type QuotesAPI struct {
	svc *evaluation.Service
}

func New(svc *evaluation.Service) *QuotesAPI {
	return &QuotesAPI{svc: svc}
}

func (a *QuotesAPI) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Post("/v1/quotes/{quoteID}/evaluate", a.evaluateQuote)
	r.Get("/v1/quotes/{quoteID}", a.getQuote)
	r.Get("/v1/loads/{loadID}/quotes", a.listLoadQuotes)

	return r
}

type evaluateResponse struct {
	Evaluated bool               `json:"evaluated"`
	Result    *evaluation.Result `json:"result,omitempty"`
}

// evaluateQuote runs a synchronous evaluation. An absent outcome (unknown
// quote, quote no longer SENT, missing load) is reported as evaluated=false,
// not as an error: it means "nothing to decide yet".
func (a *QuotesAPI) evaluateQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quoteID")
	if !ok {
		return
	}

	res, err := a.svc.Evaluate(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Evaluated: res != nil, Result: res})
}

func (a *QuotesAPI) getQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "quoteID")
	if !ok {
		return
	}

	q, err := a.svc.GetQuote(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if q == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "quote not found"})
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(q))
}

func (a *QuotesAPI) listLoadQuotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "loadID")
	if !ok {
		return
	}

	qs, err := a.svc.ListQuotesByLoad(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]quoteDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, toQuoteDTO(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": out})
}

type quoteDTO struct {
	ID                     uint64                 `json:"id"`
	LoadID                 uint64                 `json:"load_id"`
	FleetID                string                 `json:"fleet_id"`
	QuotedPrice            float64                `json:"quoted_price"`
	Status                 string                 `json:"status"`
	RequestedVehicleType   string                 `json:"requested_vehicle_type,omitempty"`
	OfferedVehicleType     string                 `json:"offered_vehicle_type,omitempty"`
	EtaToCollectionMinutes int                    `json:"eta_to_collection_minutes"`
	ADRCertified           bool                   `json:"adr_certified"`
	Breakdown              *models.ScoreBreakdown `json:"breakdown,omitempty"`
	Feedback               string                 `json:"feedback,omitempty"`
	ExpiresAt              time.Time              `json:"expires_at"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

func toQuoteDTO(q *models.Quote) quoteDTO {
	return quoteDTO{
		ID:                     q.ID,
		LoadID:                 q.LoadID,
		FleetID:                q.FleetID,
		QuotedPrice:            q.QuotedPrice,
		Status:                 q.Status,
		RequestedVehicleType:   string(q.RequestedVehicleType),
		OfferedVehicleType:     string(q.OfferedVehicleType),
		EtaToCollectionMinutes: q.EtaToCollectionMinutes,
		ADRCertified:           q.ADRCertified,
		Breakdown:              q.Breakdown,
		Feedback:               derefString(q.Feedback),
		ExpiresAt:              q.ExpiresAt,
		CreatedAt:              q.CreatedAt,
		UpdatedAt:              q.UpdatedAt,
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
