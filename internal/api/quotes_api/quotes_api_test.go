package quotes_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/BearBump/QuoteDesk/internal/integrations/pricing/fake"
	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/BearBump/QuoteDesk/internal/services/evaluation"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	loads  map[uint64]*models.Load
	quotes map[uint64]*models.Quote
}

func (r *memRepo) GetQuote(_ context.Context, id uint64) (*models.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r *memRepo) GetLoad(_ context.Context, id uint64) (*models.Load, error) {
	l, ok := r.loads[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memRepo) ListQuotesByLoad(_ context.Context, loadID uint64) ([]*models.Quote, error) {
	var out []*models.Quote
	for _, q := range r.quotes {
		if q.LoadID == loadID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) GetFleetProfile(context.Context, string) (*models.FleetProfile, error) {
	return nil, nil
}

func (r *memRepo) UpdateQuoteStatus(_ context.Context, id uint64, status string) error {
	r.quotes[id].Status = status
	return nil
}

func (r *memRepo) UpdateLoadStatus(_ context.Context, id uint64, status string) error {
	r.loads[id].Status = status
	return nil
}

func (r *memRepo) IncrementFleetJobsCompleted(context.Context, string) error { return nil }

func (r *memRepo) SetQuoteScoreBreakdown(_ context.Context, id uint64, b models.ScoreBreakdown) error {
	r.quotes[id].Breakdown = &b
	return nil
}

func (r *memRepo) SetQuoteFeedback(_ context.Context, id uint64, feedback string) error {
	r.quotes[id].Feedback = &feedback
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memRepo) {
	t.Helper()
	repo := &memRepo{
		loads:  map[uint64]*models.Load{},
		quotes: map[uint64]*models.Quote{},
	}
	repo.loads[1] = &models.Load{
		ID: 1, DistanceKM: 370.5, Status: models.LoadStatusPosted,
		RequiredVehicleType: models.VehicleLargeVan,
	}
	repo.quotes[10] = &models.Quote{
		ID: 10, LoadID: 1, FleetID: "sim-alpha", Status: models.QuoteStatusSent,
		QuotedPrice: 741, OfferedVehicleType: models.VehicleLargeVan,
		EtaToCollectionMinutes: 160,
		ExpiresAt:              time.Now().UTC().Add(24 * time.Hour),
	}

	svc := evaluation.New(repo, fake.New())
	srv := httptest.NewServer(New(svc).Routes())
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestEvaluateEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/quotes/10/evaluate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Evaluated bool               `json:"evaluated"`
		Result    *evaluation.Result `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Evaluated)
	require.NotNil(t, body.Result)
	require.True(t, body.Result.Accepted)
	require.InDelta(t, 0.92, body.Result.Breakdown.CompositeScore, 1e-9)

	require.Equal(t, models.QuoteStatusAccepted, repo.quotes[10].Status)
}

func TestEvaluateEndpoint_NotActionable(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/quotes/999/evaluate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Evaluated bool            `json:"evaluated"`
		Result    json.RawMessage `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Evaluated)
	require.Empty(t, body.Result)
}

func TestGetQuote(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/quotes/10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto quoteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	require.Equal(t, uint64(10), dto.ID)
	require.Equal(t, "sim-alpha", dto.FleetID)
	require.Equal(t, models.QuoteStatusSent, dto.Status)
}

func TestGetQuote_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/quotes/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetQuote_BadID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/quotes/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListLoadQuotes(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.quotes[11] = &models.Quote{
		ID: 11, LoadID: 1, FleetID: "sim-beta", Status: models.QuoteStatusSent,
		QuotedPrice: 800, OfferedVehicleType: models.VehicleLargeVan,
		EtaToCollectionMinutes: 200,
	}

	resp, err := http.Get(srv.URL + "/v1/loads/1/quotes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Quotes []quoteDTO `json:"quotes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Quotes, 2)
	require.Equal(t, uint64(10), body.Quotes[0].ID)
	require.Equal(t, uint64(11), body.Quotes[1].ID)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
