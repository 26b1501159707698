package benchhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BearBump/QuoteDesk/internal/integrations/pricing"
	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/pkg/errors"
)

// Client talks to the price-recommendation benchmark service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9100"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type benchResp struct {
	Status string `json:"status"`
	Data   struct {
		Min float64 `json:"min"`
		Mid float64 `json:"mid"`
		Max float64 `json:"max"`
	} `json:"data"`
}

func (c *Client) RecommendPrice(ctx context.Context, load *models.Load, vehicleType models.VehicleType) (*pricing.Range, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u.Path = "/v1/recommendations"

	q := u.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("origin", load.Origin)
	q.Set("destination", load.Destination)
	q.Set("distanceKm", strconv.FormatFloat(load.DistanceKM, 'f', 1, 64))
	if vehicleType != "" {
		q.Set("vehicleType", string(vehicleType))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	// 404 means "no data for this lane" — a legitimate absence, not an error.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("benchmark service http %d", resp.StatusCode)
	}

	var r benchResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if r.Status != "ok" {
		return nil, fmt.Errorf("benchmark service status=%s", r.Status)
	}
	if r.Data.Mid <= 0 {
		return nil, nil
	}

	return &pricing.Range{Min: r.Data.Min, Mid: r.Data.Mid, Max: r.Data.Max}, nil
}
