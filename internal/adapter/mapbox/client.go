package mapbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/observability"
)

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	methodReverse  = "reverse"

	// Feature types that can name a local authority district. Mapbox rejects
	// a limit on reverse lookups with more than one type, so all matches are
	// returned and folded into Areas.
	reverseTypes = "district,place,locality,region"
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token   string
	http    *resty.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return newClient(token, defaultBaseURL, timeout, logger, metrics)
}

func newClient(token, baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token:   token,
		http:    resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode resolves coordinates to the enclosing place and its
// administrative areas.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", lon, lat)

	var body response
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": c.token,
			"types":        reverseTypes,
		}).
		SetResult(&body).
		Get("/" + coord + ".json")
	c.metrics.GeocodeAPIDuration.WithLabelValues(methodReverse).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(methodReverse, "error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("%s geocode request: %w", methodReverse, err)
	}
	if resp.IsError() {
		c.metrics.GeocodeRequests.WithLabelValues(methodReverse, "error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode(), resp.Body())
	}

	if len(body.Features) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues(methodReverse, "empty").Inc()
		c.logger.Debug("reverse geocode returned no features", "lat", lat, "lon", lon)
		return domain.GeocodingResult{}, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues(methodReverse, "success").Inc()

	return body.toResult(), nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	PlaceName string        `json:"place_name"`
	Text      string        `json:"text"`
	Relevance float64       `json:"relevance"`
	Context   []contextItem `json:"context"`
}

type contextItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// toResult uses the first (most specific) feature for the place and collects
// the remaining features and every context entry as areas, without duplicates.
func (r response) toResult() domain.GeocodingResult {
	first := r.Features[0]
	result := domain.GeocodingResult{
		PlaceName:        first.Text,
		FormattedAddress: first.PlaceName,
		Confidence:       first.Relevance,
	}

	seen := map[string]bool{first.Text: true}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		result.Areas = append(result.Areas, name)
	}
	for _, c := range first.Context {
		add(c.Text)
	}
	for _, f := range r.Features[1:] {
		add(f.Text)
	}
	return result
}
