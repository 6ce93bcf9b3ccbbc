package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/collision-severity-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/observability"
)

// --- stubs ---

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// casualtyClassifier returns p(serious) = casualties / 10.
type casualtyClassifier struct{}

func (casualtyClassifier) PredictProba(v domain.FeatureVector) (domain.Probabilities, error) {
	serious := v[domain.IdxNumberOfCasualties] / 10
	return domain.Probabilities{Slight: 1 - serious, Serious: serious}, nil
}

type stubModels struct {
	err error
}

func (m stubModels) Load(context.Context) (domain.Classifier, error) {
	if m.err != nil {
		return nil, m.err
	}
	return casualtyClassifier{}, nil
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (g stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return g.result, g.err
}

type serverOption func(*httpadapter.Options)

func withModelError(err error) serverOption {
	return func(o *httpadapter.Options) { o.Models = stubModels{err: err} }
}

func withGeocoder(g domain.Geocoder) serverOption {
	return func(o *httpadapter.Options) { o.Geocoder = g }
}

func withReadiness(err error) serverOption {
	return func(o *httpadapter.Options) { o.Ready = &mockReadiness{err: err} }
}

func withRateLimit(limit rate.Limit, burst int) serverOption {
	return func(o *httpadapter.Options) { o.RateLimit, o.RateBurst = limit, burst }
}

func newTestServer(opts ...serverOption) *httpadapter.Server {
	o := httpadapter.Options{
		Addr:      ":0",
		Models:    stubModels{},
		Threshold: domain.DefaultThreshold,
		Ready:     &mockReadiness{},
		RateLimit: rate.Inf,
		RateBurst: 1,
		Metrics:   observability.NewMetricsForTesting(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return httpadapter.NewServer(o)
}

func serve(srv *httpadapter.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// --- operational endpoints ---

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(withReadiness(fmt.Errorf("model not loaded yet")))
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReadiness_CombinesCheckers(t *testing.T) {
	ok := &mockReadiness{}
	modelErr := &mockReadiness{err: errors.New("model not loaded yet")}
	kafkaErr := &mockReadiness{err: errors.New("pipeline is not consuming")}

	require.NoError(t, httpadapter.Readiness(ok, ok).CheckReadiness(context.Background()))

	err := httpadapter.Readiness(ok, modelErr, kafkaErr).CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded yet")
	assert.Contains(t, err.Error(), "pipeline is not consuming")
}

// --- fixtures shared by the API and form tests ---

func validRecord() domain.InputRecord {
	return domain.InputRecord{
		DayOfWeek:             "Sunday",
		JunctionDetail:        "Crossroads",
		Latitude:              52.4796,
		Longitude:             -1.9026,
		LocalAuthority:        "Birmingham",
		LightConditions:       "Daylight",
		NumberOfCasualties:    7,
		NumberOfVehicles:      2,
		RoadSurfaceConditions: "Dry",
		RoadType:              "Single carriageway",
		UrbanOrRural:          "Urban",
		VehicleType:           "Car",
	}
}

func recordForm(rec domain.InputRecord) url.Values {
	return url.Values{
		domain.FieldDayOfWeek:             {rec.DayOfWeek},
		domain.FieldJunctionDetail:        {rec.JunctionDetail},
		domain.FieldLatitude:              {strconv.FormatFloat(rec.Latitude, 'f', -1, 64)},
		domain.FieldLongitude:             {strconv.FormatFloat(rec.Longitude, 'f', -1, 64)},
		domain.FieldLocalAuthority:        {rec.LocalAuthority},
		domain.FieldLightConditions:       {rec.LightConditions},
		domain.FieldNumberOfCasualties:    {strconv.Itoa(rec.NumberOfCasualties)},
		domain.FieldNumberOfVehicles:      {strconv.Itoa(rec.NumberOfVehicles)},
		domain.FieldRoadSurfaceConditions: {rec.RoadSurfaceConditions},
		domain.FieldRoadType:              {rec.RoadType},
		domain.FieldUrbanOrRural:          {rec.UrbanOrRural},
		domain.FieldVehicleType:           {rec.VehicleType},
	}
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
