// Package httpadapter serves the collision severity form, the JSON scoring
// API, and the operational endpoints.
package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/observability"
)

// ClassifierLoader yields the loaded classifier, or an error wrapping
// domain.ErrModelUnavailable.
type ClassifierLoader interface {
	Load(ctx context.Context) (domain.Classifier, error)
}

// Options configures a Server. Geocoder may be nil to disable district
// suggestions.
type Options struct {
	Addr      string
	Models    ClassifierLoader
	Threshold float64
	Geocoder  domain.Geocoder
	Ready     sharedobs.ReadinessChecker
	RateLimit rate.Limit
	RateBurst int
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// Server exposes the scoring UI and API alongside health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	models     ClassifierLoader
	threshold  float64
	geocoder   domain.Geocoder
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the UI, /api/v1, /healthz, /readyz,
// and /metrics routes.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		models:    opts.Models,
		threshold: opts.Threshold,
		geocoder:  opts.Geocoder,
		limiter:   rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("POST /predict", s.rateLimited(http.HandlerFunc(s.handleFormPredict)))

	mux.Handle("POST /api/v1/predict", s.rateLimited(http.HandlerFunc(s.handlePredict)))
	mux.Handle("POST /api/v1/encode", s.rateLimited(http.HandlerFunc(s.handleEncode)))
	mux.HandleFunc("GET /api/v1/fields", s.handleFields)
	mux.HandleFunc("GET /api/v1/district", s.handleDistrict)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(opts.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.metrics.RateLimited.Inc()
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded", Kind: "rate_limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// assess loads the classifier and scores rec, recording metrics for source.
func (s *Server) assess(ctx context.Context, rec domain.InputRecord, source string) (domain.Assessment, error) {
	clf, err := s.models.Load(ctx)
	if err != nil {
		return domain.Assessment{}, err
	}

	start := time.Now()
	a, err := domain.Assess(rec, clf, s.threshold)
	s.metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.EncodeErrors.WithLabelValues(source, kindLabel(err)).Inc()
		return domain.Assessment{}, err
	}
	s.metrics.Predictions.WithLabelValues(source, string(a.Severity)).Inc()
	return a, nil
}

// Readiness combines checkers and reports every failing one.
func Readiness(checkers ...sharedobs.ReadinessChecker) sharedobs.ReadinessChecker {
	return readinessGroup(checkers)
}

type readinessGroup []sharedobs.ReadinessChecker

func (g readinessGroup) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range g {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
