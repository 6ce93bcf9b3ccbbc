package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/observability"
)

const sourceStream = "stream"

// SeverityScorer implements Transformer by decoding each message as an
// InputRecord and assessing it with a loaded classifier.
type SeverityScorer struct {
	classifier domain.Classifier
	threshold  float64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewScorer creates a SeverityScorer. The classifier must already be loaded.
func NewScorer(clf domain.Classifier, threshold float64, metrics *observability.Metrics, logger *slog.Logger) *SeverityScorer {
	return &SeverityScorer{
		classifier: clf,
		threshold:  threshold,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *SeverityScorer) Transform(_ context.Context, raw domain.RawMessage) (domain.ScoredMessage, error) {
	rec, err := domain.DecodeRecord(raw.Value)
	if err != nil {
		s.metrics.EncodeErrors.WithLabelValues(sourceStream, kindLabel(err)).Inc()
		return domain.ScoredMessage{}, err
	}

	start := time.Now()
	a, err := domain.Assess(rec, s.classifier, s.threshold)
	s.metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.EncodeErrors.WithLabelValues(sourceStream, kindLabel(err)).Inc()
		return domain.ScoredMessage{}, err
	}

	s.metrics.Predictions.WithLabelValues(sourceStream, string(a.Severity)).Inc()
	s.logger.Debug("collision assessed",
		"id", a.ID, "severity", a.Severity, "p_serious", a.Probabilities.Serious, "offset", raw.Offset)
	return domain.ScoredMessage{Key: raw.Key, Assessment: a}, nil
}

func kindLabel(err error) string {
	if kind := domain.ErrorKind(err); kind != "" {
		return kind
	}
	return "classifier_error"
}
