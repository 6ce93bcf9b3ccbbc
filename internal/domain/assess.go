package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// DefaultThreshold is the p(serious) cut-off at or above which a collision is
// labeled Serious.
const DefaultThreshold = 0.55

// probabilityTolerance bounds |p_slight + p_serious - 1|.
const probabilityTolerance = 1e-6

// Classifier is a pre-trained binary severity model.
type Classifier interface {
	PredictProba(v FeatureVector) (Probabilities, error)
}

// Validate checks that both probabilities lie in [0,1] and sum to 1.
func (p Probabilities) Validate() error {
	if !(p.Slight >= 0 && p.Slight <= 1) || !(p.Serious >= 0 && p.Serious <= 1) {
		return fmt.Errorf("%w: p_slight=%v p_serious=%v outside [0,1]", ErrInvalidProbabilities, p.Slight, p.Serious)
	}
	if math.Abs(p.Slight+p.Serious-1) > probabilityTolerance {
		return fmt.Errorf("%w: p_slight=%v p_serious=%v do not sum to 1", ErrInvalidProbabilities, p.Slight, p.Serious)
	}
	return nil
}

// Label applies the decision threshold to p(serious).
func Label(p Probabilities, threshold float64) Severity {
	if p.Serious >= threshold {
		return SeveritySerious
	}
	return SeveritySlight
}

// ValidThreshold reports whether t is usable as a decision threshold.
func ValidThreshold(t float64) bool {
	return t >= 0 && t <= 1
}

// Assess encodes rec, runs the classifier, and labels the result.
// Encoding errors are returned unchanged so callers can classify them.
func Assess(rec InputRecord, clf Classifier, threshold float64) (Assessment, error) {
	v, err := Encode(rec)
	if err != nil {
		return Assessment{}, err
	}

	p, err := clf.PredictProba(v)
	if err != nil {
		return Assessment{}, fmt.Errorf("predict: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Assessment{}, err
	}

	return Assessment{
		ID:            uuid.NewString(),
		Record:        rec,
		Features:      v,
		Probabilities: p,
		Threshold:     threshold,
		Severity:      Label(p, threshold),
		AssessedAt:    clock.Now().UTC(),
	}, nil
}
