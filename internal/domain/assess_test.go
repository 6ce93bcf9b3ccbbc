package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	p    Probabilities
	err  error
	seen []FeatureVector
}

func (s *stubClassifier) PredictProba(v FeatureVector) (Probabilities, error) {
	s.seen = append(s.seen, v)
	return s.p, s.err
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		serious  float64
		expected Severity
	}{
		{"well below", 0.10, SeveritySlight},
		{"just below", 0.5499, SeveritySlight},
		{"at threshold", 0.55, SeveritySerious},
		{"above", 0.90, SeveritySerious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Probabilities{Slight: 1 - tt.serious, Serious: tt.serious}
			assert.Equal(t, tt.expected, Label(p, DefaultThreshold))
		})
	}
}

func TestProbabilities_Validate(t *testing.T) {
	tests := []struct {
		name  string
		p     Probabilities
		valid bool
	}{
		{"balanced", Probabilities{0.5, 0.5}, true},
		{"certain", Probabilities{0, 1}, true},
		{"float noise", Probabilities{0.7, 0.30000000001}, true},
		{"negative", Probabilities{1.2, -0.2}, false},
		{"sum too small", Probabilities{0.4, 0.4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidProbabilities)
		})
	}
}

func TestAssess(t *testing.T) {
	fixed := time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	t.Run("serious", func(t *testing.T) {
		clf := &stubClassifier{p: Probabilities{Slight: 0.3, Serious: 0.7}}
		a, err := Assess(validRecord(), clf, DefaultThreshold)
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.Equal(t, SeveritySerious, a.Severity)
		assert.Equal(t, 0.7, a.Probabilities.Serious)
		assert.Equal(t, DefaultThreshold, a.Threshold)
		assert.Equal(t, fixed, a.AssessedAt)
		assert.Equal(t, validRecord(), a.Record)
		require.Len(t, clf.seen, 1)
		assert.Equal(t, a.Features, clf.seen[0])
	})

	t.Run("custom threshold", func(t *testing.T) {
		clf := &stubClassifier{p: Probabilities{Slight: 0.3, Serious: 0.7}}
		a, err := Assess(validRecord(), clf, 0.8)
		require.NoError(t, err)
		assert.Equal(t, SeveritySlight, a.Severity)
	})

	t.Run("unknown category skips classifier", func(t *testing.T) {
		clf := &stubClassifier{p: Probabilities{Slight: 0.3, Serious: 0.7}}
		rec := validRecord()
		rec.VehicleType = "Spaceship"

		_, err := Assess(rec, clf, DefaultThreshold)
		assert.ErrorIs(t, err, ErrUnknownCategory)
		assert.Empty(t, clf.seen)
	})

	t.Run("classifier error", func(t *testing.T) {
		clf := &stubClassifier{err: errors.New("boom")}
		_, err := Assess(validRecord(), clf, DefaultThreshold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "predict: boom")
	})

	t.Run("broken probabilities", func(t *testing.T) {
		clf := &stubClassifier{p: Probabilities{Slight: 0.9, Serious: 0.9}}
		_, err := Assess(validRecord(), clf, DefaultThreshold)
		assert.ErrorIs(t, err, ErrInvalidProbabilities)
		assert.Equal(t, "invalid_probabilities", ErrorKind(err))
	})

	t.Run("unique ids", func(t *testing.T) {
		clf := &stubClassifier{p: Probabilities{Slight: 0.5, Serious: 0.5}}
		a1, err := Assess(validRecord(), clf, DefaultThreshold)
		require.NoError(t, err)
		a2, err := Assess(validRecord(), clf, DefaultThreshold)
		require.NoError(t, err)
		assert.NotEqual(t, a1.ID, a2.ID)
		assert.Equal(t, a1.Features, a2.Features)
	})
}

func TestValidThreshold(t *testing.T) {
	assert.True(t, ValidThreshold(0))
	assert.True(t, ValidThreshold(DefaultThreshold))
	assert.True(t, ValidThreshold(1))
	assert.False(t, ValidThreshold(-0.1))
	assert.False(t, ValidThreshold(1.5))
}
