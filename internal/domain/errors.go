package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrUnknownCategory is matched by errors for categorical values missing
	// from their lookup table.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrOutOfRange is matched by errors for numeric values outside their domain.
	ErrOutOfRange = errors.New("value out of range")

	// ErrModelUnavailable marks a classifier artifact that could not be
	// fetched, decoded, or validated.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidProbabilities marks classifier output that breaks the
	// probability contract.
	ErrInvalidProbabilities = errors.New("invalid class probabilities")

	// ErrMalformedInput marks a payload that does not decode into an InputRecord.
	ErrMalformedInput = errors.New("malformed input")
)

// CategoryError reports a categorical value that has no code in its table.
type CategoryError struct {
	Field string
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s: unknown category %q", e.Field, e.Value)
}

func (e *CategoryError) Is(target error) bool { return target == ErrUnknownCategory }

// RangeError reports a numeric value outside its declared domain.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s out of range [%s, %s]", e.Field,
		formatFloat(e.Value), formatFloat(e.Min), formatFloat(e.Max))
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ErrorKind classifies an encoding or assessment error for transport layers
// and metrics labels. It returns "" for errors outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrInvalidProbabilities):
		return "invalid_probabilities"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	default:
		return ""
	}
}

// ErrorField returns the offending field name of a CategoryError or
// RangeError, or "" otherwise.
func ErrorField(err error) string {
	var ce *CategoryError
	if errors.As(err, &ce) {
		return ce.Field
	}
	var re *RangeError
	if errors.As(err, &re) {
		return re.Field
	}
	return ""
}
