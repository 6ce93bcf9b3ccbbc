package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawMessage represents an unprocessed message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ScoredMessage is an assessment bound for the sink topic, keyed by the
// source message key when one was present.
type ScoredMessage struct {
	Key        []byte
	Assessment Assessment
}

// MessageKey returns the source key, or the assessment ID when the source
// message had none.
func (m ScoredMessage) MessageKey() []byte {
	if len(m.Key) > 0 {
		return m.Key
	}
	return []byte(m.Assessment.ID)
}

// DecodeRecord strictly decodes a JSON InputRecord. Unknown fields and
// trailing data are rejected with ErrMalformedInput.
func DecodeRecord(data []byte) (InputRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rec InputRecord
	if err := dec.Decode(&rec); err != nil {
		return InputRecord{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if dec.More() {
		return InputRecord{}, fmt.Errorf("%w: trailing data after record", ErrMalformedInput)
	}
	return rec, nil
}
