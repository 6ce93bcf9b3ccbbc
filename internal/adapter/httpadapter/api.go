package httpadapter

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

const (
	sourceAPI       = "api"
	maxRequestBytes = 64 << 10
)

// Membership and numeric ranges are left to the encoder so those failures
// keep their own error kinds; the schema only checks shape and types.
//
//go:embed request.schema.json
var requestSchemaJSON []byte

var requestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(requestSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse request schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	const url = "schema://collision-record.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add request schema: %w", err)
	}
	return c.Compile(url)
})

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

type encodeResponse struct {
	Features [domain.FeatureCount]string `json:"features"`
	Vector   domain.FeatureVector        `json:"vector"`
}

type fieldsResponse struct {
	Categories []domain.Category           `json:"categories"`
	Numeric    []domain.NumericDomain      `json:"numeric"`
	Defaults   domain.InputRecord          `json:"defaults"`
	Features   [domain.FeatureCount]string `json:"features"`
	Threshold  float64                     `json:"threshold"`
}

type districtResponse struct {
	District string `json:"district"`
	Place    string `json:"place"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	a, err := s.assess(r.Context(), rec, sourceAPI)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	v, err := domain.Encode(rec)
	if err != nil {
		s.metrics.EncodeErrors.WithLabelValues(sourceAPI, kindLabel(err)).Inc()
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{Features: domain.FeatureNames, Vector: v})
}

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, fieldsResponse{
		Categories: domain.Categories(),
		Numeric:    domain.NumericDomains(),
		Defaults:   domain.DefaultRecord(),
		Features:   domain.FeatureNames,
		Threshold:  s.threshold,
	})
}

func (s *Server) handleDistrict(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "district suggestions are disabled", Kind: "geocoding_disabled"})
		return
	}

	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon must be numbers", Kind: "invalid_request"})
		return
	}
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		s.writeDomainError(w, err)
		return
	}

	result, err := s.geocoder.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		s.logger.Warn("reverse geocode failed", "error", err, "lat", lat, "lon", lon)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "geocoding provider error", Kind: "geocoding_failed"})
		return
	}
	district, ok := domain.SuggestDistrict(result)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no matching local authority district", Kind: "no_match"})
		return
	}
	writeJSON(w, http.StatusOK, districtResponse{District: district, Place: result.FormattedAddress})
}

// decodeRecord reads, schema-validates, and decodes the request body. On
// failure it writes a 400 response and returns false.
func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (domain.InputRecord, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body too large or unreadable", Kind: "invalid_request"})
		return domain.InputRecord{}, false
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		s.metrics.EncodeErrors.WithLabelValues(sourceAPI, "malformed_input").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body is not valid JSON", Kind: "malformed_input"})
		return domain.InputRecord{}, false
	}

	schema, err := requestSchema()
	if err != nil {
		s.logger.Error("request schema unavailable", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
		return domain.InputRecord{}, false
	}
	if err := schema.Validate(doc); err != nil {
		s.metrics.EncodeErrors.WithLabelValues(sourceAPI, "invalid_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: schemaMessage(err), Kind: "invalid_request"})
		return domain.InputRecord{}, false
	}

	rec, err := domain.DecodeRecord(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)})
		return domain.InputRecord{}, false
	}
	return rec, true
}

// writeDomainError maps the error taxonomy to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.ErrorKind(err)
	resp := errorResponse{Error: err.Error(), Kind: kind, Field: domain.ErrorField(err)}

	switch {
	case errors.Is(err, domain.ErrUnknownCategory), errors.Is(err, domain.ErrOutOfRange):
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, domain.ErrModelUnavailable):
		s.logger.Error("model unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "model unavailable", Kind: kind})
	default:
		s.logger.Error("assessment failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: kindLabel(err)})
	}
}

// schemaMessage flattens a validation error to its first leaf cause.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.Error()
}

func kindLabel(err error) string {
	if kind := domain.ErrorKind(err); kind != "" {
		return kind
	}
	return "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
