// Package model decodes exported classifier artifacts and evaluates them as
// domain.Classifier implementations.
//
// An artifact is a declarative export of a fitted scikit-learn estimator:
// logistic regression coefficients or the node arrays of a tree ensemble,
// plus an optional standard scaler. Artifacts may be JSON or YAML and are
// validated against an embedded JSON Schema before use.
package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Artifact kinds.
const (
	KindLogistic         = "logistic"
	KindRandomForest     = "random_forest"
	KindGradientBoosting = "gradient_boosting"
)

// Artifact is the serialized classifier bundle.
type Artifact struct {
	Name         string          `json:"name,omitempty"`
	Version      string          `json:"version,omitempty"`
	Kind         string          `json:"kind"`
	Features     []string        `json:"features"`
	Scaler       *Scaler         `json:"scaler,omitempty"`
	Logistic     *LogisticParams `json:"logistic,omitempty"`
	Trees        []Tree          `json:"trees,omitempty"`
	BaseScore    float64         `json:"base_score,omitempty"`
	LearningRate float64         `json:"learning_rate,omitempty"`
}

// Scaler standardizes a feature vector as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LogisticParams holds fitted logistic regression weights.
type LogisticParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Format is an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the encoding from the file extension, falling back to
// sniffing the first non-space byte.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}
	return FormatYAML
}

//go:embed artifact.schema.json
var artifactSchema []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal(artifactSchema, &doc); err != nil {
		return nil, fmt.Errorf("parse artifact schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	const url = "schema://artifact.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add artifact schema: %w", err)
	}
	return c.Compile(url)
})

// Decode parses, schema-validates, and semantically checks an artifact.
func Decode(data []byte, format Format) (*Artifact, error) {
	normalized, err := normalize(data, format)
	if err != nil {
		return nil, err
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	var parsed any
	if err := json.Unmarshal(normalized, &parsed); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("artifact schema: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(normalized, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// normalize converts YAML to JSON so both encodings share one schema.
func normalize(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml artifact: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml artifact: %w", err)
	}
	return out, nil
}

// validate checks what the schema cannot: feature order and tree structure.
func (a *Artifact) validate() error {
	for i, name := range domain.FeatureNames {
		if a.Features[i] != name {
			return fmt.Errorf("artifact feature %d is %q, want %q", i, a.Features[i], name)
		}
	}
	if a.Scaler != nil {
		for i, s := range a.Scaler.Scale {
			if s == 0 {
				return fmt.Errorf("artifact scaler: zero scale for %s", domain.FeatureNames[i])
			}
		}
	}
	for i := range a.Trees {
		if err := a.Trees[i].validate(); err != nil {
			return fmt.Errorf("artifact tree %d: %w", i, err)
		}
		if a.Kind == KindRandomForest {
			for _, v := range a.Trees[i].Value {
				if v < 0 || v > 1 {
					return fmt.Errorf("artifact tree %d: leaf probability %v outside [0,1]", i, v)
				}
			}
		}
	}
	return nil
}

// Classifier builds the evaluator described by the artifact.
func (a *Artifact) Classifier() (domain.Classifier, error) {
	switch a.Kind {
	case KindLogistic:
		return newLogistic(a.Logistic, a.Scaler), nil
	case KindRandomForest:
		return &forest{trees: a.Trees, scaler: a.Scaler}, nil
	case KindGradientBoosting:
		lr := a.LearningRate
		if lr == 0 {
			lr = 1
		}
		return &boosting{trees: a.Trees, scaler: a.Scaler, baseScore: a.BaseScore, learningRate: lr}, nil
	default:
		return nil, fmt.Errorf("unsupported artifact kind %q", a.Kind)
	}
}

func (s *Scaler) apply(v domain.FeatureVector) domain.FeatureVector {
	if s == nil {
		return v
	}
	for i := range v {
		v[i] = (v[i] - s.Mean[i]) / s.Scale[i]
	}
	return v
}
