package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

// Source locates the artifact: a local Path, or a URL fetched through Fetcher.
type Source struct {
	Path string
	URL  string
}

// ArtifactFetcher resolves a remote artifact URL to a local file.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Info describes the loaded artifact.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
}

// Loader loads the classifier on first use and caches the outcome, success or
// failure, for the lifetime of the process.
type Loader struct {
	source  Source
	fetcher ArtifactFetcher
	logger  *slog.Logger

	mu   sync.Mutex
	done bool
	clf  domain.Classifier
	info Info
	err  error
}

// NewLoader creates a Loader. fetcher may be nil when Source.URL is empty.
func NewLoader(src Source, fetcher ArtifactFetcher, logger *slog.Logger) *Loader {
	return &Loader{source: src, fetcher: fetcher, logger: logger}
}

// Load returns the classifier, loading it on the first call. Failures wrap
// domain.ErrModelUnavailable and are not retried.
func (l *Loader) Load(ctx context.Context) (domain.Classifier, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.done {
		l.clf, l.info, l.err = l.load(ctx)
		l.done = true
		if l.err != nil {
			l.logger.Error("model load failed", "error", l.err)
		} else {
			l.logger.Info("model loaded",
				"name", l.info.Name, "version", l.info.Version, "kind", l.info.Kind, "path", l.info.Path)
		}
	}
	return l.clf, l.err
}

func (l *Loader) load(ctx context.Context) (domain.Classifier, Info, error) {
	path := l.source.Path
	if path == "" {
		if l.source.URL == "" || l.fetcher == nil {
			return nil, Info{}, fmt.Errorf("%w: no model source configured", domain.ErrModelUnavailable)
		}
		fetched, err := l.fetcher.Fetch(ctx, l.source.URL)
		if err != nil {
			return nil, Info{}, fmt.Errorf("%w: fetch: %w", domain.ErrModelUnavailable, err)
		}
		path = fetched
	}

	a, err := ReadFile(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	clf, err := a.Classifier()
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return clf, Info{Name: a.Name, Version: a.Version, Kind: a.Kind, Path: path}, nil
}

// ReadFile reads and decodes an artifact from disk.
func ReadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return Decode(data, DetectFormat(path, data))
}

// Info returns metadata of the loaded artifact and whether loading succeeded.
func (l *Loader) Info() (Info, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.info, l.done && l.err == nil
}

// CheckReadiness returns nil once a classifier has been loaded.
func (l *Loader) CheckReadiness(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case !l.done:
		return errors.New("model not loaded yet")
	case l.err != nil:
		return l.err
	default:
		return nil
	}
}
