package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// Fetcher downloads remote artifacts once and keeps them in a cache directory.
type Fetcher struct {
	client     *resty.Client
	cacheDir   string
	maxElapsed time.Duration
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. Each request is bounded by timeout; retries
// of transient failures stop after maxElapsed.
func NewFetcher(cacheDir string, timeout, maxElapsed time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:     resty.New().SetTimeout(timeout),
		cacheDir:   cacheDir,
		maxElapsed: maxElapsed,
		logger:     logger,
	}
}

// Fetch returns the local path of the artifact at rawURL, downloading it only
// when no cached copy exists.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	dest, err := f.cachePath(rawURL)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dest); err == nil {
		f.logger.Info("using cached model artifact", "path", dest)
		return dest, nil
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create model cache dir: %w", err)
	}

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := f.client.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			f.logger.Warn("model download failed", "attempt", attempt, "error", err)
			return err
		}
		if resp.IsError() {
			statusErr := fmt.Errorf("model download: status %d", resp.StatusCode())
			if resp.StatusCode() < 500 && resp.StatusCode() != 429 {
				return backoff.Permanent(statusErr)
			}
			f.logger.Warn("model download failed", "attempt", attempt, "status", resp.StatusCode())
			return statusErr
		}
		body = resp.Body()
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = f.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", errors.New("model download: empty body")
	}

	if err := writeAtomic(dest, body); err != nil {
		return "", err
	}
	f.logger.Info("model artifact downloaded", "url", redact(rawURL), "path", dest, "bytes", len(body))
	return dest, nil
}

// cachePath derives a stable file name from the URL, keeping the extension so
// the artifact format can still be detected.
func (f *Fetcher) cachePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid model URL %q", redact(rawURL))
	}
	sum := sha256.Sum256([]byte(rawURL))
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		ext = ""
	}
	return filepath.Join(f.cacheDir, "model-"+hex.EncodeToString(sum[:8])+ext), nil
}

func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".model-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	return nil
}

// redact drops the query string, which may carry access tokens.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid>"
	}
	u.RawQuery = ""
	return u.String()
}
