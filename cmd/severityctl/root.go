package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/model"
	"github.com/couchcryptid/collision-severity-service/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:          "severityctl",
	Short:        "Encode and score road collision records",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(scoreCSVCmd)
	rootCmd.AddCommand(versionCmd)
}

// addModelFlags registers the flags shared by commands that need a classifier.
// MODEL_PATH, MODEL_URL, and SERIOUS_THRESHOLD provide defaults.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", os.Getenv("MODEL_PATH"), "Path to the classifier artifact (JSON or YAML)")
	cmd.Flags().String("model-url", os.Getenv("MODEL_URL"), "URL of the classifier artifact, downloaded once and cached")
	cmd.Flags().String("cache-dir", os.TempDir(), "Directory for downloaded artifacts")
	cmd.Flags().Float64("threshold", domain.DefaultThreshold, "p(serious) at or above which a collision is Serious")
}

func logger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return observability.NewLoggerTo(cmd.ErrOrStderr(), level, "text")
}

// loadClassifier resolves the model flags and returns the classifier and threshold.
func loadClassifier(ctx context.Context, cmd *cobra.Command) (domain.Classifier, float64, error) {
	path, _ := cmd.Flags().GetString("model")
	url, _ := cmd.Flags().GetString("model-url")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	if !domain.ValidThreshold(threshold) {
		return nil, 0, fmt.Errorf("threshold %v must be within [0, 1]", threshold)
	}
	if path != "" && url != "" {
		return nil, 0, fmt.Errorf("--model and --model-url are mutually exclusive")
	}

	log := logger(cmd)
	fetcher := model.NewFetcher(cacheDir, 30*time.Second, 2*time.Minute, log)
	clf, err := model.NewLoader(model.Source{Path: path, URL: url}, fetcher, log).Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	return clf, threshold, nil
}

// openInput returns the named file, or stdin when name is empty or "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
