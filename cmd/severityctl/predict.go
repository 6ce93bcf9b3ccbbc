package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

var predictCmd = &cobra.Command{
	Use:   "predict [FILE]",
	Short: "Score JSON records (one object or an array) and print assessments",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clf, threshold, err := loadClassifier(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		in, err := openInput(cmd, firstArg(args))
		if err != nil {
			return err
		}
		defer in.Close()

		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read records: %w", err)
		}
		records, err := splitRecords(data)
		if err != nil {
			return err
		}

		assessments := make([]domain.Assessment, 0, len(records))
		for i, raw := range records {
			rec, err := domain.DecodeRecord(raw)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			a, err := domain.Assess(rec, clf, threshold)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			assessments = append(assessments, a)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(assessments)
	},
}

func init() {
	addModelFlags(predictCmd)
}

// splitRecords accepts a single JSON object or an array of objects.
func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
		}
		return list, nil
	}
	return []json.RawMessage{trimmed}, nil
}
