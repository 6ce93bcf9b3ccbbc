package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [FILE]",
	Short: "Encode one JSON record into the classifier feature vector",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(cmd, firstArg(args))
		if err != nil {
			return err
		}
		defer in.Close()

		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		rec, err := domain.DecodeRecord(data)
		if err != nil {
			return err
		}
		v, err := domain.Encode(rec)
		if err != nil {
			return err
		}

		out := make([]namedFeature, domain.FeatureCount)
		for i := range v {
			out[i] = namedFeature{Name: domain.FeatureNames[i], Value: v[i]}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

type namedFeature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
