package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List every input field with its allowed values and codes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeFieldsJSON(cmd.OutOrStdout())
		}
		return writeFieldsTable(cmd.OutOrStdout())
	},
}

func init() {
	fieldsCmd.Flags().Bool("json", false, "Print as JSON")
}

func writeFieldsTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCODE\tVALUE")
	for _, c := range domain.Categories() {
		for code, member := range c.Members {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Field, code, member)
		}
	}
	for _, d := range domain.NumericDomains() {
		fmt.Fprintf(tw, "%s\t-\t%g to %g (default %g)\n", d.Field, d.Min, d.Max, d.Default)
	}
	return tw.Flush()
}

func writeFieldsJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Categories []domain.Category           `json:"categories"`
		Numeric    []domain.NumericDomain      `json:"numeric"`
		Features   [domain.FeatureCount]string `json:"features"`
	}{domain.Categories(), domain.NumericDomains(), domain.FeatureNames})
}
