package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

var scoreCSVCmd = &cobra.Command{
	Use:   "score-csv",
	Short: "Score a CSV of collision records and write JSON lines",
	Long: `Reads a CSV whose header row names the input fields (day_of_week,
latitude, vehicle_type, ...) in any order. Each valid row is written as one
JSON assessment per line. Rejected rows are reported on stderr with their row
number and the command exits non-zero when any row is rejected.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		clf, threshold, err := loadClassifier(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		inPath, _ := cmd.Flags().GetString("in")
		in, err := openInput(cmd, inPath)
		if err != nil {
			return err
		}
		defer in.Close()

		out := cmd.OutOrStdout()
		if outPath, _ := cmd.Flags().GetString("out"); outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		stats, err := scoreCSV(in, out, cmd.ErrOrStderr(), clf, threshold)
		if err != nil {
			return err
		}
		logger(cmd).Info("scored csv", "scored", stats.scored, "rejected", stats.rejected)
		if stats.rejected > 0 {
			return fmt.Errorf("%d of %d rows rejected", stats.rejected, stats.scored+stats.rejected)
		}
		return nil
	},
}

func init() {
	addModelFlags(scoreCSVCmd)
	scoreCSVCmd.Flags().String("in", "", "Input CSV file (default stdin)")
	scoreCSVCmd.Flags().String("out", "", "Output JSON lines file (default stdout)")
}

var csvFields = []string{
	domain.FieldDayOfWeek,
	domain.FieldJunctionDetail,
	domain.FieldLatitude,
	domain.FieldLongitude,
	domain.FieldLocalAuthority,
	domain.FieldLightConditions,
	domain.FieldNumberOfCasualties,
	domain.FieldNumberOfVehicles,
	domain.FieldRoadSurfaceConditions,
	domain.FieldRoadType,
	domain.FieldUrbanOrRural,
	domain.FieldVehicleType,
}

type csvStats struct {
	scored   int
	rejected int
}

// scoreCSV streams rows from r, writing assessments to w and row errors to
// errW. Only header and I/O failures abort the run.
func scoreCSV(r io.Reader, w, errW io.Writer, clf domain.Classifier, threshold float64) (csvStats, error) {
	var stats csvStats

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}
	columns, err := headerIndex(header)
	if err != nil {
		return stats, err
	}

	enc := json.NewEncoder(w)
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.rejected++
				fmt.Fprintf(errW, "row %d: %v\n", row, err)
				continue
			}
			return stats, fmt.Errorf("read csv: %w", err)
		}

		a, err := scoreRow(columns, fields, clf, threshold)
		if err != nil {
			stats.rejected++
			fmt.Fprintf(errW, "row %d: %v\n", row, err)
			continue
		}
		if err := enc.Encode(a); err != nil {
			return stats, fmt.Errorf("write assessment: %w", err)
		}
		stats.scored++
	}
}

func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, f := range csvFields {
		if _, ok := columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func scoreRow(columns map[string]int, fields []string, clf domain.Classifier, threshold float64) (domain.Assessment, error) {
	rec, err := recordFromRow(columns, fields)
	if err != nil {
		return domain.Assessment{}, err
	}
	return domain.Assess(rec, clf, threshold)
}

func recordFromRow(columns map[string]int, fields []string) (domain.InputRecord, error) {
	get := func(name string) string {
		i := columns[name]
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	lat, err := parseFloat(domain.FieldLatitude, get(domain.FieldLatitude))
	if err != nil {
		return domain.InputRecord{}, err
	}
	lon, err := parseFloat(domain.FieldLongitude, get(domain.FieldLongitude))
	if err != nil {
		return domain.InputRecord{}, err
	}
	casualties, err := parseInt(domain.FieldNumberOfCasualties, get(domain.FieldNumberOfCasualties))
	if err != nil {
		return domain.InputRecord{}, err
	}
	vehicles, err := parseInt(domain.FieldNumberOfVehicles, get(domain.FieldNumberOfVehicles))
	if err != nil {
		return domain.InputRecord{}, err
	}

	return domain.InputRecord{
		DayOfWeek:             get(domain.FieldDayOfWeek),
		JunctionDetail:        get(domain.FieldJunctionDetail),
		Latitude:              lat,
		Longitude:             lon,
		LocalAuthority:        get(domain.FieldLocalAuthority),
		LightConditions:       get(domain.FieldLightConditions),
		NumberOfCasualties:    casualties,
		NumberOfVehicles:      vehicles,
		RoadSurfaceConditions: get(domain.FieldRoadSurfaceConditions),
		RoadType:              get(domain.FieldRoadType),
		UrbanOrRural:          get(domain.FieldUrbanOrRural),
		VehicleType:           get(domain.FieldVehicleType),
	}, nil
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", domain.ErrMalformedInput, field, s)
	}
	return v, nil
}

func parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", domain.ErrMalformedInput, field, s)
	}
	return v, nil
}
