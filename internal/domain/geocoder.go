package domain

import (
	"context"
	"strings"
)

// GeocodingResult contains place data returned by a reverse geocoding provider.
type GeocodingResult struct {
	PlaceName        string
	FormattedAddress string
	// Areas lists the names of enclosing administrative areas, innermost first.
	Areas      []string
	Confidence float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves coordinates to place details.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// SuggestDistrict returns the first local authority district matching the
// geocoding result's place or enclosing areas, or false when none match.
// Matching ignores case and also tries the "X, City of" spelling used by
// STATS19 for names reported as "City of X".
func SuggestDistrict(result GeocodingResult) (string, bool) {
	candidates := make([]string, 0, len(result.Areas)+1)
	candidates = append(candidates, result.PlaceName)
	candidates = append(candidates, result.Areas...)

	for _, c := range candidates {
		if d, ok := lookupDistrict(c); ok {
			return d, true
		}
	}
	return "", false
}

func lookupDistrict(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if rest, ok := strings.CutPrefix(name, "City of "); ok {
		if d, ok := districtsByFold[strings.ToLower(rest+", City of")]; ok {
			return d, true
		}
	}
	d, ok := districtsByFold[strings.ToLower(name)]
	return d, ok
}

var districtsByFold = func() map[string]string {
	m := make(map[string]string, len(localAuthorityDistricts))
	for _, d := range localAuthorityDistricts {
		m[strings.ToLower(d)] = d
	}
	return m
}()
