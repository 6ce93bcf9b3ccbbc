package domain

import "math"

// DayAngle returns the cyclical (sin, cos) encoding of a zero-based weekday
// position, placing Sunday next to Monday on the unit circle.
func DayAngle(pos int) (sin, cos float64) {
	angle := 2 * math.Pi * float64(pos) / float64(len(Weekdays))
	return math.Sin(angle), math.Cos(angle)
}

// Encode validates rec and maps it to the classifier's feature vector.
// Fields are checked in vector order and the first failure is returned as a
// *CategoryError or *RangeError. Encode has no side effects.
func Encode(rec InputRecord) (FeatureVector, error) {
	var v FeatureVector

	pos, err := dayOfWeekCategory.Code(rec.DayOfWeek)
	if err != nil {
		return FeatureVector{}, err
	}
	v[IdxDaySin], v[IdxDayCos] = DayAngle(pos)

	numeric := []struct {
		idx    int
		domain NumericDomain
		value  float64
	}{
		{IdxLatitude, latitudeDomain, rec.Latitude},
		{IdxLongitude, longitudeDomain, rec.Longitude},
		{IdxNumberOfVehicles, vehiclesDomain, float64(rec.NumberOfVehicles)},
		{IdxNumberOfCasualties, casualtiesDomain, float64(rec.NumberOfCasualties)},
	}
	for _, n := range numeric {
		if !n.domain.Contains(n.value) {
			return FeatureVector{}, &RangeError{Field: n.domain.Field, Value: n.value, Min: n.domain.Min, Max: n.domain.Max}
		}
		v[n.idx] = n.value
	}

	categorical := []struct {
		idx      int
		category *Category
		value    string
	}{
		{IdxJunctionDetail, junctionDetailCategory, rec.JunctionDetail},
		{IdxLocalAuthority, localAuthorityCategory, rec.LocalAuthority},
		{IdxLightConditions, lightConditionsCategory, rec.LightConditions},
		{IdxRoadSurface, roadSurfaceCategory, rec.RoadSurfaceConditions},
		{IdxRoadType, roadTypeCategory, rec.RoadType},
		{IdxUrbanOrRural, urbanOrRuralCategory, rec.UrbanOrRural},
		{IdxVehicleType, vehicleTypeCategory, rec.VehicleType},
	}
	for _, c := range categorical {
		code, err := c.category.Code(c.value)
		if err != nil {
			return FeatureVector{}, err
		}
		v[c.idx] = float64(code)
	}

	return v, nil
}

// ValidateCoordinates checks a latitude/longitude pair against the Great
// Britain bounding box used by the encoder.
func ValidateCoordinates(lat, lon float64) error {
	for _, c := range []struct {
		domain NumericDomain
		value  float64
	}{{latitudeDomain, lat}, {longitudeDomain, lon}} {
		if !c.domain.Contains(c.value) {
			return &RangeError{Field: c.domain.Field, Value: c.value, Min: c.domain.Min, Max: c.domain.Max}
		}
	}
	return nil
}
