package domain

import "time"

// InputRecord is one collision description as supplied by a form, API call,
// stream message, or CSV row. Values are validated by Encode, not here.
type InputRecord struct {
	DayOfWeek             string  `json:"day_of_week"`
	JunctionDetail        string  `json:"junction_detail"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	LocalAuthority        string  `json:"local_authority_district"`
	LightConditions       string  `json:"light_conditions"`
	NumberOfCasualties    int     `json:"number_of_casualties"`
	NumberOfVehicles      int     `json:"number_of_vehicles"`
	RoadSurfaceConditions string  `json:"road_surface_conditions"`
	RoadType              string  `json:"road_type"`
	UrbanOrRural          string  `json:"urban_or_rural_area"`
	VehicleType           string  `json:"vehicle_type"`
}

// DefaultRecord returns the record the input form starts with: the first
// member of every enumeration and the default numeric values.
func DefaultRecord() InputRecord {
	return InputRecord{
		DayOfWeek:             Weekdays[0],
		JunctionDetail:        junctionDetails[0],
		Latitude:              latitudeDomain.Default,
		Longitude:             longitudeDomain.Default,
		LocalAuthority:        localAuthorityDistricts[0],
		LightConditions:       lightConditions[0],
		NumberOfCasualties:    int(casualtiesDomain.Default),
		NumberOfVehicles:      int(vehiclesDomain.Default),
		RoadSurfaceConditions: roadSurfaceConditions[0],
		RoadType:              roadTypes[0],
		UrbanOrRural:          urbanOrRural[0],
		VehicleType:           vehicleTypes[0],
	}
}

// FeatureCount is the length of every FeatureVector.
const FeatureCount = 13

// Positions within a FeatureVector. The classifier is positionally
// sensitive, so this order never changes.
const (
	IdxDaySin = iota
	IdxDayCos
	IdxLatitude
	IdxLongitude
	IdxNumberOfVehicles
	IdxNumberOfCasualties
	IdxJunctionDetail
	IdxLocalAuthority
	IdxLightConditions
	IdxRoadSurface
	IdxRoadType
	IdxUrbanOrRural
	IdxVehicleType
)

// FeatureNames names each FeatureVector position.
var FeatureNames = [FeatureCount]string{
	"day_sin",
	"day_cos",
	"latitude",
	"longitude",
	"number_of_vehicles",
	"number_of_casualties",
	"junction_detail_code",
	"local_authority_code",
	"light_conditions_code",
	"road_surface_code",
	"road_type_code",
	"urban_rural_code",
	"vehicle_type_code",
}

// FeatureVector is the fixed-order numeric classifier input.
type FeatureVector [FeatureCount]float64

// Severity is the thresholded classification label.
type Severity string

const (
	SeveritySlight  Severity = "Slight"
	SeveritySerious Severity = "Serious"
)

// Probabilities holds the classifier output for both classes.
type Probabilities struct {
	Slight  float64 `json:"p_slight"`
	Serious float64 `json:"p_serious"`
}

// Assessment is the result of scoring one InputRecord.
type Assessment struct {
	ID            string        `json:"id"`
	Record        InputRecord   `json:"record"`
	Features      FeatureVector `json:"features"`
	Probabilities Probabilities `json:"probabilities"`
	Threshold     float64       `json:"threshold"`
	Severity      Severity      `json:"severity"`
	AssessedAt    time.Time     `json:"assessed_at"`
}
