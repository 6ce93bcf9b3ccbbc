package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDistrict = "Aberdeen City"
	testVehicle  = "Car"
)

func validRecord() InputRecord {
	return InputRecord{
		DayOfWeek:             "Monday",
		JunctionDetail:        "Crossroads",
		Latitude:              57.187246,
		Longitude:             -2.168717,
		LocalAuthority:        testDistrict,
		LightConditions:       "Daylight",
		NumberOfCasualties:    1,
		NumberOfVehicles:      1,
		RoadSurfaceConditions: "Dry",
		RoadType:              "Single carriageway",
		UrbanOrRural:          "Urban",
		VehicleType:           testVehicle,
	}
}

func TestEncode_EndToEnd(t *testing.T) {
	v, err := Encode(validRecord())
	require.NoError(t, err)

	expected := FeatureVector{0.0, 1.0, 57.187246, -2.168717, 1, 1, 0, 0, 1, 0, 3, 0, 2}
	assert.Equal(t, expected, v)
}

func TestEncode_Deterministic(t *testing.T) {
	rec := validRecord()
	rec.DayOfWeek = "Thursday"
	rec.LocalAuthority = "York"

	v1, err := Encode(rec)
	require.NoError(t, err)
	v2, err := Encode(rec)
	require.NoError(t, err)

	for i := range v1 {
		assert.Equal(t, math.Float64bits(v1[i]), math.Float64bits(v2[i]), "position %d", i)
	}
}

func TestEncode_VectorOrder(t *testing.T) {
	rec := InputRecord{
		DayOfWeek:             "Sunday",
		JunctionDetail:        "T or staggered junction",
		Latitude:              51.5,
		Longitude:             -0.12,
		LocalAuthority:        "York",
		LightConditions:       "Darkness",
		NumberOfCasualties:    7,
		NumberOfVehicles:      3,
		RoadSurfaceConditions: "Wet or damp",
		RoadType:              "Slip road",
		UrbanOrRural:          "Rural",
		VehicleType:           "Van / Goods 3.5 tonnes mgw or under",
	}

	v, err := Encode(rec)
	require.NoError(t, err)

	assert.Len(t, v, FeatureCount)
	assert.Len(t, FeatureNames, FeatureCount)
	assert.Equal(t, 51.5, v[IdxLatitude])
	assert.Equal(t, -0.12, v[IdxLongitude])
	assert.Equal(t, 3.0, v[IdxNumberOfVehicles])
	assert.Equal(t, 7.0, v[IdxNumberOfCasualties])
	assert.Equal(t, 8.0, v[IdxJunctionDetail])
	assert.Equal(t, 417.0, v[IdxLocalAuthority])
	assert.Equal(t, 0.0, v[IdxLightConditions])
	assert.Equal(t, 4.0, v[IdxRoadSurface])
	assert.Equal(t, 4.0, v[IdxRoadType])
	assert.Equal(t, 1.0, v[IdxUrbanOrRural])
	assert.Equal(t, 14.0, v[IdxVehicleType])
	assert.Equal(t, "vehicle_type_code", FeatureNames[IdxVehicleType])
	assert.Equal(t, "day_sin", FeatureNames[IdxDaySin])
}

func TestDayAngle(t *testing.T) {
	t.Run("unit circle", func(t *testing.T) {
		for pos, day := range Weekdays {
			s, c := DayAngle(pos)
			assert.InDelta(t, 1.0, s*s+c*c, 1e-9, day)
		}
	})

	t.Run("sunday", func(t *testing.T) {
		rec := validRecord()
		rec.DayOfWeek = "Sunday"
		v, err := Encode(rec)
		require.NoError(t, err)
		assert.InDelta(t, -0.7818, v[IdxDaySin], 1e-4)
		assert.InDelta(t, 0.6235, v[IdxDayCos], 1e-4)
	})

	t.Run("sunday is adjacent to monday", func(t *testing.T) {
		ms, mc := DayAngle(0)
		ss, sc := DayAngle(6)
		ts, tc := DayAngle(3)
		sunMon := math.Hypot(ms-ss, mc-sc)
		thuMon := math.Hypot(ms-ts, mc-tc)
		assert.Less(t, sunMon, thuMon)
	})
}

func TestCategories_CodesAreDense(t *testing.T) {
	sizes := map[string]int{
		FieldDayOfWeek:             7,
		FieldJunctionDetail:        9,
		FieldLocalAuthority:        418,
		FieldLightConditions:       2,
		FieldRoadSurfaceConditions: 5,
		FieldRoadType:              5,
		FieldUrbanOrRural:          2,
		FieldVehicleType:           15,
	}

	cats := Categories()
	require.Len(t, cats, len(sizes))

	for _, c := range cats {
		t.Run(c.Field, func(t *testing.T) {
			require.Len(t, c.Members, sizes[c.Field])
			seen := make(map[int]bool, len(c.Members))
			for i, m := range c.Members {
				code, err := c.Code(m)
				require.NoError(t, err)
				assert.Equal(t, i, code, m)
				assert.False(t, seen[code], "duplicate code %d", code)
				seen[code] = true
			}
		})
	}
}

func TestCategories_ReturnsCopies(t *testing.T) {
	cats := Categories()
	cats[0].Members[0] = "Funday"

	assert.Equal(t, "Monday", Weekdays[0])
	_, err := Encode(validRecord())
	assert.NoError(t, err)
}

func TestEncode_KnownCodes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InputRecord)
		idx    int
		code   float64
	}{
		{"car", func(r *InputRecord) { r.VehicleType = testVehicle }, IdxVehicleType, 2},
		{"daylight", func(r *InputRecord) { r.LightConditions = "Daylight" }, IdxLightConditions, 1},
		{"goods 3.5t-7.5t", func(r *InputRecord) { r.VehicleType = "Goods over 3.5t. and under 7.5t" }, IdxVehicleType, 4},
		{"rural", func(r *InputRecord) { r.UrbanOrRural = "Rural" }, IdxUrbanOrRural, 1},
		{"frost", func(r *InputRecord) { r.RoadSurfaceConditions = "Frost or ice" }, IdxRoadSurface, 2},
		{"roundabout junction", func(r *InputRecord) { r.JunctionDetail = "Roundabout" }, IdxJunctionDetail, 6},
		{"one way street", func(r *InputRecord) { r.RoadType = "One way street" }, IdxRoadType, 1},
		{"birmingham", func(r *InputRecord) { r.LocalAuthority = "Birmingham" }, IdxLocalAuthority, 24},
		{"heathrow", func(r *InputRecord) { r.LocalAuthority = "London Airport (Heathrow)" }, IdxLocalAuthority, 199},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			v, err := Encode(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.code, v[tt.idx])
		})
	}
}

func TestEncode_UnknownCategory(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*InputRecord)
	}{
		{"vehicle", FieldVehicleType, func(r *InputRecord) { r.VehicleType = "Spaceship" }},
		{"weekday", FieldDayOfWeek, func(r *InputRecord) { r.DayOfWeek = "Caturday" }},
		{"lowercase weekday", FieldDayOfWeek, func(r *InputRecord) { r.DayOfWeek = "monday" }},
		{"junction", FieldJunctionDetail, func(r *InputRecord) { r.JunctionDetail = "" }},
		{"district", FieldLocalAuthority, func(r *InputRecord) { r.LocalAuthority = "Atlantis" }},
		{"light", FieldLightConditions, func(r *InputRecord) { r.LightConditions = "Dusk" }},
		{"surface", FieldRoadSurfaceConditions, func(r *InputRecord) { r.RoadSurfaceConditions = "Lava" }},
		{"road type", FieldRoadType, func(r *InputRecord) { r.RoadType = "Motorway" }},
		{"area", FieldUrbanOrRural, func(r *InputRecord) { r.UrbanOrRural = "Suburban" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			v, err := Encode(rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownCategory)
			assert.NotErrorIs(t, err, ErrOutOfRange)
			assert.Equal(t, FeatureVector{}, v)

			var ce *CategoryError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.Equal(t, tt.field, ErrorField(err))
			assert.Equal(t, "unknown_category", ErrorKind(err))
		})
	}
}

func TestEncode_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*InputRecord)
	}{
		{"latitude below", FieldLatitude, func(r *InputRecord) { r.Latitude = 49.0 }},
		{"latitude above", FieldLatitude, func(r *InputRecord) { r.Latitude = 60.6 }},
		{"latitude NaN", FieldLatitude, func(r *InputRecord) { r.Latitude = math.NaN() }},
		{"longitude below", FieldLongitude, func(r *InputRecord) { r.Longitude = -8 }},
		{"longitude above", FieldLongitude, func(r *InputRecord) { r.Longitude = 1.76 }},
		{"no vehicles", FieldNumberOfVehicles, func(r *InputRecord) { r.NumberOfVehicles = 0 }},
		{"too many vehicles", FieldNumberOfVehicles, func(r *InputRecord) { r.NumberOfVehicles = 9 }},
		{"no casualties", FieldNumberOfCasualties, func(r *InputRecord) { r.NumberOfCasualties = 0 }},
		{"too many casualties", FieldNumberOfCasualties, func(r *InputRecord) { r.NumberOfCasualties = 11 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			_, err := Encode(rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrOutOfRange)

			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
			assert.Equal(t, "out_of_range", ErrorKind(err))
		})
	}
}

func TestEncode_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InputRecord)
	}{
		{"latitude min", func(r *InputRecord) { r.Latitude = 49.914488 }},
		{"latitude max", func(r *InputRecord) { r.Latitude = 60.598055 }},
		{"longitude min", func(r *InputRecord) { r.Longitude = -7.516225 }},
		{"longitude max", func(r *InputRecord) { r.Longitude = 1.759398 }},
		{"vehicles max", func(r *InputRecord) { r.NumberOfVehicles = 8 }},
		{"casualties max", func(r *InputRecord) { r.NumberOfCasualties = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			_, err := Encode(rec)
			assert.NoError(t, err)
		})
	}
}

func TestEncode_FirstFailureInVectorOrder(t *testing.T) {
	rec := validRecord()
	rec.Latitude = 0
	rec.VehicleType = "Spaceship"

	_, err := Encode(rec)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, FieldLatitude, ErrorField(err))
}

func TestErrorMessages(t *testing.T) {
	ce := &CategoryError{Field: FieldVehicleType, Value: "Spaceship"}
	assert.Equal(t, `vehicle_type: unknown category "Spaceship"`, ce.Error())

	re := &RangeError{Field: FieldLatitude, Value: 49, Min: 49.914488, Max: 60.598055}
	assert.Equal(t, "latitude: 49 out of range [49.914488, 60.598055]", re.Error())

	assert.Empty(t, ErrorKind(errors.New("other")))
	assert.Empty(t, ErrorField(errors.New("other")))
}

func TestDefaultRecord_Encodes(t *testing.T) {
	rec := DefaultRecord()
	v, err := Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, 57.187246, v[IdxLatitude])
	assert.Equal(t, -2.168717, v[IdxLongitude])
	assert.Equal(t, "Monday", rec.DayOfWeek)
}

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, ValidateCoordinates(57.187246, -2.168717))
	require.NoError(t, ValidateCoordinates(49.914488, 1.759398))

	err := ValidateCoordinates(48.85, 2.35)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, FieldLatitude, ErrorField(err))

	err = ValidateCoordinates(51.5, -8)
	require.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, FieldLongitude, ErrorField(err))
}
