// Package domain models UK road-traffic collision descriptors and their
// encoding into the classifier feature vector.
//
// # Data Source
//
// Field names and categories follow the Department for Transport STATS19
// collision dataset the severity model was trained on. Every categorical
// field is a closed enumeration; the integer code of a member is its
// position in the alphabetically ordered table used during training (see
// categories.go). Unknown members are rejected, never defaulted.
//
// # Feature Vector
//
// The classifier consumes 13 float64 values in a fixed order:
//
//	 0 day_sin                 sin(2π·pos/7), pos = Monday..Sunday as 0..6
//	 1 day_cos                 cos(2π·pos/7)
//	 2 latitude                [49.914488, 60.598055]
//	 3 longitude               [-7.516225, 1.759398]
//	 4 number_of_vehicles      [1, 8]
//	 5 number_of_casualties    [1, 10]
//	 6 junction_detail_code    9 members
//	 7 local_authority_code    418 members
//	 8 light_conditions_code   Darkness=0, Daylight=1
//	 9 road_surface_code       5 members
//	10 road_type_code          5 members
//	11 urban_rural_code        Urban=0, Rural=1
//	12 vehicle_type_code       15 members
//
// The weekday is encoded cyclically so Sunday and Monday are neighbours
// rather than six units apart.
//
// # Severity
//
// The model returns (p_slight, p_serious). A collision is labeled Serious
// when p_serious >= threshold (0.55 unless configured otherwise), Slight
// otherwise. The threshold is a business rule, not a model property.
package domain
