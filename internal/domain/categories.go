package domain

// Field names as they appear in JSON records, CSV headers, and error messages.
const (
	FieldDayOfWeek             = "day_of_week"
	FieldJunctionDetail        = "junction_detail"
	FieldLatitude              = "latitude"
	FieldLongitude             = "longitude"
	FieldLocalAuthority        = "local_authority_district"
	FieldLightConditions       = "light_conditions"
	FieldNumberOfCasualties    = "number_of_casualties"
	FieldNumberOfVehicles      = "number_of_vehicles"
	FieldRoadSurfaceConditions = "road_surface_conditions"
	FieldRoadType              = "road_type"
	FieldUrbanOrRural          = "urban_or_rural_area"
	FieldVehicleType           = "vehicle_type"
)

// Weekdays is the canonical weekday order used by the cyclical encoding.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// The categorical tables below list members in code order: a member's code is
// its index. They match the encodings the classifier was trained with.

var junctionDetails = []string{
	"Crossroads",
	"Mini-roundabout",
	"More than 4 arms (not roundabout)",
	"Not at junction or within 20 metres",
	"Other junction",
	"Private drive or entrance",
	"Roundabout",
	"Slip road",
	"T or staggered junction",
}

var lightConditions = []string{"Darkness", "Daylight"}

var roadSurfaceConditions = []string{"Dry", "Flood over 3cm. deep", "Frost or ice", "Snow", "Wet or damp"}

var roadTypes = []string{"Dual carriageway", "One way street", "Roundabout", "Single carriageway", "Slip road"}

var urbanOrRural = []string{"Urban", "Rural"}

var vehicleTypes = []string{
	"Agricultural vehicle",
	"Bus or coach (17 or more pass seats)",
	"Car",
	"Goods 7.5 tonnes mgw and over",
	"Goods over 3.5t. and under 7.5t",
	"Minibus(8 - 16 passenger seats)",
	"Motorcycle 125cc and under",
	"Motorcycle 50cc and under",
	"Motorcycle over 125cc and up to 500cc",
	"Motorcycle over 500cc",
	"Other vehicle",
	"Pedal cycle",
	"Ridden horse",
	"Taxi/Private hire car",
	"Van / Goods 3.5 tonnes mgw or under",
}

// localAuthorityDistricts holds the 418 STATS19 local authority districts.
var localAuthorityDistricts = []string{
	"Aberdeen City", "Aberdeenshire", "Adur", "Allerdale", "Alnwick", "Amber Valley", "Angus",
	"Argyll and Bute", "Arun", "Ashfield", "Ashford", "Aylesbury Vale", "Babergh",
	"Barking and Dagenham", "Barnet", "Barnsley", "Barrow-in-Furness", "Basildon",
	"Basingstoke and Deane", "Bassetlaw", "Bath and North East Somerset", "Bedford",
	"Berwick-upon-Tweed", "Bexley", "Birmingham", "Blaby", "Blackburn with Darwen", "Blackpool",
	"Blaenau Gwent", "Blyth Valley", "Bolsover", "Bolton", "Boston", "Bournemouth",
	"Bracknell Forest", "Bradford", "Braintree", "Breckland", "Brent", "Brentwood", "Bridgend",
	"Bridgnorth", "Brighton and Hove", "Bristol, City of", "Broadland", "Bromley", "Bromsgrove",
	"Broxbourne", "Broxtowe", "Burnley", "Bury", "Caerphilly", "Calderdale", "Cambridge", "Camden",
	"Cannock Chase", "Canterbury", "Caradon", "Cardiff", "Carlisle", "Carmarthenshire", "Carrick",
	"Castle Morpeth", "Castle Point", "Central Bedfordshire", "Ceredigion", "Charnwood", "Chelmsford",
	"Cheltenham", "Cherwell", "Cheshire East", "Cheshire West and Chester", "Chester",
	"Chester-le-Street", "Chesterfield", "Chichester", "Chiltern", "Chorley", "Christchurch",
	"City of London", "Clackmannanshire", "Colchester", "Congleton", "Conwy", "Copeland", "Corby",
	"Cornwall", "Cotswold", "County Durham", "Coventry", "Craven", "Crawley", "Crewe and Nantwich",
	"Croydon", "Dacorum", "Darlington", "Dartford", "Daventry", "Denbighshire", "Derby",
	"Derbyshire Dales", "Derwentside", "Doncaster", "Dover", "Dudley", "Dumfries and Galloway",
	"Dundee City", "Durham", "Ealing", "Easington", "East Ayrshire", "East Cambridgeshire",
	"East Devon", "East Dorset", "East Dunbartonshire", "East Hampshire", "East Hertfordshire",
	"East Lindsey", "East Lothian", "East Northamptonshire", "East Renfrewshire",
	"East Riding of Yorkshire", "East Staffordshire", "Eastbourne", "Eastleigh", "Eden",
	"Edinburgh, City of", "Ellesmere Port and Neston", "Elmbridge", "Enfield", "Epping Forest",
	"Epsom and Ewell", "Erewash", "Exeter", "Falkirk", "Fareham", "Fenland", "Fife", "Flintshire",
	"Forest Heath", "Forest of Dean", "Fylde", "Gateshead", "Gedling", "Glasgow City", "Gloucester",
	"Gosport", "Gravesham", "Great Yarmouth", "Greenwich", "Guildford", "Gwynedd", "Hackney",
	"Halton", "Hambleton", "Hammersmith and Fulham", "Harborough", "Haringey", "Harlow", "Harrogate",
	"Harrow", "Hart", "Hartlepool", "Hastings", "Havant", "Havering", "Herefordshire, County of",
	"Hertsmere", "High Peak", "Highland", "Hillingdon", "Hinckley and Bosworth", "Horsham",
	"Hounslow", "Huntingdonshire", "Hyndburn", "Inverclyde", "Ipswich", "Isle of Anglesey",
	"Isle of Wight", "Islington", "Kennet", "Kensington and Chelsea", "Kerrier", "Kettering",
	"Kings Lynn and West Norfolk", "Kingston upon Hull, City of", "Kingston upon Thames", "Kirklees",
	"Knowsley", "Lambeth", "Lancaster", "Leeds", "Leicester", "Lewes", "Lewisham", "Lichfield",
	"Lincoln", "Liverpool", "London Airport (Heathrow)", "Luton", "Macclesfield", "Maidstone",
	"Maldon", "Malvern Hills", "Manchester", "Mansfield", "Medway", "Melton", "Mendip",
	"Merthyr Tydfil", "Merton", "Mid Bedfordshire", "Mid Devon", "Mid Suffolk", "Mid Sussex",
	"Middlesbrough", "Midlothian", "Milton Keynes", "Mole Valley", "Monmouthshire", "Moray",
	"Neath Port Talbot", "New Forest", "Newark and Sherwood", "Newcastle upon Tyne",
	"Newcastle-under-Lyme", "Newham", "Newport", "North Ayrshire", "North Cornwall", "North Devon",
	"North Dorset", "North East Derbyshire", "North East Lincolnshire", "North Hertfordshire",
	"North Kesteven", "North Lanarkshire", "North Larkshire", "North Lincolnshire", "North Norfolk",
	"North Shropshire", "North Somerset", "North Tyneside", "North Warwickshire",
	"North West Leicestershire", "North Wiltshire", "Northampton", "Northumberland", "Norwich",
	"Nottingham", "Nuneaton and Bedworth", "Oadby and Wigston", "Oldham", "Orkney Islands",
	"Oswestry", "Oxford", "Pembrokeshire", "Pendle", "Penwith", "Perth and Kinross", "Peterborough",
	"Plymouth", "Poole", "Portsmouth", "Powys", "Preston", "Purbeck", "Reading", "Redbridge",
	"Redcar and Cleveland", "Redditch", "Reigate and Banstead", "Renfrewshire", "Restormel",
	"Rhondda, Cynon, Taff", "Ribble Valley", "Richmond upon Thames", "Richmondshire", "Rochdale",
	"Rochford", "Rossendale", "Rother", "Rotherham", "Rugby", "Runnymede", "Rushcliffe", "Rushmoor",
	"Rutland", "Ryedale", "Salford", "Salisbury", "Sandwell", "Scarborough", "Scottish Borders",
	"Sedgefield", "Sedgemoor", "Sefton", "Selby", "Sevenoaks", "Sheffield", "Shepway",
	"Shetland Islands", "Shrewsbury and Atcham", "Shropshire", "Slough", "Solihull", "South Ayrshire",
	"South Bedfordshire", "South Bucks", "South Cambridgeshire", "South Derbyshire",
	"South Gloucestershire", "South Hams", "South Holland", "South Kesteven", "South Lakeland",
	"South Lanarkshire", "South Larkshire", "South Norfolk", "South Northamptonshire",
	"South Oxfordshire", "South Ribble", "South Shropshire", "South Somerset", "South Staffordshire",
	"South Tyneside", "Southampton", "Southend-on-Sea", "Southwark", "Spelthorne", "St. Albans",
	"St. Edmundsbury", "St. Helens", "Stafford", "Staffordshire Moorlands", "Stevenage", "Stirling",
	"Stockport", "Stockton-on-Tees", "Stoke-on-Trent", "Stratford-upon-Avon", "Stroud",
	"Suffolk Coastal", "Sunderland", "Surrey Heath", "Sutton", "Swale", "Swansea", "Swindon",
	"Tameside", "Tamworth", "Tandridge", "Taunton Deane", "Teesdale", "Teignbridge",
	"Telford and Wrekin", "Tendring", "Test Valley", "Tewkesbury", "Thanet", "The Vale of Glamorgan",
	"Three Rivers", "Thurrock", "Tonbridge and Malling", "Torbay", "Torfaen", "Torridge",
	"Tower Hamlets", "Trafford", "Tunbridge Wells", "Tynedale", "Uttlesford", "Vale Royal",
	"Vale of White Horse", "Wakefield", "Walsall", "Waltham Forest", "Wandsworth", "Wansbeck",
	"Warrington", "Warwick", "Watford", "Waveney", "Waverley", "Wealden", "Wear Valley",
	"Wellingborough", "Welwyn Hatfield", "West Berkshire", "West Devon", "West Dorset",
	"West Dunbartonshire", "West Lancashire", "West Lindsey", "West Lothian", "West Oxfordshire",
	"West Somerset", "West Wiltshire", "Western Isles", "Westminster", "Weymouth and Portland",
	"Wigan", "Wiltshire", "Winchester", "Windsor and Maidenhead", "Wirral", "Woking", "Wokingham",
	"Wolverhampton", "Worcester", "Worthing", "Wrexham", "Wychavon", "Wycombe", "Wyre", "Wyre Forest",
	"York",
}

// Category is a closed enumeration with a fixed member-to-code table.
type Category struct {
	Field   string   `json:"field"`
	Members []string `json:"members"`
	codes   map[string]int
}

func newCategory(field string, members []string) *Category {
	codes := make(map[string]int, len(members))
	for i, m := range members {
		codes[m] = i
	}
	return &Category{Field: field, Members: members, codes: codes}
}

// Code returns the integer code for value, or a *CategoryError when value is
// not a member.
func (c *Category) Code(value string) (int, error) {
	code, ok := c.codes[value]
	if !ok {
		return 0, &CategoryError{Field: c.Field, Value: value}
	}
	return code, nil
}

// Contains reports whether value is a member.
func (c *Category) Contains(value string) bool {
	_, ok := c.codes[value]
	return ok
}

var (
	dayOfWeekCategory       = newCategory(FieldDayOfWeek, Weekdays)
	junctionDetailCategory  = newCategory(FieldJunctionDetail, junctionDetails)
	localAuthorityCategory  = newCategory(FieldLocalAuthority, localAuthorityDistricts)
	lightConditionsCategory = newCategory(FieldLightConditions, lightConditions)
	roadSurfaceCategory     = newCategory(FieldRoadSurfaceConditions, roadSurfaceConditions)
	roadTypeCategory        = newCategory(FieldRoadType, roadTypes)
	urbanOrRuralCategory    = newCategory(FieldUrbanOrRural, urbanOrRural)
	vehicleTypeCategory     = newCategory(FieldVehicleType, vehicleTypes)
)

// Categories returns every categorical field in input-form order. Member
// lists are copies; the code tables are shared and read-only.
func Categories() []Category {
	all := []*Category{
		dayOfWeekCategory,
		junctionDetailCategory,
		localAuthorityCategory,
		lightConditionsCategory,
		roadSurfaceCategory,
		roadTypeCategory,
		urbanOrRuralCategory,
		vehicleTypeCategory,
	}
	out := make([]Category, len(all))
	for i, c := range all {
		out[i] = Category{Field: c.Field, Members: append([]string(nil), c.Members...), codes: c.codes}
	}
	return out
}

// NumericDomain is the closed interval a numeric field must fall in.
type NumericDomain struct {
	Field   string  `json:"field"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Integer bool    `json:"integer"`
	Default float64 `json:"default"`
}

// Contains reports whether v lies in [Min, Max]. NaN is never contained.
func (d NumericDomain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

var (
	latitudeDomain   = NumericDomain{Field: FieldLatitude, Min: 49.914488, Max: 60.598055, Default: 57.187246}
	longitudeDomain  = NumericDomain{Field: FieldLongitude, Min: -7.516225, Max: 1.759398, Default: -2.168717}
	vehiclesDomain   = NumericDomain{Field: FieldNumberOfVehicles, Min: 1, Max: 8, Integer: true, Default: 1}
	casualtiesDomain = NumericDomain{Field: FieldNumberOfCasualties, Min: 1, Max: 10, Integer: true, Default: 1}
)

// NumericDomains returns the numeric field domains in input-form order.
func NumericDomains() []NumericDomain {
	return []NumericDomain{latitudeDomain, longitudeDomain, casualtiesDomain, vehiclesDomain}
}
