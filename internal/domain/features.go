package domain

// Weather condition classifications derived from the numeric weather code.
const (
	ConditionRain = "Rain"
	ConditionFog  = "Fog"
	ConditionSnow = "Snow"
	ConditionDry  = "Dry"
)

// Area classifications from the place lookup.
const (
	AreaUrban = "Urban"
	AreaRural = "Rural"
)

// Lighting classifications derived from hour of day and road lighting.
const (
	LightingDaylight   = "Daylight"
	LightingArtificial = "Artificial light"
	LightingDarkness   = "Darkness"
)

// WeatherFeatures is the weather extractor's contribution to a FeatureRecord.
type WeatherFeatures struct {
	Temperature      float64 `json:"temperature"`
	Precipitation    float64 `json:"precipitation"`
	WindSpeed        float64 `json:"wind_speed"`
	WeatherCode      int     `json:"weather_code"`
	WeatherCondition string  `json:"weather_condition"`
	IsWet            bool    `json:"is_wet"`
}

// RoadFeatures is the road extractor's contribution to a FeatureRecord.
// Lit is always one of "yes", "no", or "unknown".
type RoadFeatures struct {
	SpeedLimit int    `json:"speed_limit"`
	RoadType   string `json:"road_type"`
	Lanes      int    `json:"lanes"`
	Surface    string `json:"surface"`
	Lit        string `json:"lit"`
}

// TemporalFeatures is the temporal extractor's contribution to a
// FeatureRecord. DayOfWeek uses the training set's convention: Monday=0
// through Sunday=6.
type TemporalFeatures struct {
	Hour       int    `json:"hour"`
	DayOfWeek  int    `json:"day_of_week"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	IsWeekend  bool   `json:"is_weekend"`
	IsRushHour bool   `json:"is_rush_hour"`
	IsNight    bool   `json:"is_night"`
	Season     string `json:"season"`
	TimePeriod string `json:"time_period"`
}

// FeatureRecord is the complete engineered feature set for one
// (location, time, incident) triple. The extractor contributions are
// embedded so their field namespaces stay disjoint by construction; the
// engine-level fields follow. Produced fresh per engineering call and never
// partially populated.
type FeatureRecord struct {
	WeatherFeatures
	RoadFeatures
	TemporalFeatures

	AreaType   string  `json:"area_type"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	PartyCount int     `json:"aantal_partijen"`
	Lighting   string  `json:"lichtgesteldheid"`
}

// DefaultWeather is the fixed profile substituted when the weather
// collaborator fails or a response field is missing.
func DefaultWeather() WeatherFeatures {
	return WeatherFeatures{
		Temperature:      10,
		Precipitation:    0,
		WindSpeed:        10,
		WeatherCode:      1,
		WeatherCondition: ConditionDry,
		IsWet:            false,
	}
}

// DefaultRoad is the fixed profile substituted when the road collaborator
// fails or returns no highway ways.
func DefaultRoad() RoadFeatures {
	return RoadFeatures{
		SpeedLimit: 50,
		RoadType:   "residential",
		Lanes:      2,
		Surface:    "asphalt",
		Lit:        "unknown",
	}
}
