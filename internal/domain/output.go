package domain

import (
	"fmt"
	"time"
)

// EnrichedIncident is the aggregated output record produced per unique
// incident: metadata, location analysis, environmental conditions, the risk
// assessment, a flattened ML-ready subset, and the complete feature set.
type EnrichedIncident struct {
	Metadata    IncidentMetadata        `json:"incident_metadata"`
	Location    LocationAnalysis        `json:"location_analysis"`
	Environment EnvironmentalConditions `json:"environmental_conditions"`
	Risk        RiskReport              `json:"risk_assessment"`
	MLFeatures  MLFeatures              `json:"ml_ready_features"`
	Features    FeatureRecord           `json:"complete_feature_set"`
	ProcessedAt time.Time               `json:"processed_at"`
}

// IncidentMetadata identifies the source report.
type IncidentMetadata struct {
	IncidentID     string `json:"incident_id"`
	RunID          string `json:"run_id,omitempty"`
	SourceRegion   int    `json:"source_region"`
	CoordsDisplay  string `json:"coordinates_display"`
	Timestamp      string `json:"timestamp,omitempty"`
	GeometryType   string `json:"geometry_type"`
	GeometryPoints int    `json:"geometry_points"`
}

// LocationAnalysis groups the spatial view of the incident.
type LocationAnalysis struct {
	Coordinates        Coordinates        `json:"coordinates"`
	AreaClassification string             `json:"area_classification"`
	Region             string             `json:"region"`
	RoadInfrastructure RoadInfrastructure `json:"road_infrastructure"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RoadInfrastructure is the road view on the output record.
type RoadInfrastructure struct {
	RoadType          string `json:"road_type"`
	SpeedLimitKMH     int    `json:"speed_limit_kmh"`
	Lanes             int    `json:"lanes"`
	SurfaceType       string `json:"surface_type"`
	LightingAvailable string `json:"lighting_available"`
}

// EnvironmentalConditions groups weather and temporal context.
type EnvironmentalConditions struct {
	Weather  WeatherConditions  `json:"weather"`
	Temporal TemporalConditions `json:"temporal"`
}

// WeatherConditions is the weather view on the output record.
type WeatherConditions struct {
	Condition          string  `json:"condition"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	PrecipitationMM    float64 `json:"precipitation_mm"`
	WindSpeedKMH       float64 `json:"wind_speed_kmh"`
	WeatherCode        int     `json:"weather_code"`
	IsWetConditions    bool    `json:"is_wet_conditions"`
}

// TemporalConditions is the calendar/time-of-day view on the output record.
type TemporalConditions struct {
	Hour        int    `json:"hour"`
	DayOfWeek   int    `json:"day_of_week"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Season      string `json:"season"`
	TimePeriod  string `json:"time_period"`
	IsWeekend   bool   `json:"is_weekend"`
	IsRushHour  bool   `json:"is_rush_hour"`
	IsNightTime bool   `json:"is_night_time"`
}

// RiskReport is the risk_assessment block: the composite assessment plus the
// party estimate and lighting classification it was computed with.
type RiskReport struct {
	Score            float64     `json:"overall_risk_score"`
	Level            string      `json:"risk_level"`
	EstimatedParties int         `json:"estimated_parties_involved"`
	Lighting         string      `json:"lighting_conditions"`
	Factors          RiskFactors `json:"risk_factors"`
}

// MLFeatures is the flattened subset consumed directly by the downstream
// model. Field names are the training set's column names.
type MLFeatures struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	PartyCount       int     `json:"aantal_partijen"`
	Year             int     `json:"jaar"`
	SpeedLimit       int     `json:"snelheid"`
	AreaType         string  `json:"gebied"`
	Lighting         string  `json:"lichtgesteldheid"`
	RoadType         string  `json:"wegsoort"`
	WeatherCondition string  `json:"weather_condition"`
	Temperature      float64 `json:"temperature"`
	IsWeekend        bool    `json:"is_weekend"`
	IsRushHour       bool    `json:"is_rush_hour"`
}

// BuildRecord assembles the output record for one unique incident from its
// engineered features and risk assessment.
func BuildRecord(incident Incident, features FeatureRecord, risk RiskAssessment, runID string) EnrichedIncident {
	incidentID := incident.Properties.ID
	if incidentID == "" {
		incidentID = fmt.Sprintf("incident_%.4f_%.4f", features.Lat, features.Lon)
	}

	return EnrichedIncident{
		Metadata: IncidentMetadata{
			IncidentID:     incidentID,
			RunID:          runID,
			SourceRegion:   incident.SourceRegion,
			CoordsDisplay:  fmt.Sprintf("%.4fN, %.4fE", features.Lat, features.Lon),
			Timestamp:      incident.Properties.StartTime,
			GeometryType:   incident.Geometry.Type,
			GeometryPoints: incident.Geometry.PointCount(),
		},
		Location: LocationAnalysis{
			Coordinates:        Coordinates{Latitude: features.Lat, Longitude: features.Lon},
			AreaClassification: features.AreaType,
			Region:             IdentifyRegion(features.Lat, features.Lon),
			RoadInfrastructure: RoadInfrastructure{
				RoadType:          features.RoadType,
				SpeedLimitKMH:     features.SpeedLimit,
				Lanes:             features.Lanes,
				SurfaceType:       features.Surface,
				LightingAvailable: features.Lit,
			},
		},
		Environment: EnvironmentalConditions{
			Weather: WeatherConditions{
				Condition:          features.WeatherCondition,
				TemperatureCelsius: features.Temperature,
				PrecipitationMM:    features.Precipitation,
				WindSpeedKMH:       features.WindSpeed,
				WeatherCode:        features.WeatherCode,
				IsWetConditions:    features.IsWet,
			},
			Temporal: TemporalConditions{
				Hour:        features.Hour,
				DayOfWeek:   features.DayOfWeek,
				Month:       features.Month,
				Year:        features.Year,
				Season:      features.Season,
				TimePeriod:  features.TimePeriod,
				IsWeekend:   features.IsWeekend,
				IsRushHour:  features.IsRushHour,
				IsNightTime: features.IsNight,
			},
		},
		Risk: RiskReport{
			Score:            risk.Score,
			Level:            risk.Level,
			EstimatedParties: features.PartyCount,
			Lighting:         features.Lighting,
			Factors:          risk.Factors,
		},
		MLFeatures: MLFeatures{
			Lat:              features.Lat,
			Lon:              features.Lon,
			PartyCount:       features.PartyCount,
			Year:             features.Year,
			SpeedLimit:       features.SpeedLimit,
			AreaType:         features.AreaType,
			Lighting:         features.Lighting,
			RoadType:         features.RoadType,
			WeatherCondition: features.WeatherCondition,
			Temperature:      features.Temperature,
			IsWeekend:        features.IsWeekend,
			IsRushHour:       features.IsRushHour,
		},
		Features:    features,
		ProcessedAt: clock.Now(),
	}
}

// IdentifyRegion maps coordinates to a named Dutch region for the output
// record. Major-city boxes first, then a north/south split.
func IdentifyRegion(lat, lon float64) string {
	switch {
	case lat >= 52.3 && lat <= 52.4 && lon >= 4.8 && lon <= 5.0:
		return "Amsterdam"
	case lat >= 52.0 && lat <= 52.1 && lon >= 4.2 && lon <= 4.4:
		return "Den Haag"
	case lat >= 51.9 && lat <= 52.0 && lon >= 4.4 && lon <= 4.6:
		return "Rotterdam"
	case lat >= 52.1 && lat <= 52.2 && lon >= 5.1 && lon <= 5.2:
		return "Utrecht"
	case lat > 53.0:
		return "Noord-Nederland"
	case lat < 51.5:
		return "Zuid-Nederland"
	default:
		return "Midden-Nederland"
	}
}
