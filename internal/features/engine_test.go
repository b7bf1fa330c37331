package features

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(weather *countingWeatherLookup, road *fakeRoadLookup, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewFakeClock()
	}
	return NewEngine(
		newWeatherExtractor(weather),
		newRoadExtractor(road),
		NewTemporalExtractor(clock),
	)
}

func testIncident(category int) *domain.Incident {
	coords, _ := json.Marshal([]float64{4.9041, 52.3676})
	return &domain.Incident{
		Geometry:   domain.Geometry{Type: "Point", Coordinates: coords},
		Properties: domain.IncidentProperties{ID: "inc-1", IconCategory: category},
	}
}

func TestEngine_RecordIsComplete(t *testing.T) {
	weather := &countingWeatherLookup{obs: domain.WeatherObservation{Temperature: ptr(8.0)}}
	road := &fakeRoadLookup{
		ways:   []domain.OSMElement{wayWithTags(map[string]string{"highway": "primary", "lit": "yes"})},
		places: []domain.OSMElement{wayWithTags(map[string]string{"place": "city"})},
	}
	engine := newTestEngine(weather, road, nil)

	rec := engine.Engineer(context.Background(), 52.3676, 4.9041, "2025-01-15T14:30:00Z", testIncident(1))

	// Coordinates round-trip.
	assert.InDelta(t, 52.3676, rec.Lat, 1e-3)
	assert.InDelta(t, 4.9041, rec.Lon, 1e-3)

	// Every extractor contributed.
	assert.Equal(t, 8.0, rec.Temperature)
	assert.Equal(t, domain.ConditionDry, rec.WeatherCondition)
	assert.Equal(t, "primary", rec.RoadType)
	assert.Equal(t, 80, rec.SpeedLimit)
	assert.Equal(t, 14, rec.Hour)
	assert.Equal(t, 2025, rec.Year)
	assert.Equal(t, "Winter", rec.Season)
	assert.Equal(t, "Afternoon", rec.TimePeriod)

	// Engine-level fields.
	assert.Equal(t, domain.AreaUrban, rec.AreaType)
	assert.Equal(t, 2, rec.PartyCount)
	assert.Equal(t, domain.LightingDaylight, rec.Lighting)

	// No extractor was short-circuited.
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 1, road.wayCalls)
	assert.Equal(t, 1, road.placeCalls)
}

func TestEngine_SpecExampleTimestamps(t *testing.T) {
	engine := newTestEngine(&countingWeatherLookup{}, &fakeRoadLookup{}, nil)

	rec := engine.Engineer(context.Background(), 52.3676, 4.9041, "2025-01-15T14:30:00Z", nil)
	assert.Equal(t, 14, rec.Hour)
	assert.Equal(t, 2025, rec.Year)
	assert.False(t, rec.IsRushHour)
	assert.False(t, rec.IsWeekend)
	assert.Equal(t, "Winter", rec.Season)
	assert.Equal(t, "Afternoon", rec.TimePeriod)

	rec = engine.Engineer(context.Background(), 52.3676, 4.9041, "2025-01-15T08:00:00Z", testIncident(1))
	assert.True(t, rec.IsRushHour)
	assert.Equal(t, 2, rec.PartyCount)
}

func TestEngine_PartyEstimate(t *testing.T) {
	engine := newTestEngine(&countingWeatherLookup{}, &fakeRoadLookup{}, nil)

	t.Run("no incident defaults to two", func(t *testing.T) {
		rec := engine.Engineer(context.Background(), 1.0, 1.0, "", nil)
		assert.Equal(t, 2, rec.PartyCount)
	})

	t.Run("accident category means two parties", func(t *testing.T) {
		rec := engine.Engineer(context.Background(), 1.0, 1.0, "", testIncident(1))
		assert.Equal(t, 2, rec.PartyCount)
	})

	t.Run("other categories mean single vehicle", func(t *testing.T) {
		rec := engine.Engineer(context.Background(), 1.0, 1.0, "", testIncident(8))
		assert.Equal(t, 1, rec.PartyCount)
	})
}

func TestEngine_LightingDecisionTree(t *testing.T) {
	day := "2025-06-10T14:00:00Z"
	night := "2025-06-10T23:00:00Z"

	litRoad := func() *fakeRoadLookup {
		return &fakeRoadLookup{ways: []domain.OSMElement{wayWithTags(map[string]string{"lit": "yes"})}}
	}
	unlitRoad := func() *fakeRoadLookup {
		return &fakeRoadLookup{ways: []domain.OSMElement{wayWithTags(map[string]string{"lit": "no"})}}
	}

	t.Run("daylight hours win regardless of lighting", func(t *testing.T) {
		engine := newTestEngine(&countingWeatherLookup{}, unlitRoad(), nil)
		rec := engine.Engineer(context.Background(), 1.0, 1.0, day, nil)
		assert.Equal(t, domain.LightingDaylight, rec.Lighting)
	})

	t.Run("night on a lit road is artificial light", func(t *testing.T) {
		engine := newTestEngine(&countingWeatherLookup{}, litRoad(), nil)
		rec := engine.Engineer(context.Background(), 1.0, 1.0, night, nil)
		assert.Equal(t, domain.LightingArtificial, rec.Lighting)
	})

	t.Run("night on an unlit road is darkness", func(t *testing.T) {
		engine := newTestEngine(&countingWeatherLookup{}, unlitRoad(), nil)
		rec := engine.Engineer(context.Background(), 1.0, 1.0, night, nil)
		assert.Equal(t, domain.LightingDarkness, rec.Lighting)
	})

	t.Run("night with unknown lighting is darkness", func(t *testing.T) {
		engine := newTestEngine(&countingWeatherLookup{}, &fakeRoadLookup{}, nil)
		rec := engine.Engineer(context.Background(), 1.0, 1.0, night, nil)
		assert.Equal(t, domain.LightingDarkness, rec.Lighting)
	})

	t.Run("daylight boundary hours", func(t *testing.T) {
		engine := newTestEngine(&countingWeatherLookup{}, unlitRoad(), nil)
		for _, tc := range []struct {
			hour int
			want string
		}{
			{6, domain.LightingDaylight},
			{20, domain.LightingDaylight},
			{21, domain.LightingDarkness},
			{5, domain.LightingDarkness},
		} {
			ts := time.Date(2025, 6, 10, tc.hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
			rec := engine.Engineer(context.Background(), 1.0, 1.0, ts, nil)
			assert.Equalf(t, tc.want, rec.Lighting, "hour=%d", tc.hour)
		}
	})
}

func TestEngine_UpstreamFailuresYieldDefaults(t *testing.T) {
	weather := &countingWeatherLookup{err: assert.AnError}
	road := &fakeRoadLookup{waysErr: assert.AnError, placesErr: assert.AnError}
	engine := newTestEngine(weather, road, nil)

	rec := engine.Engineer(context.Background(), 52.3676, 4.9041, "2025-01-15T14:30:00Z", nil)

	require.Equal(t, domain.DefaultWeather(), rec.WeatherFeatures)
	require.Equal(t, domain.DefaultRoad(), rec.RoadFeatures)
	assert.Equal(t, domain.AreaRural, rec.AreaType, "area classification fails closed to rural")
}
