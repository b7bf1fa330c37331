package features

import (
	"testing"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestTemporalExtractor_WinterAfternoon(t *testing.T) {
	e := NewTemporalExtractor(nil)

	feats := e.Extract("2025-01-15T14:30:00Z")

	assert.Equal(t, domain.TemporalFeatures{
		Hour:       14,
		DayOfWeek:  2, // Wednesday, Monday=0
		Month:      1,
		Year:       2025,
		IsWeekend:  false,
		IsRushHour: false,
		IsNight:    false,
		Season:     "Winter",
		TimePeriod: "Afternoon",
	}, feats)
}

func TestTemporalExtractor_MorningRushHour(t *testing.T) {
	e := NewTemporalExtractor(nil)

	feats := e.Extract("2025-01-15T08:00:00Z")

	assert.True(t, feats.IsRushHour)
	assert.Equal(t, 8, feats.Hour)
	assert.Equal(t, "Morning", feats.TimePeriod)
}

func TestTemporalExtractor_RushHours(t *testing.T) {
	e := NewTemporalExtractor(nil)
	rush := map[int]bool{7: true, 8: true, 9: true, 16: true, 17: true, 18: true, 19: true}
	for hour := 0; hour < 24; hour++ {
		ts := time.Date(2025, 1, 15, hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
		assert.Equalf(t, rush[hour], e.Extract(ts).IsRushHour, "hour=%d", hour)
	}
}

func TestTemporalExtractor_NightBoundaries(t *testing.T) {
	e := NewTemporalExtractor(nil)
	for _, tc := range []struct {
		hour int
		want bool
	}{
		{5, true},
		{6, false},
		{22, false},
		{23, true},
		{0, true},
	} {
		ts := time.Date(2025, 1, 15, tc.hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
		assert.Equalf(t, tc.want, e.Extract(ts).IsNight, "hour=%d", tc.hour)
	}
}

func TestTemporalExtractor_Weekend(t *testing.T) {
	e := NewTemporalExtractor(nil)

	sat := e.Extract("2025-01-18T12:00:00Z")
	assert.True(t, sat.IsWeekend)
	assert.Equal(t, 5, sat.DayOfWeek)

	sun := e.Extract("2025-01-19T12:00:00Z")
	assert.True(t, sun.IsWeekend)
	assert.Equal(t, 6, sun.DayOfWeek)

	mon := e.Extract("2025-01-20T12:00:00Z")
	assert.False(t, mon.IsWeekend)
	assert.Equal(t, 0, mon.DayOfWeek)
}

func TestTemporalExtractor_Seasons(t *testing.T) {
	e := NewTemporalExtractor(nil)
	for month, want := range map[int]string{
		12: "Winter", 1: "Winter", 2: "Winter",
		3: "Spring", 4: "Spring", 5: "Spring",
		6: "Summer", 7: "Summer", 8: "Summer",
		9: "Autumn", 10: "Autumn", 11: "Autumn",
	} {
		ts := time.Date(2025, time.Month(month), 10, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
		assert.Equalf(t, want, e.Extract(ts).Season, "month=%d", month)
	}
}

func TestTemporalExtractor_TimePeriods(t *testing.T) {
	e := NewTemporalExtractor(nil)
	for _, tc := range []struct {
		hour int
		want string
	}{
		{6, "Morning"},
		{11, "Morning"},
		{12, "Afternoon"},
		{17, "Afternoon"},
		{18, "Evening"},
		{21, "Evening"},
		{22, "Night"},
		{3, "Night"},
	} {
		ts := time.Date(2025, 1, 15, tc.hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
		assert.Equalf(t, tc.want, e.Extract(ts).TimePeriod, "hour=%d", tc.hour)
	}
}

func TestTemporalExtractor_EmptyTimestampUsesClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 4, 23, 15, 0, 0, time.UTC))
	e := NewTemporalExtractor(clock)

	feats := e.Extract("")

	assert.Equal(t, 23, feats.Hour)
	assert.Equal(t, 2025, feats.Year)
	assert.Equal(t, "Summer", feats.Season)
	assert.True(t, feats.IsNight)
}

func TestTemporalExtractor_UnparseableTimestampFallsBackSilently(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC))
	e := NewTemporalExtractor(clock)

	feats := e.Extract("yesterday-ish")

	assert.Equal(t, 10, feats.Hour)
	assert.Equal(t, 2025, feats.Year)
}

func TestTemporalExtractor_ZonelessTimestampReadAsUTC(t *testing.T) {
	e := NewTemporalExtractor(nil)

	feats := e.Extract("2025-01-15T14:30:00")

	assert.Equal(t, 14, feats.Hour)
	assert.Equal(t, 2025, feats.Year)
}
