package features

import (
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// rushHours are the morning and evening commute hours.
var rushHours = map[int]bool{7: true, 8: true, 9: true, 16: true, 17: true, 18: true, 19: true}

// TemporalExtractor derives calendar and time-of-day attributes from a
// timestamp. Stateless apart from its clock; no cache needed.
type TemporalExtractor struct {
	clock clockwork.Clock
}

// NewTemporalExtractor creates a temporal extractor. A nil clock defaults to
// real time.
func NewTemporalExtractor(clock clockwork.Clock) *TemporalExtractor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TemporalExtractor{clock: clock}
}

// Extract derives temporal features from an RFC 3339 timestamp. An empty or
// unparseable timestamp silently falls back to the current time; parse
// failures never surface to the caller.
func (e *TemporalExtractor) Extract(timestamp string) domain.TemporalFeatures {
	t := e.parseOrNow(timestamp)

	hour := t.Hour()
	dow := mondayIndexed(t.Weekday())

	return domain.TemporalFeatures{
		Hour:       hour,
		DayOfWeek:  dow,
		Month:      int(t.Month()),
		Year:       t.Year(),
		IsWeekend:  dow >= 5,
		IsRushHour: rushHours[hour],
		IsNight:    hour < 6 || hour > 22,
		Season:     season(int(t.Month())),
		TimePeriod: timePeriod(hour),
	}
}

func (e *TemporalExtractor) parseOrNow(timestamp string) time.Time {
	if timestamp == "" {
		return e.clock.Now()
	}
	if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
		return t
	}
	// Zone-less timestamps occur in some source payloads; read them as UTC.
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", timestamp, time.UTC); err == nil {
		return t
	}
	return e.clock.Now()
}

// mondayIndexed converts Go's Sunday=0 weekday to the training set's
// Monday=0 ... Sunday=6 convention.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func season(month int) string {
	switch month {
	case 12, 1, 2:
		return "Winter"
	case 3, 4, 5:
		return "Spring"
	case 6, 7, 8:
		return "Summer"
	default:
		return "Autumn"
	}
}

func timePeriod(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 18:
		return "Afternoon"
	case hour >= 18 && hour < 22:
		return "Evening"
	default:
		return "Night"
	}
}
