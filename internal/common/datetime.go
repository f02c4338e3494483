package common

import (
	"time"
)

// DateLayout
const (
	DateFormatYYYYMMDD                  = "2006-01-02"
	DateFormatYYYYMMDDWithTime          = "2006-01-02 15:04:05"
	DateFormatYYYYMMDDHHMMSSWithoutDash = "20060102150405"
	DateFormatYYYYMMDDWithTimeAndOffset = "2006-01-02T15:04:05-07:00" // same as RFC3339/ISO8601
)

// feedDateLayouts are the timestamp shapes the upstream feeds have been
// observed to emit, tried in order.
var feedDateLayouts = []string{
	DateFormatYYYYMMDDWithTimeAndOffset,
	DateFormatYYYYMMDDWithTime,
	DateFormatYYYYMMDD,
	"2006-01-02T15:04:05",
}

// ParseFeedTimestamp parses a feed timestamp in any of the known layouts.
func ParseFeedTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range feedDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// TruncateToDay drops the time-of-day component, keeping the date in UTC.
// Matching compares calendar dates only.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Now() time.Time {
	return time.Now().UTC()
}
