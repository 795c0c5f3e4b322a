package utils

import "time"

// ThirdFriday returns the third Friday of the given month, the standard
// monthly option settlement date on B3.
func ThirdFriday(year int, month time.Month) time.Time {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	daysUntilFriday := (int(time.Friday) - int(firstDay.Weekday()) + 7) % 7

	return firstDay.AddDate(0, 0, daysUntilFriday+14)
}

// ParseTimestamp parses an RFC3339 timestamp, falling back to the supplied
// time when the value is empty or malformed. Terminal agents are not trusted
// to send well-formed timestamps.
func ParseTimestamp(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}

	return ts.UTC()
}
