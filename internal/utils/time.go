package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseDate parses a naive YYYY-MM-DD calendar date. The result is midnight UTC
// so day arithmetic never crosses a DST boundary.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(layoutDate, s)
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime)
}

// AddDays shifts a YYYY-MM-DD date string by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(strings.TrimSpace(date))
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the whole number of days from start to end (negative when misordered).
// Both ends are expected at midnight UTC.
func DaysBetween(start, end time.Time) int {
	return int((end.Unix() - start.Unix()) / 86400)
}

// FullTripDays lists the days strictly between departure and return, in order.
// It is empty when the trip is shorter than two days or misordered.
func FullTripDays(departure, ret time.Time) []time.Time {
	days := []time.Time{}
	for d := departure.AddDate(0, 0, 1); d.Before(ret); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
