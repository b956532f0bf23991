package util

import (
	"time"
)

// AddTimeToDate places a time of day on a service date. GTFS measures times from noon minus
// 12 hours, which only differs from midnight on daylight saving changeover days, and allows
// more than 24 hours for service running past midnight.
func AddTimeToDate(date time.Time, secondsSinceMidnight int) time.Time {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())

	return noon.Add(-12 * time.Hour).Add(time.Duration(secondsSinceMidnight) * time.Second)
}
