package gtfs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/travigo/routespeed/pkg/segmentspeed"
)

const dateFormat = "20060102"

// ParseTime reads a stop time such as "08:15:00" or "25:10:00" as seconds since the
// service day's midnight. An empty value is a missing time, not an error.
func ParseTime(value string) (segmentspeed.ServiceSeconds, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return segmentspeed.MissingTime, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return segmentspeed.MissingTime, fmt.Errorf("invalid stop time %q", value)
	}

	fields := [3]int{}
	for i, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil || number < 0 {
			return segmentspeed.MissingTime, fmt.Errorf("invalid stop time %q", value)
		}
		fields[i] = number
	}

	if fields[1] > 59 || fields[2] > 59 {
		return segmentspeed.MissingTime, fmt.Errorf("invalid stop time %q", value)
	}

	return segmentspeed.ServiceSeconds(fields[0]*3600 + fields[1]*60 + fields[2]), nil
}

// ParseDate reads a YYYYMMDD service date as midnight in the agency's location.
func ParseDate(value string, location *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateFormat, strings.TrimSpace(value), location)
}
