package segmentspeed

import (
	"time"

	"golang.org/x/exp/slices"
)

// ServiceRange is a calendar row: a service running on some weekdays between two dates,
// both inclusive.
type ServiceRange struct {
	ServiceID string
	Start     time.Time
	End       time.Time
	Weekdays  [7]bool
}

// ServiceException is a calendar_dates row adding or removing a single date.
type ServiceException struct {
	ServiceID string
	Date      time.Time
	Added     bool
}

// ServiceCalendar resolves service ids to the dates they operate on.
type ServiceCalendar struct {
	dates map[string][]time.Time
}

func NewServiceCalendar(ranges []ServiceRange, exceptions []ServiceException) *ServiceCalendar {
	running := map[string]map[time.Time]bool{}
	known := func(serviceID string) map[time.Time]bool {
		if running[serviceID] == nil {
			running[serviceID] = map[time.Time]bool{}
		}
		return running[serviceID]
	}

	for _, serviceRange := range ranges {
		days := known(serviceRange.ServiceID)
		end := dateOf(serviceRange.End)
		for day := dateOf(serviceRange.Start); !day.After(end); day = day.AddDate(0, 0, 1) {
			if serviceRange.Weekdays[day.Weekday()] {
				days[day] = true
			}
		}
	}

	for _, exception := range exceptions {
		days := known(exception.ServiceID)
		day := dateOf(exception.Date)
		if exception.Added {
			days[day] = true
		} else {
			delete(days, day)
		}
	}

	calendar := &ServiceCalendar{dates: map[string][]time.Time{}}
	for serviceID, days := range running {
		dates := make([]time.Time, 0, len(days))
		for day := range days {
			dates = append(dates, day)
		}
		slices.SortFunc(dates, func(a, b time.Time) int {
			return a.Compare(b)
		})
		calendar.dates[serviceID] = dates
	}

	return calendar
}

// Dates lists the service's operating dates in order. The bool is false when neither
// calendar table mentions the service.
func (c *ServiceCalendar) Dates(serviceID string) ([]time.Time, bool) {
	if c == nil {
		return nil, false
	}
	dates, ok := c.dates[serviceID]
	return dates, ok
}

func ClassifyDay(date time.Time) DayType {
	switch date.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		return Weekday
	}
}

// dateOf truncates to midnight in t's own location, which is the agency timezone for
// dates read from a feed.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
