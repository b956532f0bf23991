package gtfs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Location resolves the timezone a route's stop times and service dates are given in: the
// timezone of the route's agency, or of the feed's only agency when the route names none.
// A feed without agency.txt falls back to UTC.
func (gtfs *Schedule) Location(routeID string) (*time.Location, error) {
	if len(gtfs.Agencies) == 0 {
		log.Warn().Msg("Feed has no agency.txt, reading times as UTC")
		return time.UTC, nil
	}

	agencyID := ""
	for _, route := range gtfs.Routes {
		if route.ID == routeID {
			agencyID = route.AgencyID
			break
		}
	}

	agency := &gtfs.Agencies[0]
	if agencyID != "" {
		found := false
		for i := range gtfs.Agencies {
			if gtfs.Agencies[i].ID == agencyID {
				agency = &gtfs.Agencies[i]
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("route %s references unknown agency %s", routeID, agencyID)
		}
	}

	if agency.Timezone == "" {
		return nil, fmt.Errorf("agency %s has no agency_timezone", agency.ID)
	}

	location, err := time.LoadLocation(agency.Timezone)
	if err != nil {
		return nil, fmt.Errorf("agency %s timezone: %w", agency.ID, err)
	}
	return location, nil
}
