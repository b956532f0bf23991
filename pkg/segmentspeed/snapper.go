package segmentspeed

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/travigo/routespeed/pkg/linearref"
)

// SnapStops places every stop that has at least one fully timed stop time onto the path.
// Stops come back in input order.
func SnapStops(path orb.LineString, stops []Stop, stopTimes []StopTimeEvent) ([]SnappedStop, error) {
	ref, err := linearref.New(path)
	if err != nil {
		return nil, &GeometryError{Err: err}
	}

	timed := map[string]bool{}
	for _, stopTime := range stopTimes {
		if stopTime.ArrivalTime.Valid() && stopTime.DepartureTime.Valid() {
			timed[stopTime.StopID] = true
		}
	}

	snapped := []SnappedStop{}
	seen := map[string]bool{}
	for index, stop := range stops {
		if !timed[stop.ID] || seen[stop.ID] {
			continue
		}
		seen[stop.ID] = true

		if !linearref.Finite(stop.Location) {
			return nil, &GeometryError{StopID: stop.ID, Err: errors.New("coordinate is not a finite number")}
		}

		nearest := ref.NearestPoint(stop.Location)
		snapped = append(snapped, SnappedStop{
			Stop:       stop,
			Snapped:    nearest,
			Position:   ref.Project(nearest),
			InputIndex: index,
		})
	}

	return snapped, nil
}
