package segmentspeed

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/travigo/routespeed/pkg/crs"
)

// footGrid treats coordinates as international feet so test distances come out exact.
func footGrid() *crs.System {
	return crs.Custom("foot grid", crs.InternationalFoot,
		orb.Bound{Min: orb.Point{-1e9, -1e9}, Max: orb.Point{1e9, 1e9}},
		func(x, y float64) (float64, float64) {
			return x * 0.3048, y * 0.3048
		})
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func everyDay(serviceID string, start, end time.Time) ServiceRange {
	return ServiceRange{
		ServiceID: serviceID,
		Start:     start,
		End:       end,
		Weekdays:  [7]bool{true, true, true, true, true, true, true},
	}
}

func event(tripID, stopID string, sequence int, arrival, departure ServiceSeconds) StopTimeEvent {
	return StopTimeEvent{
		TripID:        tripID,
		StopID:        stopID,
		StopSequence:  sequence,
		ArrivalTime:   arrival,
		DepartureTime: departure,
	}
}

// threeMileFeed is a straight 3 mile route between stops A and B with one trip taking
// half an hour, running on Saturday 1 June 2024.
func threeMileFeed() *Feed {
	return &Feed{
		ShapeID: "straight",
		Path:    orb.LineString{{0, 0}, {15840, 0}},
		Stops: []Stop{
			{ID: "A", Location: orb.Point{0, 12}},
			{ID: "B", Location: orb.Point{15840, -7}},
		},
		StopTimes: []StopTimeEvent{
			event("t1", "A", 1, 0, 0),
			event("t1", "B", 2, 1800, 1800),
		},
		Trips:    []Trip{{ID: "t1", ServiceID: "sat"}},
		Calendar: NewServiceCalendar(nil, []ServiceException{{ServiceID: "sat", Date: date(2024, time.June, 1), Added: true}}),
	}
}

// corridorFeed is a two mile L shaped route with four stops and several trips.
func corridorFeed() *Feed {
	stopTimes := []StopTimeEvent{}
	trips := []Trip{}
	for i, tripID := range []string{"t03", "t01", "t02", "t05", "t04"} {
		offset := ServiceSeconds(i * 900)
		stopTimes = append(stopTimes,
			event(tripID, "S1", 1, offset, offset),
			event(tripID, "S2", 2, offset+300, offset+330),
			event(tripID, "S3", 3, offset+600, offset+620),
			event(tripID, "S4", 4, offset+1000, offset+1000),
		)
		trips = append(trips, Trip{ID: tripID, ServiceID: "weekdays"})
	}

	return &Feed{
		ShapeID: "corridor",
		Path:    orb.LineString{{0, 0}, {5280, 0}, {5280, 5280}},
		Stops: []Stop{
			{ID: "S3", Location: orb.Point{5300, 2640}},
			{ID: "S1", Location: orb.Point{-20, 10}},
			{ID: "S4", Location: orb.Point{5280, 5400}},
			{ID: "S2", Location: orb.Point{2640, 30}},
			{ID: "unserved", Location: orb.Point{100, 0}},
		},
		StopTimes: stopTimes,
		Trips:     trips,
		Calendar: NewServiceCalendar([]ServiceRange{{
			ServiceID: "weekdays",
			Start:     date(2024, time.June, 1),
			End:       date(2024, time.June, 7),
			Weekdays:  [7]bool{false, true, true, true, true, true, false},
		}}, nil),
	}
}
