package gtfs

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
	"github.com/travigo/routespeed/pkg/util"
	"golang.org/x/exp/slices"
)

var (
	ErrShapeNotFound = errors.New("shape not found")
	ErrNoTrips       = errors.New("no trips run on the selected shape")
)

// Selection picks the single shape a run works on. When only RouteID is set the route's
// most used shape is taken.
type Selection struct {
	ShapeID string
	RouteID string
	Filter  *TripFilter
}

type ShapeSummary struct {
	ShapeID string
	RouteID string
	Trips   int
	Points  int
}

// ShapeSummaries counts trips per shape, ordered by shape id.
func (gtfs *Schedule) ShapeSummaries() []ShapeSummary {
	summaries := map[string]*ShapeSummary{}
	summary := func(shapeID string) *ShapeSummary {
		if summaries[shapeID] == nil {
			summaries[shapeID] = &ShapeSummary{ShapeID: shapeID}
		}
		return summaries[shapeID]
	}

	for _, shape := range gtfs.Shapes {
		summary(shape.ID).Points++
	}
	for _, trip := range gtfs.Trips {
		if trip.ShapeID == "" {
			continue
		}
		s := summary(trip.ShapeID)
		s.Trips++
		if s.RouteID == "" {
			s.RouteID = trip.RouteID
		}
	}

	list := make([]ShapeSummary, 0, len(summaries))
	for _, s := range summaries {
		list = append(list, *s)
	}
	slices.SortFunc(list, func(a, b ShapeSummary) int {
		return cmp.Compare(a.ShapeID, b.ShapeID)
	})
	return list
}

// Extract builds the input of a segment speed run for one shape.
func (gtfs *Schedule) Extract(selection Selection) (*segmentspeed.Feed, error) {
	trips, err := gtfs.selectTrips(selection)
	if err != nil {
		return nil, err
	}

	shapeID := selection.ShapeID
	if shapeID == "" {
		shapeID = mostUsedShape(trips)
	}
	otherShapes := util.InPlaceFilter(&trips, func(trip Trip) bool {
		return trip.ShapeID == shapeID
	})
	if otherShapes > 0 {
		log.Debug().Str("shape", shapeID).Int("trips", otherShapes).Msg("Ignoring trips on other shapes")
	}
	if len(trips) == 0 {
		return nil, fmt.Errorf("shape %s: %w", shapeID, ErrNoTrips)
	}

	path, err := gtfs.path(shapeID)
	if err != nil {
		return nil, err
	}

	location, err := gtfs.Location(trips[0].RouteID)
	if err != nil {
		return nil, err
	}

	feed := &segmentspeed.Feed{ShapeID: shapeID, Path: path, Location: location}

	tripIDs := map[string]bool{}
	serviceIDs := map[string]bool{}
	for _, trip := range trips {
		tripIDs[trip.ID] = true
		serviceIDs[trip.ServiceID] = true
		feed.Trips = append(feed.Trips, segmentspeed.Trip{ID: trip.ID, ServiceID: trip.ServiceID})
	}

	stopIDs := map[string]bool{}
	for _, stopTime := range gtfs.StopTimes {
		if !tripIDs[stopTime.TripID] {
			continue
		}

		arrival, err := ParseTime(stopTime.ArrivalTime)
		if err != nil {
			return nil, fmt.Errorf("trip %s stop %s: %w", stopTime.TripID, stopTime.StopID, err)
		}
		departure, err := ParseTime(stopTime.DepartureTime)
		if err != nil {
			return nil, fmt.Errorf("trip %s stop %s: %w", stopTime.TripID, stopTime.StopID, err)
		}

		stopIDs[stopTime.StopID] = true
		feed.StopTimes = append(feed.StopTimes, segmentspeed.StopTimeEvent{
			TripID:        stopTime.TripID,
			StopID:        stopTime.StopID,
			StopSequence:  stopTime.StopSequence,
			ArrivalTime:   arrival,
			DepartureTime: departure,
		})
	}

	for _, stop := range gtfs.Stops {
		if !stopIDs[stop.ID] {
			continue
		}
		delete(stopIDs, stop.ID)
		feed.Stops = append(feed.Stops, segmentspeed.Stop{
			ID:       stop.ID,
			Name:     stop.Name,
			Location: orb.Point{stop.Longitude, stop.Latitude},
		})
	}
	for stopID := range stopIDs {
		log.Warn().Str("stop", stopID).Msg("Stop time references a stop missing from stops.txt")
	}

	feed.Calendar, err = gtfs.serviceCalendar(serviceIDs, location)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("shape", shapeID).
		Str("timezone", location.String()).
		Int("trips", len(feed.Trips)).
		Int("stops", len(feed.Stops)).
		Int("stoptimes", len(feed.StopTimes)).
		Msg("Extracted shape")

	return feed, nil
}

func (gtfs *Schedule) selectTrips(selection Selection) ([]Trip, error) {
	if selection.ShapeID == "" && selection.RouteID == "" {
		return nil, errors.New("a shape id or a route id is required")
	}

	trips := []Trip{}
	for _, trip := range gtfs.Trips {
		if selection.ShapeID != "" && trip.ShapeID != selection.ShapeID {
			continue
		}
		if selection.RouteID != "" && trip.RouteID != selection.RouteID {
			continue
		}
		if trip.ShapeID == "" {
			continue
		}

		matched, err := selection.Filter.Match(trip)
		if err != nil {
			return nil, err
		}
		if matched {
			trips = append(trips, trip)
		}
	}

	if len(trips) == 0 {
		if selection.ShapeID != "" {
			return nil, fmt.Errorf("shape %s: %w", selection.ShapeID, ErrNoTrips)
		}
		return nil, fmt.Errorf("route %s: %w", selection.RouteID, ErrNoTrips)
	}

	return trips, nil
}

// mostUsedShape breaks ties on the lowest shape id.
func mostUsedShape(trips []Trip) string {
	counts := map[string]int{}
	for _, trip := range trips {
		counts[trip.ShapeID]++
	}

	best := ""
	for shapeID, count := range counts {
		if best == "" || count > counts[best] || (count == counts[best] && shapeID < best) {
			best = shapeID
		}
	}
	return best
}

func (gtfs *Schedule) path(shapeID string) (orb.LineString, error) {
	points := []Shape{}
	for _, point := range gtfs.Shapes {
		if point.ID == shapeID {
			points = append(points, point)
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("shape %s: %w", shapeID, ErrShapeNotFound)
	}

	slices.SortStableFunc(points, func(a, b Shape) int {
		return cmp.Compare(a.PointSequence, b.PointSequence)
	})

	path := make(orb.LineString, 0, len(points))
	for _, point := range points {
		path = append(path, orb.Point{point.PointLongitude, point.PointLatitude})
	}
	return path, nil
}

func (gtfs *Schedule) serviceCalendar(serviceIDs map[string]bool, location *time.Location) (*segmentspeed.ServiceCalendar, error) {
	ranges := []segmentspeed.ServiceRange{}
	for _, calendar := range gtfs.Calendars {
		if !serviceIDs[calendar.ServiceID] {
			continue
		}

		start, err := ParseDate(calendar.Start, location)
		if err != nil {
			return nil, fmt.Errorf("calendar %s start date: %w", calendar.ServiceID, err)
		}
		end, err := ParseDate(calendar.End, location)
		if err != nil {
			return nil, fmt.Errorf("calendar %s end date: %w", calendar.ServiceID, err)
		}

		ranges = append(ranges, segmentspeed.ServiceRange{
			ServiceID: calendar.ServiceID,
			Start:     start,
			End:       end,
			Weekdays:  calendar.RunningDays(),
		})
	}

	exceptions := []segmentspeed.ServiceException{}
	for _, calendarDate := range gtfs.CalendarDates {
		if !serviceIDs[calendarDate.ServiceID] {
			continue
		}

		date, err := ParseDate(calendarDate.Date, location)
		if err != nil {
			return nil, fmt.Errorf("calendar date for %s: %w", calendarDate.ServiceID, err)
		}

		switch calendarDate.ExceptionType {
		case ServiceAdded, ServiceRemoved:
			exceptions = append(exceptions, segmentspeed.ServiceException{
				ServiceID: calendarDate.ServiceID,
				Date:      date,
				Added:     calendarDate.ExceptionType == ServiceAdded,
			})
		default:
			log.Warn().
				Str("service", calendarDate.ServiceID).
				Int("exception", calendarDate.ExceptionType).
				Msg("Ignoring calendar date with unknown exception type")
		}
	}

	return segmentspeed.NewServiceCalendar(ranges, exceptions), nil
}
