package segmentspeed

import "fmt"

// GeometryError means a stop could not be placed on the route path. Fatal to a run.
type GeometryError struct {
	StopID string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.StopID == "" {
		return fmt.Sprintf("route path geometry: %v", e.Err)
	}
	return fmt.Sprintf("stop %s geometry: %v", e.StopID, e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// InsufficientStopsError means fewer than two usable stops survived snapping. Fatal to a run.
type InsufficientStopsError struct {
	Count int
}

func (e *InsufficientStopsError) Error() string {
	return fmt.Sprintf("need at least 2 stops with timings to build segments, have %d", e.Count)
}

// InvalidTimingError flags an observation whose arrival is not after its departure.
type InvalidTimingError struct {
	TripID       string
	SegmentID    string
	StartSeconds ServiceSeconds
	EndSeconds   ServiceSeconds
}

func (e *InvalidTimingError) Error() string {
	return fmt.Sprintf("trip %s segment %s: arrival %s is not after departure %s",
		e.TripID, e.SegmentID, e.EndSeconds, e.StartSeconds)
}

// MissingReferenceDataError means a trip cannot be placed on the service calendar, either
// because the trip is unknown or because its service id has no calendar rows.
type MissingReferenceDataError struct {
	TripID    string
	ServiceID string
}

func (e *MissingReferenceDataError) Error() string {
	if e.ServiceID == "" {
		return fmt.Sprintf("trip %s is not in the trips table", e.TripID)
	}
	return fmt.Sprintf("trip %s references service %s which has no calendar data", e.TripID, e.ServiceID)
}
