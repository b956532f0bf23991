// Package segmentspeed turns one route shape, its stops and its trips' stop times into
// per-segment speeds.
//
// A run is four stages, each a pure function over the previous stage's output:
// SnapStops, BuildSegments, CalculateSpeeds and Assemble. Run chains them.
package segmentspeed

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/travigo/routespeed/pkg/crs"
)

// ServiceSeconds counts seconds from the reference midnight of a service day. Values past
// 86400 are service that runs after midnight.
type ServiceSeconds int

const MissingTime ServiceSeconds = -1

func (s ServiceSeconds) Valid() bool {
	return s >= 0
}

func (s ServiceSeconds) Hours() float64 {
	return float64(s) / 3600
}

func (s ServiceSeconds) String() string {
	if !s.Valid() {
		return "missing"
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

type Stop struct {
	ID       string
	Name     string
	Location orb.Point
}

type StopTimeEvent struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   ServiceSeconds
	DepartureTime ServiceSeconds
}

type Trip struct {
	ID        string
	ServiceID string
}

// Feed is everything a single run reads. Nothing in the package writes to it.
type Feed struct {
	ShapeID   string
	Path      orb.LineString
	Stops     []Stop
	StopTimes []StopTimeEvent
	Trips     []Trip
	Calendar  *ServiceCalendar

	// Location is the agency timezone that stop times and service dates are given in.
	// Nil means UTC.
	Location *time.Location
}

type SnappedStop struct {
	Stop
	Snapped    orb.Point
	Position   float64
	InputIndex int
}

const TerminalSegmentID = "final"

func SegmentID(startStop, endStop string) string {
	return startStop + "-" + endStop
}

type Segment struct {
	ID            string
	Index         int
	StartStop     string
	EndStop       string
	StartPosition float64
	EndPosition   float64
	Geometry      orb.LineString
	DistanceMiles float64
}

type SegmentObservation struct {
	TripID         string
	SegmentID      string
	SegmentIndex   int
	StartStop      string
	EndStop        string
	StartSeconds   ServiceSeconds
	EndSeconds     ServiceSeconds
	StartTimeHours float64
	EndTimeHours   float64
	DistanceMiles  float64
	SpeedMPH       float64

	// TimingErr is set when the elapsed time is not positive; SpeedMPH is then 0.
	TimingErr *InvalidTimingError
}

func (o *SegmentObservation) Flagged() bool {
	return o.TimingErr != nil
}

// Flag names the row's data problem, or is empty.
func (o *SegmentObservation) Flag() string {
	if o.Flagged() {
		return "invalid_timing"
	}
	return ""
}

type DayType string

const (
	Weekday  DayType = "weekday"
	Saturday DayType = "saturday"
	Sunday   DayType = "sunday"
)

type AssembledObservation struct {
	SegmentObservation

	Terminal       bool
	LinearPosition float64
	ServiceDate    time.Time
	DayType        DayType
	StartDateTime  time.Time
}

type Result struct {
	ShapeID  string
	System   *crs.System
	Location *time.Location

	Stops        []SnappedStop
	Segments     []Segment
	Observations []SegmentObservation
	Rows         []AssembledObservation

	// Skipped counts (trip, segment) pairs the trip never served.
	Skipped           int
	MissingReferences []*MissingReferenceDataError
}

// FlaggedCount is the number of observations carrying an invalid timing.
func (r *Result) FlaggedCount() int {
	count := 0
	for i := range r.Observations {
		if r.Observations[i].Flagged() {
			count++
		}
	}
	return count
}

// SegmentStats summarises the valid observations of one segment.
type SegmentStats struct {
	Observations int
	Flagged      int
	MeanSpeedMPH float64
}

// SegmentStats is keyed by segment id. Every segment has an entry, observed or not.
func (r *Result) SegmentStats() map[string]*SegmentStats {
	stats := make(map[string]*SegmentStats, len(r.Segments))
	for _, segment := range r.Segments {
		stats[segment.ID] = &SegmentStats{}
	}

	for i := range r.Observations {
		observation := &r.Observations[i]
		segment, ok := stats[observation.SegmentID]
		if !ok {
			continue
		}
		if observation.Flagged() {
			segment.Flagged++
			continue
		}
		segment.Observations++
		segment.MeanSpeedMPH += (observation.SpeedMPH - segment.MeanSpeedMPH) / float64(segment.Observations)
	}

	return stats
}
