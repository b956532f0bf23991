package export

import (
	"time"
	_ "time/tzdata"

	"github.com/paulmach/orb"
	"github.com/travigo/routespeed/pkg/crs"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

var pacific, _ = time.LoadLocation("America/Los_Angeles")

var monday = time.Date(2024, time.June, 3, 0, 0, 0, 0, pacific)

func observation(tripID string, segment segmentspeed.Segment, start, end segmentspeed.ServiceSeconds) segmentspeed.SegmentObservation {
	observation := segmentspeed.SegmentObservation{
		TripID:         tripID,
		SegmentID:      segment.ID,
		SegmentIndex:   segment.Index,
		StartStop:      segment.StartStop,
		EndStop:        segment.EndStop,
		StartSeconds:   start,
		EndSeconds:     end,
		StartTimeHours: start.Hours(),
		EndTimeHours:   end.Hours(),
		DistanceMiles:  segment.DistanceMiles,
	}
	if end <= start {
		observation.TimingErr = &segmentspeed.InvalidTimingError{
			TripID: tripID, SegmentID: segment.ID, StartSeconds: start, EndSeconds: end,
		}
	} else {
		observation.SpeedMPH = segment.DistanceMiles / (end - start).Hours()
	}
	return observation
}

func row(observation segmentspeed.SegmentObservation, position float64, date time.Time, terminal bool) segmentspeed.AssembledObservation {
	return segmentspeed.AssembledObservation{
		SegmentObservation: observation,
		Terminal:           terminal,
		LinearPosition:     position,
		ServiceDate:        date,
		DayType:            segmentspeed.ClassifyDay(date),
		StartDateTime:      date.Add(time.Duration(observation.StartSeconds) * time.Second),
	}
}

// sampleResult is a two segment shape with two trips on one Monday. Trip B's second
// segment has an invalid timing.
func sampleResult() *segmentspeed.Result {
	system, _ := crs.Lookup(0)

	segments := []segmentspeed.Segment{
		{
			ID: "S1-S2", Index: 0, StartStop: "S1", EndStop: "S2",
			StartPosition: 0, EndPosition: 0.5, DistanceMiles: 1,
			Geometry: orb.LineString{{-122.87, 42.32}, {-122.86, 42.32}},
		},
		{
			ID: "S2-S3", Index: 1, StartStop: "S2", EndStop: "S3",
			StartPosition: 0.5, EndPosition: 1, DistanceMiles: 1,
			Geometry: orb.LineString{{-122.86, 42.32}, {-122.85, 42.32}},
		},
	}

	observations := []segmentspeed.SegmentObservation{
		observation("A", segments[0], 8*3600, 8*3600+360),
		observation("A", segments[1], 8*3600+360, 8*3600+600),
		observation("B", segments[0], 9*3600, 9*3600+300),
		observation("B", segments[1], 9*3600+300, 9*3600+300),
	}

	terminal := func(last segmentspeed.SegmentObservation) segmentspeed.SegmentObservation {
		return segmentspeed.SegmentObservation{
			TripID:         last.TripID,
			SegmentID:      segmentspeed.TerminalSegmentID,
			SegmentIndex:   len(segments),
			StartStop:      last.EndStop,
			EndStop:        last.EndStop,
			StartSeconds:   last.EndSeconds,
			EndSeconds:     last.EndSeconds,
			StartTimeHours: last.EndTimeHours,
			EndTimeHours:   last.EndTimeHours,
			DistanceMiles:  last.DistanceMiles,
		}
	}

	rows := []segmentspeed.AssembledObservation{
		row(observations[0], 0, monday, false),
		row(observations[1], 0.5, monday, false),
		row(terminal(observations[1]), 1, monday, true),
		row(observations[2], 0, monday, false),
		row(observations[3], 0.5, monday, false),
		row(terminal(observations[3]), 1, monday, true),
	}

	return &segmentspeed.Result{
		ShapeID:  "SH1",
		System:   system,
		Location: pacific,
		Stops: []segmentspeed.SnappedStop{
			{Stop: segmentspeed.Stop{ID: "S1", Name: "First"}, Snapped: orb.Point{-122.87, 42.32}, Position: 0},
			{Stop: segmentspeed.Stop{ID: "S2", Name: "Second"}, Snapped: orb.Point{-122.86, 42.32}, Position: 0.5, InputIndex: 1},
			{Stop: segmentspeed.Stop{ID: "S3", Name: "Third"}, Snapped: orb.Point{-122.85, 42.32}, Position: 1, InputIndex: 2},
		},
		Segments:     segments,
		Observations: observations,
		Rows:         rows,
		Skipped:      1,
		MissingReferences: []*segmentspeed.MissingReferenceDataError{
			{TripID: "C", ServiceID: "HOLIDAY"},
		},
	}
}
