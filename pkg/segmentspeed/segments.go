package segmentspeed

import (
	"cmp"

	"github.com/paulmach/orb"
	"github.com/travigo/routespeed/pkg/crs"
	"github.com/travigo/routespeed/pkg/linearref"
	"golang.org/x/exp/slices"
)

// BuildSegments orders the stops along the path and cuts one segment per adjacent pair.
// Stops at the same position keep their input order.
func BuildSegments(path orb.LineString, stops []SnappedStop, system *crs.System) ([]Segment, error) {
	if len(stops) < 2 {
		return nil, &InsufficientStopsError{Count: len(stops)}
	}

	ref, err := linearref.New(path)
	if err != nil {
		return nil, &GeometryError{Err: err}
	}

	ordered := slices.Clone(stops)
	slices.SortStableFunc(ordered, func(a, b SnappedStop) int {
		return cmp.Compare(a.Position, b.Position)
	})

	segments := make([]Segment, 0, len(ordered)-1)
	for i := 0; i < len(ordered)-1; i++ {
		start, end := ordered[i], ordered[i+1]
		geometry := ref.Substring(start.Position, end.Position)

		segments = append(segments, Segment{
			ID:            SegmentID(start.ID, end.ID),
			Index:         i,
			StartStop:     start.ID,
			EndStop:       end.ID,
			StartPosition: start.Position,
			EndPosition:   end.Position,
			Geometry:      geometry,
			DistanceMiles: system.LengthMiles(geometry),
		})
	}

	return segments, nil
}
