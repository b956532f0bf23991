package segmentspeed

import (
	"cmp"
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"
)

type tripSpeeds struct {
	observations []SegmentObservation
	skipped      int
}

// CalculateSpeeds times every trip over every segment it serves. Trips are worked on in
// parallel, up to workers at once (GOMAXPROCS when workers is not positive). The result is
// ordered by trip id then segment index, along with the number of (trip, segment) pairs
// that had no usable stop times.
func CalculateSpeeds(ctx context.Context, stopTimes []StopTimeEvent, segments []Segment, workers int) ([]SegmentObservation, int, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trips := map[string][]StopTimeEvent{}
	for _, stopTime := range stopTimes {
		trips[stopTime.TripID] = append(trips[stopTime.TripID], stopTime)
	}

	tripIDs := make([]string, 0, len(trips))
	for tripID := range trips {
		tripIDs = append(tripIDs, tripID)
	}
	slices.Sort(tripIDs)

	p := pool.NewWithResults[tripSpeeds]().WithMaxGoroutines(workers).WithContext(ctx).WithFirstError()
	for _, tripID := range tripIDs {
		if ctx.Err() != nil {
			break
		}

		tripID := tripID
		events := trips[tripID]
		p.Go(func(ctx context.Context) (tripSpeeds, error) {
			if err := ctx.Err(); err != nil {
				return tripSpeeds{}, err
			}
			return speedsForTrip(tripID, events, segments), nil
		})
	}

	results, err := p.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, 0, err
	}

	observations := []SegmentObservation{}
	skipped := 0
	for _, result := range results {
		observations = append(observations, result.observations...)
		skipped += result.skipped
	}

	slices.SortFunc(observations, func(a, b SegmentObservation) int {
		if c := cmp.Compare(a.TripID, b.TripID); c != 0 {
			return c
		}
		return cmp.Compare(a.SegmentIndex, b.SegmentIndex)
	})

	return observations, skipped, nil
}

// speedsForTrip walks the segments in route order with a cursor over the trip's stop times
// in sequence order, so a stop the trip visits twice resolves to the visit that follows the
// previous segment's arrival.
func speedsForTrip(tripID string, events []StopTimeEvent, segments []Segment) tripSpeeds {
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(a, b StopTimeEvent) int {
		return cmp.Compare(a.StopSequence, b.StopSequence)
	})

	result := tripSpeeds{}
	cursor := 0

	for _, segment := range segments {
		start := findStopTime(events, cursor, segment.StartStop, func(e StopTimeEvent) bool {
			return e.DepartureTime.Valid()
		})
		if start < 0 {
			result.skipped++
			continue
		}

		end := findStopTime(events, start+1, segment.EndStop, func(e StopTimeEvent) bool {
			return e.ArrivalTime.Valid()
		})
		if end < 0 {
			result.skipped++
			continue
		}

		cursor = end
		result.observations = append(result.observations,
			newObservation(tripID, segment, events[start].DepartureTime, events[end].ArrivalTime))
	}

	return result
}

func findStopTime(events []StopTimeEvent, from int, stopID string, usable func(StopTimeEvent) bool) int {
	for i := from; i < len(events); i++ {
		if events[i].StopID == stopID && usable(events[i]) {
			return i
		}
	}
	return -1
}

func newObservation(tripID string, segment Segment, departure, arrival ServiceSeconds) SegmentObservation {
	observation := SegmentObservation{
		TripID:         tripID,
		SegmentID:      segment.ID,
		SegmentIndex:   segment.Index,
		StartStop:      segment.StartStop,
		EndStop:        segment.EndStop,
		StartSeconds:   departure,
		EndSeconds:     arrival,
		StartTimeHours: departure.Hours(),
		EndTimeHours:   arrival.Hours(),
		DistanceMiles:  segment.DistanceMiles,
	}

	elapsed := arrival.Hours() - departure.Hours()
	if arrival <= departure {
		observation.TimingErr = &InvalidTimingError{
			TripID:       tripID,
			SegmentID:    segment.ID,
			StartSeconds: departure,
			EndSeconds:   arrival,
		}
		return observation
	}

	observation.SpeedMPH = segment.DistanceMiles / elapsed
	return observation
}
