package segmentspeed

import (
	"cmp"

	"github.com/travigo/routespeed/pkg/util"
	"golang.org/x/exp/slices"
)

// Assemble expands observations into the plotting table. Every trip gets a closing
// TerminalSegmentID row at the end of the route, and every row is repeated for each date
// the trip's service runs. Trips that cannot be put on the calendar are reported and left
// out; the rest are unaffected.
func Assemble(observations []SegmentObservation, segments []Segment, trips []Trip, calendar *ServiceCalendar) ([]AssembledObservation, []*MissingReferenceDataError) {
	startPositions := make(map[int]float64, len(segments))
	for _, segment := range segments {
		startPositions[segment.Index] = segment.StartPosition
	}

	services := make(map[string]string, len(trips))
	for _, trip := range trips {
		services[trip.ID] = trip.ServiceID
	}

	ordered := slices.Clone(observations)
	slices.SortStableFunc(ordered, func(a, b SegmentObservation) int {
		if c := cmp.Compare(a.TripID, b.TripID); c != 0 {
			return c
		}
		return cmp.Compare(a.SegmentIndex, b.SegmentIndex)
	})

	rows := []AssembledObservation{}
	missing := []*MissingReferenceDataError{}

	for start := 0; start < len(ordered); {
		end := start + 1
		for end < len(ordered) && ordered[end].TripID == ordered[start].TripID {
			end++
		}
		tripObservations := ordered[start:end]
		start = end

		tripID := tripObservations[0].TripID
		serviceID, ok := services[tripID]
		if !ok {
			missing = append(missing, &MissingReferenceDataError{TripID: tripID})
			continue
		}
		dates, ok := calendar.Dates(serviceID)
		if !ok {
			missing = append(missing, &MissingReferenceDataError{TripID: tripID, ServiceID: serviceID})
			continue
		}

		tripRows := make([]AssembledObservation, 0, len(tripObservations)+1)
		for _, observation := range tripObservations {
			tripRows = append(tripRows, AssembledObservation{
				SegmentObservation: observation,
				LinearPosition:     startPositions[observation.SegmentIndex],
			})
		}
		tripRows = append(tripRows, terminalRow(tripObservations[len(tripObservations)-1], len(segments)))

		for _, date := range dates {
			dayType := ClassifyDay(date)
			for _, row := range tripRows {
				row.ServiceDate = date
				row.DayType = dayType
				row.StartDateTime = util.AddTimeToDate(date, int(row.StartSeconds))
				rows = append(rows, row)
			}
		}
	}

	return rows, missing
}

// terminalRow pins the trip to the end of the route at its final arrival time.
func terminalRow(last SegmentObservation, segmentCount int) AssembledObservation {
	return AssembledObservation{
		SegmentObservation: SegmentObservation{
			TripID:         last.TripID,
			SegmentID:      TerminalSegmentID,
			SegmentIndex:   segmentCount,
			StartStop:      last.EndStop,
			EndStop:        last.EndStop,
			StartSeconds:   last.EndSeconds,
			EndSeconds:     last.EndSeconds,
			StartTimeHours: last.EndTimeHours,
			EndTimeHours:   last.EndTimeHours,
			DistanceMiles:  last.DistanceMiles,
		},
		Terminal:       true,
		LinearPosition: 1.0,
	}
}
