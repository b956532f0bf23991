package routespeed

import (
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

type StopSummary struct {
	ID       string
	Name     string
	Position float64
}

type SegmentSummary struct {
	ID            string
	DistanceMiles float64
	Observations  int
	MeanSpeedMPH  float64
}

type Summary struct {
	ShapeID           string
	System            string
	Stops             []StopSummary
	Segments          []SegmentSummary
	RouteMiles        float64
	Observations      int
	Flagged           int
	Skipped           int
	Rows              int
	MissingReferences []string
}

func Summarise(result *segmentspeed.Result) *Summary {
	summary := &Summary{
		ShapeID:      result.ShapeID,
		Observations: len(result.Observations),
		Flagged:      result.FlaggedCount(),
		Skipped:      result.Skipped,
		Rows:         len(result.Rows),
	}
	if result.System != nil {
		summary.System = result.System.String()
	}

	for _, stop := range result.Stops {
		summary.Stops = append(summary.Stops, StopSummary{ID: stop.ID, Name: stop.Name, Position: stop.Position})
	}

	stats := result.SegmentStats()
	for _, segment := range result.Segments {
		summary.Segments = append(summary.Segments, SegmentSummary{
			ID:            segment.ID,
			DistanceMiles: segment.DistanceMiles,
			Observations:  stats[segment.ID].Observations,
			MeanSpeedMPH:  stats[segment.ID].MeanSpeedMPH,
		})
		summary.RouteMiles += segment.DistanceMiles
	}

	for _, missing := range result.MissingReferences {
		summary.MissingReferences = append(summary.MissingReferences, missing.Error())
	}

	return summary
}
