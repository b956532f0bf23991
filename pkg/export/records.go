package export

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// ObservationRecord is one row of the assembled time series as it is written out.
type ObservationRecord struct {
	ShapeID        string  `csv:"-" json:"shape_id" groups:"detailed"`
	TripID         string  `csv:"trip_id" json:"trip_id" groups:"basic,detailed"`
	SegmentID      string  `csv:"segment_id" json:"segment_id" groups:"basic,detailed"`
	SegmentIndex   int     `csv:"-" json:"segment_index" groups:"detailed"`
	StartStop      string  `csv:"start_stop" json:"start_stop" groups:"basic,detailed"`
	EndStop        string  `csv:"end_stop" json:"end_stop" groups:"basic,detailed"`
	StartTimeHours float64 `csv:"start_time_hours" json:"start_time_hours" groups:"basic,detailed"`
	EndTimeHours   float64 `csv:"end_time_hours" json:"end_time_hours" groups:"basic,detailed"`
	DistanceMiles  float64 `csv:"segment_distance_miles" json:"segment_distance_miles" groups:"basic,detailed"`
	SpeedMPH       float64 `csv:"segment_speed_mph" json:"segment_speed_mph" groups:"basic,detailed"`
	LinearPosition float64 `csv:"linear_ref_position" json:"linear_ref_position" groups:"basic,detailed"`
	Date           string  `csv:"date" json:"date" groups:"basic,detailed"`
	DayType        string  `csv:"day_type" json:"day_type" groups:"basic,detailed"`
	StartDateTime  string  `csv:"start_datetime" json:"start_datetime" groups:"basic,detailed"`
	Flag           string  `csv:"flag" json:"flag,omitempty" groups:"basic,detailed"`
	Terminal       bool    `csv:"-" json:"terminal" groups:"detailed"`
}

type SegmentRecord struct {
	ID            string      `json:"segment_id" groups:"basic,detailed"`
	Index         int         `json:"segment_index" groups:"basic,detailed"`
	StartStop     string      `json:"start_stop" groups:"basic,detailed"`
	EndStop       string      `json:"end_stop" groups:"basic,detailed"`
	StartPosition float64     `json:"start_position" groups:"detailed"`
	EndPosition   float64     `json:"end_position" groups:"detailed"`
	DistanceMiles float64     `json:"distance_miles" groups:"basic,detailed"`
	Geometry      [][]float64 `json:"geometry" groups:"detailed"`
}

func observationRecords(result *segmentspeed.Result) []*ObservationRecord {
	records := make([]*ObservationRecord, 0, len(result.Rows))
	for i := range result.Rows {
		row := &result.Rows[i]
		records = append(records, &ObservationRecord{
			ShapeID:        result.ShapeID,
			TripID:         row.TripID,
			SegmentID:      row.SegmentID,
			SegmentIndex:   row.SegmentIndex,
			StartStop:      row.StartStop,
			EndStop:        row.EndStop,
			StartTimeHours: row.StartTimeHours,
			EndTimeHours:   row.EndTimeHours,
			DistanceMiles:  row.DistanceMiles,
			SpeedMPH:       row.SpeedMPH,
			LinearPosition: row.LinearPosition,
			Date:           row.ServiceDate.Format(dateLayout),
			DayType:        string(row.DayType),
			StartDateTime:  row.StartDateTime.Format(dateTimeLayout),
			Flag:           row.Flag(),
			Terminal:       row.Terminal,
		})
	}
	return records
}

func segmentRecords(result *segmentspeed.Result) []*SegmentRecord {
	records := make([]*SegmentRecord, 0, len(result.Segments))
	for _, segment := range result.Segments {
		records = append(records, &SegmentRecord{
			ID:            segment.ID,
			Index:         segment.Index,
			StartStop:     segment.StartStop,
			EndStop:       segment.EndStop,
			StartPosition: segment.StartPosition,
			EndPosition:   segment.EndPosition,
			DistanceMiles: segment.DistanceMiles,
			Geometry:      coordinates(segment.Geometry),
		})
	}
	return records
}

func coordinates(line orb.LineString) [][]float64 {
	points := make([][]float64, 0, len(line))
	for _, point := range line {
		points = append(points, []float64{point.Lon(), point.Lat()})
	}
	return points
}

// SegmentSpeedDocument is stored once per shape, trip, segment and service date in the
// document stores. WriteID is shared by every document of one write, so documents of the
// same shape left over from an earlier write can be found and removed.
type SegmentSpeedDocument struct {
	ShapeID        string
	TripID         string
	SegmentID      string
	SegmentIndex   int
	StartStop      string
	EndStop        string
	StartTimeHours float64
	EndTimeHours   float64
	DistanceMiles  float64
	SpeedMPH       float64
	LinearPosition float64
	ServiceDate    time.Time
	DayType        string
	StartDateTime  time.Time
	Flag           string
	Terminal       bool

	WriteID              string
	ModificationDateTime time.Time
}

func speedDocuments(result *segmentspeed.Result, now time.Time, writeID string) []*SegmentSpeedDocument {
	documents := make([]*SegmentSpeedDocument, 0, len(result.Rows))
	for i := range result.Rows {
		row := &result.Rows[i]
		documents = append(documents, &SegmentSpeedDocument{
			ShapeID:              result.ShapeID,
			TripID:               row.TripID,
			SegmentID:            row.SegmentID,
			SegmentIndex:         row.SegmentIndex,
			StartStop:            row.StartStop,
			EndStop:              row.EndStop,
			StartTimeHours:       row.StartTimeHours,
			EndTimeHours:         row.EndTimeHours,
			DistanceMiles:        row.DistanceMiles,
			SpeedMPH:             row.SpeedMPH,
			LinearPosition:       row.LinearPosition,
			ServiceDate:          row.ServiceDate,
			DayType:              string(row.DayType),
			StartDateTime:        row.StartDateTime,
			Flag:                 row.Flag(),
			Terminal:             row.Terminal,
			WriteID:              writeID,
			ModificationDateTime: now,
		})
	}
	return documents
}

// DocumentID is the document's natural key, stable across reruns.
func (d *SegmentSpeedDocument) DocumentID() string {
	return d.ShapeID + "/" + d.TripID + "/" + d.SegmentID + "/" + d.ServiceDate.Format(dateLayout)
}
