package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// ShapeRecord summarises one shape held in a results database.
type ShapeRecord struct {
	ShapeID      string  `json:"shape_id" groups:"basic,detailed"`
	Segments     int     `json:"segments" groups:"basic,detailed"`
	RouteMiles   float64 `json:"route_miles" groups:"basic,detailed"`
	Observations int     `json:"observations" groups:"basic,detailed"`
	Flagged      int     `json:"flagged" groups:"detailed"`
}

// ObservationQuery narrows the rows returned for a shape. Empty fields match everything.
type ObservationQuery struct {
	TripID  string
	Date    string
	DayType string
}

// SQLiteStore reads back what SQLiteSink wrote.
type SQLiteStore struct {
	Path string

	conn *sql.DB
}

func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	var tables int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('segments', 'observations')",
	).Scan(&tables)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if tables != 2 {
		conn.Close()
		return nil, fmt.Errorf("%s is not a routespeed database", path)
	}

	return &SQLiteStore{Path: path, conn: conn}, nil
}

func (s *SQLiteStore) Shapes(ctx context.Context) ([]*ShapeRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT s.shape_id, COUNT(*), SUM(s.distance_miles),
		(SELECT COUNT(*) FROM observations o WHERE o.shape_id = s.shape_id AND o.terminal = 0),
		(SELECT COUNT(*) FROM observations o WHERE o.shape_id = s.shape_id AND o.flag != '')
		FROM segments s GROUP BY s.shape_id ORDER BY s.shape_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shapes := []*ShapeRecord{}
	for rows.Next() {
		shape := &ShapeRecord{}
		if err := rows.Scan(&shape.ShapeID, &shape.Segments, &shape.RouteMiles, &shape.Observations, &shape.Flagged); err != nil {
			return nil, err
		}
		shapes = append(shapes, shape)
	}
	return shapes, rows.Err()
}

// Segments returns the shape's segments in route order, or none for an unknown shape.
func (s *SQLiteStore) Segments(ctx context.Context, shapeID string) ([]*SegmentRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT segment_id, segment_index, start_stop, end_stop,
		start_position, end_position, distance_miles, geometry
		FROM segments WHERE shape_id = ? ORDER BY segment_index`, shapeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	segments := []*SegmentRecord{}
	for rows.Next() {
		segment := &SegmentRecord{}
		var geometry string
		err := rows.Scan(&segment.ID, &segment.Index, &segment.StartStop, &segment.EndStop,
			&segment.StartPosition, &segment.EndPosition, &segment.DistanceMiles, &geometry)
		if err != nil {
			return nil, err
		}

		if geometry != "" {
			line, err := wkt.UnmarshalLineString(geometry)
			if err != nil {
				return nil, fmt.Errorf("segment %s geometry: %w", segment.ID, err)
			}
			segment.Geometry = coordinates(line)
		}

		segments = append(segments, segment)
	}
	return segments, rows.Err()
}

// Observations returns the shape's rows in time series order.
func (s *SQLiteStore) Observations(ctx context.Context, shapeID string, query ObservationQuery) ([]*ObservationRecord, error) {
	where := []string{"shape_id = ?"}
	args := []any{shapeID}
	if query.TripID != "" {
		where = append(where, "trip_id = ?")
		args = append(args, query.TripID)
	}
	if query.Date != "" {
		where = append(where, "service_date = ?")
		args = append(args, query.Date)
	}
	if query.DayType != "" {
		where = append(where, "day_type = ?")
		args = append(args, query.DayType)
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT shape_id, trip_id, segment_id, segment_index, start_stop, end_stop,
		start_time_hours, end_time_hours, distance_miles, speed_mph, linear_ref_position,
		service_date, day_type, start_datetime, flag, terminal
		FROM observations WHERE `+strings.Join(where, " AND ")+`
		ORDER BY trip_id, service_date, segment_index`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*ObservationRecord{}
	for rows.Next() {
		record := &ObservationRecord{}
		err := rows.Scan(&record.ShapeID, &record.TripID, &record.SegmentID, &record.SegmentIndex,
			&record.StartStop, &record.EndStop, &record.StartTimeHours, &record.EndTimeHours,
			&record.DistanceMiles, &record.SpeedMPH, &record.LinearPosition,
			&record.Date, &record.DayType, &record.StartDateTime, &record.Flag, &record.Terminal)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
