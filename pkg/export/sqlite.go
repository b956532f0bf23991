package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteSink keeps one shape's segments and observations per database file. Writing a
// shape again replaces its previous rows.
type SQLiteSink struct {
	Path string

	conn *sql.DB
}

func NewSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteSink{Path: path, conn: conn}, nil
}

func (s *SQLiteSink) Name() string {
	return "sqlite"
}

func (s *SQLiteSink) Write(ctx context.Context, result *segmentspeed.Result) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"segments", "observations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE shape_id = ?", result.ShapeID); err != nil {
			return err
		}
	}

	segmentStatement, err := tx.PrepareContext(ctx, `INSERT INTO segments
		(shape_id, segment_id, segment_index, start_stop, end_stop, start_position, end_position, distance_miles, geometry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer segmentStatement.Close()

	for _, segment := range result.Segments {
		_, err := segmentStatement.ExecContext(ctx,
			result.ShapeID, segment.ID, segment.Index, segment.StartStop, segment.EndStop,
			segment.StartPosition, segment.EndPosition, segment.DistanceMiles, wkt.MarshalString(segment.Geometry),
		)
		if err != nil {
			return fmt.Errorf("insert segment %s: %w", segment.ID, err)
		}
	}

	observationStatement, err := tx.PrepareContext(ctx, `INSERT INTO observations
		(shape_id, trip_id, segment_id, segment_index, start_stop, end_stop, start_time_hours, end_time_hours,
		 distance_miles, speed_mph, linear_ref_position, service_date, day_type, start_datetime, flag, terminal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer observationStatement.Close()

	records := observationRecords(result)
	for _, record := range records {
		_, err := observationStatement.ExecContext(ctx,
			record.ShapeID, record.TripID, record.SegmentID, record.SegmentIndex, record.StartStop, record.EndStop,
			record.StartTimeHours, record.EndTimeHours, record.DistanceMiles, record.SpeedMPH, record.LinearPosition,
			record.Date, record.DayType, record.StartDateTime, record.Flag, record.Terminal,
		)
		if err != nil {
			return fmt.Errorf("insert observation %s/%s: %w", record.TripID, record.SegmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info().Str("path", s.Path).Int("segments", len(result.Segments)).Int("rows", len(records)).Msg("Wrote SQLite")
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.conn.Close()
}
