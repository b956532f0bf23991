package export

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

// GraphSink stores stops as nodes and each segment as a SEGMENT relationship between
// its stops, carrying the segment's speed statistics. Relationships from an earlier write
// of the same shape are replaced.
type GraphSink struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewGraphSink(ctx context.Context, uri, username, password, database string) (*GraphSink, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j %s: %w", uri, err)
	}

	return &GraphSink{driver: driver, database: database}, nil
}

func (s *GraphSink) Name() string {
	return "neo4j"
}

func graphStops(result *segmentspeed.Result) []any {
	stops := make([]any, 0, len(result.Stops))
	for _, stop := range result.Stops {
		stops = append(stops, map[string]any{
			"id":   stop.ID,
			"name": stop.Name,
			"lon":  stop.Snapped.Lon(),
			"lat":  stop.Snapped.Lat(),
		})
	}
	return stops
}

func graphSegments(result *segmentspeed.Result) []any {
	stats := result.SegmentStats()

	segments := make([]any, 0, len(result.Segments))
	for _, segment := range result.Segments {
		properties := map[string]any{
			"segment_id":     segment.ID,
			"segment_index":  int64(segment.Index),
			"start_stop":     segment.StartStop,
			"end_stop":       segment.EndStop,
			"start_position": segment.StartPosition,
			"end_position":   segment.EndPosition,
			"distance_miles": segment.DistanceMiles,
			"observations":   int64(0),
			"flagged":        int64(0),
			"mean_speed_mph": nil,
		}
		if stat, ok := stats[segment.ID]; ok {
			properties["observations"] = int64(stat.Observations)
			properties["flagged"] = int64(stat.Flagged)
			if stat.Observations > 0 {
				properties["mean_speed_mph"] = stat.MeanSpeedMPH
			}
		}
		segments = append(segments, properties)
	}
	return segments
}

func (s *GraphSink) Write(ctx context.Context, result *segmentspeed.Result) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MATCH (:Stop)-[r:SEGMENT {shape_id: $shape_id}]->(:Stop) DELETE r",
			map[string]any{"shape_id": result.ShapeID},
		)
		if err != nil {
			return nil, err
		}

		_, err = tx.Run(ctx, `
			UNWIND $stops AS stop
			MERGE (s:Stop {id: stop.id})
			SET s.name = stop.name, s.location = point({longitude: stop.lon, latitude: stop.lat})
			`, map[string]any{"stops": graphStops(result)})
		if err != nil {
			return nil, err
		}

		_, err = tx.Run(ctx, `
			UNWIND $segments AS segment
			MATCH (a:Stop {id: segment.start_stop})
			MATCH (b:Stop {id: segment.end_stop})
			CREATE (a)-[r:SEGMENT]->(b)
			SET r = segment, r.shape_id = $shape_id
			`, map[string]any{
			"shape_id": result.ShapeID,
			"segments": graphSegments(result),
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("write shape %s to neo4j: %w", result.ShapeID, err)
	}

	log.Info().Str("shape", result.ShapeID).Int("segments", len(result.Segments)).Msg("Wrote Neo4j graph")
	return nil
}

func (s *GraphSink) Close() error {
	return s.driver.Close(context.Background())
}
