package export

import (
	"context"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

type GeoJSONSink struct {
	Path string
}

func NewGeoJSONSink(path string) *GeoJSONSink {
	return &GeoJSONSink{Path: path}
}

func (s *GeoJSONSink) Name() string {
	return "geojson"
}

// FeatureCollection draws each segment as a line carrying its mean speed, and each snapped
// stop as a point.
func FeatureCollection(result *segmentspeed.Result) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()
	stats := result.SegmentStats()

	for _, segment := range result.Segments {
		feature := geojson.NewFeature(orb.Clone(segment.Geometry))
		feature.Properties["kind"] = "segment"
		feature.Properties["shape_id"] = result.ShapeID
		feature.Properties["segment_id"] = segment.ID
		feature.Properties["segment_index"] = segment.Index
		feature.Properties["start_stop"] = segment.StartStop
		feature.Properties["end_stop"] = segment.EndStop
		feature.Properties["distance_miles"] = segment.DistanceMiles

		segmentStats := stats[segment.ID]
		feature.Properties["observations"] = segmentStats.Observations
		feature.Properties["flagged"] = segmentStats.Flagged
		if segmentStats.Observations > 0 {
			feature.Properties["mean_speed_mph"] = segmentStats.MeanSpeedMPH
		}

		collection.Append(feature)
	}

	for _, stop := range result.Stops {
		feature := geojson.NewFeature(stop.Snapped)
		feature.Properties["kind"] = "stop"
		feature.Properties["stop_id"] = stop.ID
		feature.Properties["stop_name"] = stop.Name
		feature.Properties["linear_ref_position"] = stop.Position
		collection.Append(feature)
	}

	return collection
}

func (s *GeoJSONSink) Write(_ context.Context, result *segmentspeed.Result) error {
	collection := FeatureCollection(result)

	body, err := collection.MarshalJSON()
	if err != nil {
		return err
	}

	log.Info().Str("path", s.Path).Int("features", len(collection.Features)).Msg("Wrote GeoJSON")
	return os.WriteFile(s.Path, body, 0o644)
}

func (s *GeoJSONSink) Close() error {
	return nil
}
