package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphSegments(t *testing.T) {
	segments := graphSegments(sampleResult())
	require.Len(t, segments, 2)

	first := segments[0].(map[string]any)
	assert.Equal(t, "S1", first["start_stop"])
	assert.Equal(t, "S2", first["end_stop"])
	assert.Equal(t, int64(2), first["observations"])
	assert.InDelta(t, 11.0, first["mean_speed_mph"], 1e-9)

	second := segments[1].(map[string]any)
	assert.Equal(t, int64(1), second["segment_index"])
	assert.Equal(t, int64(1), second["flagged"])
	assert.InDelta(t, 15.0, second["mean_speed_mph"], 1e-9)
}

func TestGraphStops(t *testing.T) {
	stops := graphStops(sampleResult())
	require.Len(t, stops, 3)

	assert.Equal(t, map[string]any{"id": "S2", "name": "Second", "lon": -122.86, "lat": 42.32}, stops[1])
}

func TestNewGraphSinkRejectsBadURI(t *testing.T) {
	_, err := NewGraphSink(context.Background(), "http://graph:7474", "neo4j", "secret", "neo4j")
	assert.Error(t, err)
}
