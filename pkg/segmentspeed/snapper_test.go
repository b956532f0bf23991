package segmentspeed

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapStopsFiltersUntimedStops(t *testing.T) {
	feed := corridorFeed()
	feed.StopTimes = append(feed.StopTimes,
		event("t09", "half", 1, MissingTime, 100),
		event("t09", "half", 2, 200, MissingTime),
	)
	feed.Stops = append(feed.Stops, Stop{ID: "half", Location: orb.Point{10, 10}})

	stops, err := SnapStops(feed.Path, feed.Stops, feed.StopTimes)
	require.NoError(t, err)

	ids := []string{}
	for _, stop := range stops {
		ids = append(ids, stop.ID)
		assert.GreaterOrEqual(t, stop.Position, 0.0)
		assert.LessOrEqual(t, stop.Position, 1.0)
	}
	assert.Equal(t, []string{"S3", "S1", "S4", "S2"}, ids)
}

func TestSnapStopsPositions(t *testing.T) {
	feed := corridorFeed()

	stops, err := SnapStops(feed.Path, feed.Stops, feed.StopTimes)
	require.NoError(t, err)

	expected := map[string]struct {
		position float64
		snapped  orb.Point
	}{
		"S1": {position: 0, snapped: orb.Point{0, 0}},
		"S2": {position: 0.25, snapped: orb.Point{2640, 0}},
		"S3": {position: 0.75, snapped: orb.Point{5280, 2640}},
		"S4": {position: 1, snapped: orb.Point{5280, 5280}},
	}

	for _, stop := range stops {
		want := expected[stop.ID]
		assert.InDelta(t, want.position, stop.Position, 1e-12, stop.ID)
		assert.InDelta(t, want.snapped[0], stop.Snapped[0], 1e-9, stop.ID)
		assert.InDelta(t, want.snapped[1], stop.Snapped[1], 1e-9, stop.ID)
	}
}

func TestSnapStopsGeometryErrors(t *testing.T) {
	feed := threeMileFeed()

	_, err := SnapStops(orb.LineString{}, feed.Stops, feed.StopTimes)
	var geometryErr *GeometryError
	require.True(t, errors.As(err, &geometryErr))
	assert.Empty(t, geometryErr.StopID)

	stops := []Stop{{ID: "A", Location: orb.Point{math.NaN(), 0}}}
	_, err = SnapStops(feed.Path, stops, feed.StopTimes)
	require.True(t, errors.As(err, &geometryErr))
	assert.Equal(t, "A", geometryErr.StopID)
}

func TestSnapStopsDoesNotTouchPath(t *testing.T) {
	feed := corridorFeed()
	original := feed.Path.Clone()

	_, err := SnapStops(feed.Path, feed.Stops, feed.StopTimes)
	require.NoError(t, err)
	assert.Equal(t, original, feed.Path)
}
