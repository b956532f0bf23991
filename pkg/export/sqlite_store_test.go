package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writtenStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "speeds.db")
	ctx := context.Background()

	sink, err := NewSQLiteSink(ctx, path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(ctx, sampleResult()))
	require.NoError(t, sink.Close())

	store, err := OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStoreShapes(t *testing.T) {
	shapes, err := writtenStore(t).Shapes(context.Background())
	require.NoError(t, err)

	require.Len(t, shapes, 1)
	assert.Equal(t, &ShapeRecord{ShapeID: "SH1", Segments: 2, RouteMiles: 2, Observations: 4, Flagged: 1}, shapes[0])
}

func TestSQLiteStoreSegments(t *testing.T) {
	store := writtenStore(t)

	segments, err := store.Segments(context.Background(), "SH1")
	require.NoError(t, err)

	require.Len(t, segments, 2)
	assert.Equal(t, "S2-S3", segments[1].ID)
	assert.Equal(t, 0.5, segments[1].StartPosition)
	assert.Equal(t, [][]float64{{-122.86, 42.32}, {-122.85, 42.32}}, segments[1].Geometry)

	missing, err := store.Segments(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSQLiteStoreObservations(t *testing.T) {
	store := writtenStore(t)
	ctx := context.Background()

	all, err := store.Observations(ctx, "SH1", ObservationQuery{})
	require.NoError(t, err)
	assert.Equal(t, observationRecords(sampleResult()), all)

	tripB, err := store.Observations(ctx, "SH1", ObservationQuery{TripID: "B", DayType: "weekday"})
	require.NoError(t, err)
	require.Len(t, tripB, 3)
	assert.Equal(t, "invalid_timing", tripB[1].Flag)
	assert.True(t, tripB[2].Terminal)

	otherDay, err := store.Observations(ctx, "SH1", ObservationQuery{Date: "2024-06-04"})
	require.NoError(t, err)
	assert.Empty(t, otherDay)
}

func TestOpenSQLiteStoreRejectsMissingFile(t *testing.T) {
	_, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}
