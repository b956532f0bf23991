package linearref

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An L shaped path of length 20: ten units east then ten units north.
var elbow = orb.LineString{{0, 0}, {10, 0}, {10, 10}}

func TestNewRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		line orb.LineString
	}{
		{name: "empty", line: orb.LineString{}},
		{name: "single vertex", line: orb.LineString{{1, 1}}},
		{name: "zero length", line: orb.LineString{{1, 1}, {1, 1}}},
		{name: "nan vertex", line: orb.LineString{{0, 0}, {math.NaN(), 1}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.line)
			assert.Error(t, err)
		})
	}
}

func TestNearestPointAndProject(t *testing.T) {
	path, err := New(elbow)
	require.NoError(t, err)
	assert.Equal(t, 20.0, path.Length())

	tests := []struct {
		name     string
		point    orb.Point
		nearest  orb.Point
		position float64
	}{
		{name: "before start", point: orb.Point{-5, -1}, nearest: orb.Point{0, 0}, position: 0},
		{name: "below first leg", point: orb.Point{5, -3}, nearest: orb.Point{5, 0}, position: 0.25},
		{name: "beside second leg", point: orb.Point{12, 5}, nearest: orb.Point{10, 5}, position: 0.75},
		{name: "beyond end", point: orb.Point{10, 30}, nearest: orb.Point{10, 10}, position: 1},
		{name: "on vertex", point: orb.Point{10, 0}, nearest: orb.Point{10, 0}, position: 0.5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			nearest := path.NearestPoint(test.point)
			assert.InDelta(t, test.nearest[0], nearest[0], 1e-12)
			assert.InDelta(t, test.nearest[1], nearest[1], 1e-12)
			assert.InDelta(t, test.position, path.Project(nearest), 1e-12)
		})
	}
}

func TestInterpolate(t *testing.T) {
	path, err := New(elbow)
	require.NoError(t, err)

	assert.Equal(t, orb.Point{0, 0}, path.Interpolate(0))
	assert.Equal(t, orb.Point{10, 0}, path.Interpolate(0.5))
	assert.Equal(t, orb.Point{10, 5}, path.Interpolate(0.75))
	assert.Equal(t, orb.Point{10, 10}, path.Interpolate(1.5))
}

func TestSubstring(t *testing.T) {
	path, err := New(elbow)
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end float64
		expected   orb.LineString
	}{
		{name: "whole", start: 0, end: 1, expected: elbow},
		{name: "across the corner", start: 0.25, end: 0.75, expected: orb.LineString{{5, 0}, {10, 0}, {10, 5}}},
		{name: "within a leg", start: 0.1, end: 0.3, expected: orb.LineString{{2, 0}, {6, 0}}},
		{name: "ending on the corner", start: 0.25, end: 0.5, expected: orb.LineString{{5, 0}, {10, 0}}},
		{name: "reversed", start: 0.75, end: 0.25, expected: orb.LineString{{10, 5}, {10, 0}, {5, 0}}},
		{name: "zero width", start: 0.5, end: 0.5, expected: orb.LineString{{10, 0}, {10, 0}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sub := path.Substring(test.start, test.end)
			require.Len(t, sub, len(test.expected))
			for i := range sub {
				assert.InDelta(t, test.expected[i][0], sub[i][0], 1e-12)
				assert.InDelta(t, test.expected[i][1], sub[i][1], 1e-12)
			}
		})
	}
}

func TestSubstringsSumToLength(t *testing.T) {
	line := orb.LineString{{0, 0}, {3, 4}, {3, 9}, {-2, 9}, {-2, 20}}
	path, err := New(line)
	require.NoError(t, err)

	cuts := []float64{0, 0.05, 0.2, 0.21, 0.5, 0.77, 1}
	total := 0.0
	for i := 0; i < len(cuts)-1; i++ {
		total += planar.Length(path.Substring(cuts[i], cuts[i+1]))
	}

	assert.InDelta(t, planar.Length(line), total, 1e-9)
}
