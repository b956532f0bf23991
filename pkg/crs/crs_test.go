package crs

import (
	"testing"

	"github.com/paulcager/osgridref"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	system, err := Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultEPSG, system.EPSG)
	assert.Equal(t, InternationalFoot, system.Unit)

	_, err = Lookup(4326)
	assert.ErrorIs(t, err, ErrUnknownSystem)

	utm, err := Lookup(32610)
	require.NoError(t, err)
	assert.Equal(t, "WGS 84 / UTM zone 10N", utm.Name)
}

func TestFalseOrigin(t *testing.T) {
	tests := []struct {
		epsg     int
		lon, lat float64
		x, y     float64
	}{
		{epsg: 6561, lon: -120.5, lat: dms(41, 40), x: 1500000 / 0.3048, y: 0},
		{epsg: 6560, lon: -120.5, lat: dms(41, 40), x: 1500000, y: 0},
		{epsg: 6559, lon: -120.5, lat: dms(43, 40), x: 2500000 / 0.3048, y: 0},
		{epsg: 2992, lon: -120.5, lat: 41.75, x: 400000 / 0.3048, y: 0},
		{epsg: 32633, lon: 15, lat: 0, x: 500000, y: 0},
		{epsg: 32733, lon: 15, lat: 0, x: 500000, y: 10000000},
		{epsg: 27700, lon: -2, lat: 49, x: 400000, y: -100000},
	}

	for _, test := range tests {
		system, err := Lookup(test.epsg)
		require.NoError(t, err)

		x, y := system.Forward(test.lon, test.lat)
		assert.InDelta(t, test.x, x, 1e-6, "EPSG:%d x", test.epsg)
		assert.InDelta(t, test.y, y, 1e-6, "EPSG:%d y", test.epsg)
	}
}

func TestBritishNationalGrid(t *testing.T) {
	system, err := Lookup(27700)
	require.NoError(t, err)

	// OSGB36 coordinates of the Ordnance Survey worked example
	x, y := system.Forward(dms(1, 43)+4.5177/3600, dms(52, 39)+27.2531/3600)
	assert.InDelta(t, 651409.903, x, 1)
	assert.InDelta(t, 313177.270, y, 1)

	// Going back through osgridref lands on WGS84, so allow for the datum shift
	gridRef, err := osgridref.ParseOsGridRef("651409,313177")
	require.NoError(t, err)
	lat, lon := gridRef.ToLatLon()

	x, y = system.Forward(lon, lat)
	assert.InDelta(t, 651409, x, 200)
	assert.InDelta(t, 313177, y, 200)
}

func TestLengthMatchesGeodesic(t *testing.T) {
	tests := []struct {
		epsg int
		line orb.LineString
	}{
		{epsg: 6561, line: orb.LineString{{-122.8756, 42.3265}, {-122.8601, 42.3301}, {-122.8421, 42.3412}}},
		{epsg: 6559, line: orb.LineString{{-122.6765, 45.5231}, {-122.6587, 45.5120}}},
		{epsg: 27700, line: orb.LineString{{-0.1276, 51.5072}, {-0.0877, 51.5145}}},
		{epsg: 32610, line: orb.LineString{{-122.4194, 37.7749}, {-122.4094, 37.7849}}},
	}

	for _, test := range tests {
		system, err := Lookup(test.epsg)
		require.NoError(t, err)

		metres := system.ToFeet(system.Length(test.line)) * 0.3048
		expected := geo.Length(test.line)
		assert.InEpsilon(t, expected, metres, 0.005, "EPSG:%d", test.epsg)
	}
}

func TestLengthDoesNotMutate(t *testing.T) {
	system, err := Lookup(DefaultEPSG)
	require.NoError(t, err)

	line := orb.LineString{{-122.8756, 42.3265}, {-122.8421, 42.3412}}
	original := line.Clone()

	system.Length(line)
	assert.Equal(t, original, line)
}

func TestCustomSystemMiles(t *testing.T) {
	system := Custom("local", InternationalFoot, orb.Bound{Max: orb.Point{1e6, 1e6}}, func(x, y float64) (float64, float64) {
		return x * 0.3048, y * 0.3048
	})

	assert.InDelta(t, 3.0, system.LengthMiles(orb.LineString{{0, 0}, {15840, 0}}), 1e-9)
	assert.Equal(t, "local", system.String())
}

func TestCovers(t *testing.T) {
	system, err := Lookup(DefaultEPSG)
	require.NoError(t, err)

	medford := orb.LineString{{-122.8756, 42.3265}, {-122.8421, 42.3412}}
	london := orb.LineString{{-0.1276, 51.5072}, {-0.0877, 51.5145}}

	assert.True(t, system.Covers(medford.Bound()))
	assert.False(t, system.Covers(london.Bound()))
}

func TestSystemsOrdered(t *testing.T) {
	systems := Systems()
	require.NotEmpty(t, systems)

	for i := 1; i < len(systems); i++ {
		assert.Less(t, systems[i-1].EPSG, systems[i].EPSG)
	}
}
