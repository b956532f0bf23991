// Package crs holds the projected reference systems routespeed measures distance in.
//
// Only the forward projection (geographic lon/lat to projected x/y) is implemented. Datum
// shifts between WGS84 and the system's own datum are ignored: they move absolute positions
// by at most a few hundred metres and leave lengths effectively unchanged.
package crs

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// DefaultEPSG is NAD83(2011) / Oregon South (ft). It is only correct for routes in southern
// Oregon; anything else should configure its own system.
const DefaultEPSG = 6561

const FeetPerMile = 5280

var (
	ErrUnknownSystem    = errors.New("unknown projected reference system")
	ErrOutsideAreaOfUse = errors.New("geometry is outside the reference system's area of use")
)

type Unit struct {
	Name   string
	Metres float64
}

var (
	Metre             = Unit{Name: "metre", Metres: 1}
	InternationalFoot = Unit{Name: "foot", Metres: 0.3048}
	USSurveyFoot      = Unit{Name: "US survey foot", Metres: 1200.0 / 3937.0}
)

// ForwardFunc maps geographic degrees to projected metres.
type ForwardFunc func(lon, lat float64) (x, y float64)

type System struct {
	EPSG      int
	Name      string
	Unit      Unit
	AreaOfUse orb.Bound

	forward ForwardFunc
}

// Custom builds a system that is not in the registry, e.g. a local engineering frame.
// forward must return metres.
func Custom(name string, unit Unit, areaOfUse orb.Bound, forward ForwardFunc) *System {
	return &System{
		Name:      name,
		Unit:      unit,
		AreaOfUse: areaOfUse,
		forward:   forward,
	}
}

func (s *System) String() string {
	if s.EPSG == 0 {
		return s.Name
	}
	return fmt.Sprintf("EPSG:%d %s", s.EPSG, s.Name)
}

// Forward projects a lon/lat pair into the system's own units.
func (s *System) Forward(lon, lat float64) (x, y float64) {
	x, y = s.forward(lon, lat)
	return x / s.Unit.Metres, y / s.Unit.Metres
}

func (s *System) Projection() orb.Projection {
	return func(p orb.Point) orb.Point {
		x, y := s.Forward(p[0], p[1])
		return orb.Point{x, y}
	}
}

func (s *System) ToFeet(v float64) float64 {
	return v * s.Unit.Metres / InternationalFoot.Metres
}

// Covers reports whether the whole bound lies inside the area of use.
func (s *System) Covers(b orb.Bound) bool {
	return s.AreaOfUse.Contains(b.Min) && s.AreaOfUse.Contains(b.Max)
}

// Length is the planar length of a lon/lat line string once projected, in system units.
// The input is left untouched.
func (s *System) Length(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	projected := project.LineString(ls.Clone(), s.Projection())
	return planar.Length(projected)
}

func (s *System) LengthMiles(ls orb.LineString) float64 {
	return s.ToFeet(s.Length(ls)) / FeetPerMile
}

func dms(degrees, minutes float64) float64 {
	return math.Copysign(math.Abs(degrees)+minutes/60, degrees)
}

func radians(d float64) float64 {
	return d * math.Pi / 180
}
