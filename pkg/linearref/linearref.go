// Package linearref locates points along a line string by normalized arc length.
//
// All measurements are planar in the line's own coordinates, so a lon/lat path is measured in
// degrees. That is fine for ordering and fractions; physical lengths come from package crs.
package linearref

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/exp/slices"
)

var ErrDegenerate = errors.New("path has fewer than two distinct vertices")

type Path struct {
	line       orb.LineString
	cumulative []float64
}

// New validates the line and precomputes cumulative vertex distances.
func New(line orb.LineString) (*Path, error) {
	if len(line) < 2 {
		return nil, ErrDegenerate
	}

	cumulative := make([]float64, len(line))
	for i, point := range line {
		if !Finite(point) {
			return nil, errors.New("path has a non-finite vertex")
		}
		if i > 0 {
			cumulative[i] = cumulative[i-1] + planar.Distance(line[i-1], point)
		}
	}

	if cumulative[len(cumulative)-1] == 0 {
		return nil, ErrDegenerate
	}

	return &Path{line: line, cumulative: cumulative}, nil
}

func (p *Path) Length() float64 {
	return p.cumulative[len(p.cumulative)-1]
}

func (p *Path) LineString() orb.LineString {
	return p.line
}

// NearestPoint is the closest point of the whole path to point.
func (p *Path) NearestPoint(point orb.Point) orb.Point {
	nearest, _ := p.nearest(point)
	return nearest
}

// Project returns how far along the path the point nearest to point lies, as a fraction of
// the path length in [0,1].
func (p *Path) Project(point orb.Point) float64 {
	nearest, segment := p.nearest(point)
	along := p.cumulative[segment] + planar.Distance(p.line[segment], nearest)
	return clamp(along / p.Length())
}

// Interpolate returns the point at the given fraction of the path length.
func (p *Path) Interpolate(fraction float64) orb.Point {
	point, _ := p.at(clamp(fraction) * p.Length())
	return point
}

// Substring returns the part of the path between two fractions. The result runs backwards
// when start is greater than end.
func (p *Path) Substring(start, end float64) orb.LineString {
	reverse := start > end
	if reverse {
		start, end = end, start
	}

	startDistance := clamp(start) * p.Length()
	endDistance := clamp(end) * p.Length()

	first, firstIndex := p.at(startDistance)
	last, lastIndex := p.at(endDistance)

	sub := orb.LineString{first}
	for i := firstIndex + 1; i <= lastIndex; i++ {
		if p.cumulative[i] > startDistance && p.cumulative[i] < endDistance {
			sub = append(sub, p.line[i])
		}
	}
	sub = append(sub, last)

	if reverse {
		sub.Reverse()
	}
	return sub
}

// at finds the point a distance along the path and the index of the segment holding it.
func (p *Path) at(along float64) (orb.Point, int) {
	segment := p.segmentAt(along)

	a, b := p.line[segment], p.line[segment+1]
	span := p.cumulative[segment+1] - p.cumulative[segment]
	if span == 0 {
		return a, segment
	}

	t := (along - p.cumulative[segment]) / span
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}, segment
}

func (p *Path) segmentAt(along float64) int {
	index, _ := slices.BinarySearch(p.cumulative, along)
	segment := index - 1
	if segment < 0 {
		segment = 0
	}
	if segment > len(p.line)-2 {
		segment = len(p.line) - 2
	}
	return segment
}

func (p *Path) nearest(point orb.Point) (orb.Point, int) {
	_, segment := planar.DistanceFromWithIndex(p.line, point)
	if segment < 0 {
		segment = 0
	}
	return projectOntoSegment(point, p.line[segment], p.line[segment+1]), segment
}

func projectOntoSegment(point, a, b orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lengthSquared := dx*dx + dy*dy
	if lengthSquared == 0 {
		return a
	}

	t := clamp(((point[0]-a[0])*dx + (point[1]-a[1])*dy) / lengthSquared)
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Finite reports whether both coordinates are real numbers.
func Finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
