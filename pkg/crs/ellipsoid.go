package crs

import "math"

type Ellipsoid struct {
	Name string
	A    float64
	InvF float64
}

var (
	GRS80    = Ellipsoid{Name: "GRS 1980", A: 6378137, InvF: 298.257222101}
	WGS84    = Ellipsoid{Name: "WGS 84", A: 6378137, InvF: 298.257223563}
	Airy1830 = Ellipsoid{Name: "Airy 1830", A: 6377563.396, InvF: 299.3249646}
)

func (e Ellipsoid) f() float64 {
	return 1 / e.InvF
}

// E2 is the first eccentricity squared.
func (e Ellipsoid) E2() float64 {
	f := e.f()
	return f * (2 - f)
}

func (e Ellipsoid) E() float64 {
	return math.Sqrt(e.E2())
}
