package crs

import "math"

// LambertConformalConic2SP parameters; angles in degrees, false origin in metres.
type LambertConformalConic2SP struct {
	Ellipsoid       Ellipsoid
	StdParallel1    float64
	StdParallel2    float64
	LatitudeOrigin  float64
	CentralMeridian float64
	FalseEasting    float64
	FalseNorthing   float64
}

// Forward returns the projection following Snyder, Map Projections: A Working Manual, p.107.
func (p LambertConformalConic2SP) Forward() ForwardFunc {
	a := p.Ellipsoid.A
	e := p.Ellipsoid.E()
	e2 := p.Ellipsoid.E2()

	m := func(phi float64) float64 {
		s := math.Sin(phi)
		return math.Cos(phi) / math.Sqrt(1-e2*s*s)
	}
	t := func(phi float64) float64 {
		s := math.Sin(phi)
		return math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*s)/(1+e*s), e/2)
	}

	phi1 := radians(p.StdParallel1)
	phi2 := radians(p.StdParallel2)
	phi0 := radians(p.LatitudeOrigin)
	lambda0 := radians(p.CentralMeridian)

	m1, m2 := m(phi1), m(phi2)
	t0, t1, t2 := t(phi0), t(phi1), t(phi2)

	var n float64
	if phi1 == phi2 {
		n = math.Sin(phi1)
	} else {
		n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	}
	f := m1 / (n * math.Pow(t1, n))
	rho0 := a * f * math.Pow(t0, n)

	return func(lon, lat float64) (float64, float64) {
		rho := a * f * math.Pow(t(radians(lat)), n)
		theta := n * (radians(lon) - lambda0)

		x := p.FalseEasting + rho*math.Sin(theta)
		y := p.FalseNorthing + rho0 - rho*math.Cos(theta)
		return x, y
	}
}
