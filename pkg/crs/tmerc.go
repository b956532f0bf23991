package crs

import "math"

// TransverseMercator parameters; angles in degrees, false origin in metres.
type TransverseMercator struct {
	Ellipsoid       Ellipsoid
	LatitudeOrigin  float64
	CentralMeridian float64
	ScaleFactor     float64
	FalseEasting    float64
	FalseNorthing   float64
}

// Forward returns the ellipsoidal series of Snyder, Map Projections: A Working Manual, p.61.
// Accurate to well under a metre within a few degrees of the central meridian.
func (p TransverseMercator) Forward() ForwardFunc {
	a := p.Ellipsoid.A
	e2 := p.Ellipsoid.E2()
	e4 := e2 * e2
	e6 := e4 * e2
	ep2 := e2 / (1 - e2)
	k0 := p.ScaleFactor
	lambda0 := radians(p.CentralMeridian)

	meridian := func(phi float64) float64 {
		return a * ((1-e2/4-3*e4/64-5*e6/256)*phi -
			(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
			(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
			(35*e6/3072)*math.Sin(6*phi))
	}
	m0 := meridian(radians(p.LatitudeOrigin))

	return func(lon, lat float64) (float64, float64) {
		phi := radians(lat)
		sinPhi, cosPhi := math.Sincos(phi)
		tanPhi := math.Tan(phi)

		n := a / math.Sqrt(1-e2*sinPhi*sinPhi)
		t := tanPhi * tanPhi
		c := ep2 * cosPhi * cosPhi
		A := (radians(lon) - lambda0) * cosPhi
		A2 := A * A

		x := k0*n*(A+(1-t+c)*A2*A/6+(5-18*t+t*t+72*c-58*ep2)*A2*A2*A/120) + p.FalseEasting
		y := k0*(meridian(phi)-m0+n*tanPhi*(A2/2+(5-t+9*c+4*c*c)*A2*A2/24+
			(61-58*t+t*t+600*c-330*ep2)*A2*A2*A2/720)) + p.FalseNorthing
		return x, y
	}
}

// UTM returns the Transverse Mercator parameters of a WGS84 UTM zone.
func UTM(zone int, south bool) TransverseMercator {
	tm := TransverseMercator{
		Ellipsoid:       WGS84,
		CentralMeridian: float64(zone*6 - 183),
		ScaleFactor:     0.9996,
		FalseEasting:    500000,
	}
	if south {
		tm.FalseNorthing = 10000000
	}
	return tm
}
