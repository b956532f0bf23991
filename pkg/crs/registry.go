package crs

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
)

var (
	oregonNorth  = orb.Bound{Min: orb.Point{-124.17, 43.95}, Max: orb.Point{-116.47, 46.26}}
	oregonSouth  = orb.Bound{Min: orb.Point{-124.65, 41.98}, Max: orb.Point{-116.40, 44.56}}
	oregon       = orb.Bound{Min: orb.Point{-124.65, 41.98}, Max: orb.Point{-116.40, 46.26}}
	greatBritain = orb.Bound{Min: orb.Point{-9.01, 49.75}, Max: orb.Point{2.01, 61.01}}
)

var registry = map[int]*System{}

func register(epsg int, name string, unit Unit, areaOfUse orb.Bound, forward ForwardFunc) {
	registry[epsg] = &System{
		EPSG:      epsg,
		Name:      name,
		Unit:      unit,
		AreaOfUse: areaOfUse,
		forward:   forward,
	}
}

func oregonNorthZone() ForwardFunc {
	return LambertConformalConic2SP{
		Ellipsoid:       GRS80,
		StdParallel1:    dms(46, 0),
		StdParallel2:    dms(44, 20),
		LatitudeOrigin:  dms(43, 40),
		CentralMeridian: dms(-120, 30),
		FalseEasting:    2500000,
	}.Forward()
}

func oregonSouthZone() ForwardFunc {
	return LambertConformalConic2SP{
		Ellipsoid:       GRS80,
		StdParallel1:    dms(44, 0),
		StdParallel2:    dms(42, 20),
		LatitudeOrigin:  dms(41, 40),
		CentralMeridian: dms(-120, 30),
		FalseEasting:    1500000,
	}.Forward()
}

func init() {
	register(6558, "NAD83(2011) / Oregon North", Metre, oregonNorth, oregonNorthZone())
	register(6559, "NAD83(2011) / Oregon North (ft)", InternationalFoot, oregonNorth, oregonNorthZone())
	register(6560, "NAD83(2011) / Oregon South", Metre, oregonSouth, oregonSouthZone())
	register(6561, "NAD83(2011) / Oregon South (ft)", InternationalFoot, oregonSouth, oregonSouthZone())
	register(2269, "NAD83 / Oregon North (ft)", InternationalFoot, oregonNorth, oregonNorthZone())
	register(2270, "NAD83 / Oregon South (ft)", InternationalFoot, oregonSouth, oregonSouthZone())
	register(2913, "NAD83(HARN) / Oregon North (ft)", InternationalFoot, oregonNorth, oregonNorthZone())
	register(2914, "NAD83(HARN) / Oregon South (ft)", InternationalFoot, oregonSouth, oregonSouthZone())
	register(2992, "NAD83 / Oregon GIC Lambert (ft)", InternationalFoot, oregon, LambertConformalConic2SP{
		Ellipsoid:       GRS80,
		StdParallel1:    43,
		StdParallel2:    45.5,
		LatitudeOrigin:  41.75,
		CentralMeridian: -120.5,
		FalseEasting:    400000,
	}.Forward())

	register(27700, "OSGB36 / British National Grid", Metre, greatBritain, TransverseMercator{
		Ellipsoid:       Airy1830,
		LatitudeOrigin:  49,
		CentralMeridian: -2,
		ScaleFactor:     0.9996012717,
		FalseEasting:    400000,
		FalseNorthing:   -100000,
	}.Forward())

	for zone := 1; zone <= 60; zone++ {
		west := float64(zone*6 - 186)
		register(32600+zone, fmt.Sprintf("WGS 84 / UTM zone %dN", zone), Metre,
			orb.Bound{Min: orb.Point{west, 0}, Max: orb.Point{west + 6, 84}}, UTM(zone, false).Forward())
		register(32700+zone, fmt.Sprintf("WGS 84 / UTM zone %dS", zone), Metre,
			orb.Bound{Min: orb.Point{west, -80}, Max: orb.Point{west + 6, 0}}, UTM(zone, true).Forward())
	}
}

func Lookup(epsg int) (*System, error) {
	if epsg == 0 {
		epsg = DefaultEPSG
	}

	system, ok := registry[epsg]
	if !ok {
		return nil, fmt.Errorf("EPSG:%d: %w", epsg, ErrUnknownSystem)
	}
	return system, nil
}

// Systems lists every registered system ordered by EPSG code.
func Systems() []*System {
	systems := make([]*System, 0, len(registry))
	for _, system := range registry {
		systems = append(systems, system)
	}
	sort.Slice(systems, func(i, j int) bool {
		return systems[i].EPSG < systems[j].EPSG
	})
	return systems
}
