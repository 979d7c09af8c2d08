// Package geo provides the great-circle geometry used throughout the
// detection web: converting geographic coordinates to Cartesian unit
// vectors for fast dot-product distance checks, and computing great-circle
// delta and azimuth. Regional/global point-set generation lives in package
// web (geometry.go).
//
// Vector plumbing is built on gonum.org/v1/gonum/spatial/r3 rather than
// hand-rolled [3]float64 math, the same dependency the teacher already
// carries (used there for plotting/statistics) extended here to spatial
// geometry.
package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// EarthRadiusKM is the mean Earth radius used for all distance conversions.
const EarthRadiusKM = 6371.0

// Point is a geographic coordinate: latitude/longitude in degrees, depth in
// kilometres below the surface (0 at the surface, positive downward).
type Point struct {
	Lat   float64
	Lon   float64
	Depth float64
}

// UnitVector returns the Cartesian unit vector for the point's surface
// projection (depth is ignored — this is purely a direction on the unit
// sphere, used for fast great-circle dot products).
func (p Point) UnitVector() r3.Vec {
	latRad := p.Lat * math.Pi / 180
	lonRad := p.Lon * math.Pi / 180
	cosLat := math.Cos(latRad)
	return r3.Vec{
		X: cosLat * math.Cos(lonRad),
		Y: cosLat * math.Sin(lonRad),
		Z: math.Sin(latRad),
	}
}

// DeltaRad returns the great-circle angular separation, in radians, between
// two points using their precomputed unit vectors. Clamps the dot product
// to [-1, 1] to guard against floating-point overshoot at antipodal/
// coincident points.
func DeltaRad(a, b r3.Vec) float64 {
	dot := r3.Dot(a, b)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}

// DeltaDeg is DeltaRad converted to degrees.
func DeltaDeg(a, b r3.Vec) float64 {
	return DeltaRad(a, b) * 180 / math.Pi
}

// Delta computes the great-circle angular separation in degrees directly
// from two Points (convenience wrapper around UnitVector + DeltaDeg).
func Delta(a, b Point) float64 {
	return DeltaDeg(a.UnitVector(), b.UnitVector())
}

// Azimuth returns the initial bearing in degrees [0, 360) travelling from a
// to b along the great circle.
func Azimuth(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(theta+360, 360)
}

// AzimuthDiff returns the smallest wrap-aware absolute difference between
// two azimuths in degrees, always in [0, 180].
func AzimuthDiff(a, b float64) float64 {
	d := math.Mod(a-b+540, 360) - 180
	if d < 0 {
		d = -d
	}
	return d
}

// KMPerDegreeLat is the approximate km-per-degree-of-latitude used for
// regional grid spacing (spec §4.4.1: r / 111.19 degrees).
const KMPerDegreeLat = 111.19
