package web

import (
	"math"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
)

// goldenAngleRatio is phi = (1+sqrt(5))/2, the Fibonacci-lattice constant.
const goldenAngleRatio = 1.618033988749895

// FibonacciLatticePoints returns an approximately equidistant global point
// set via the Fibonacci-lattice rule (§4.4.1): for i in [-M, M],
//
//	lat = asin(2i/(2M+1))
//	lon = (i mod phi) * 360/phi
//
// with phi = (1+sqrt(5))/2. The point count is derived from the requested
// inter-node resolution by the empirical fit N ~= 5e8 * r^-1.965, bumped
// up to the next odd number (so M = (N-1)/2 is an integer and the lattice
// is symmetric about the equator).
func FibonacciLatticePoints(resolutionKM float64) []geo.Point {
	n := fibonacciNodeCount(resolutionKM)
	m := (n - 1) / 2
	points := make([]geo.Point, 0, n)
	for i := -m; i <= m; i++ {
		lat := math.Asin(2*float64(i)/float64(2*m+1)) * 180 / math.Pi
		lon := math.Mod(float64(i), goldenAngleRatio) * 360 / goldenAngleRatio
		lon = math.Mod(lon+540, 360) - 180 // normalise to (-180, 180]
		points = append(points, geo.Point{Lat: lat, Lon: lon})
	}
	return points
}

// fibonacciNodeCount applies N ~= 5e8 * r^-1.965 and bumps the result to
// the nearest odd integer no smaller than 1.
func fibonacciNodeCount(resolutionKM float64) int {
	if resolutionKM <= 0 {
		resolutionKM = 1
	}
	n := int(math.Round(5e8 * math.Pow(resolutionKM, -1.965)))
	if n < 1 {
		n = 1
	}
	if n%2 == 0 {
		n++
	}
	return n
}

// RegionalGridPoints returns a rows x cols rectangular lat/lon grid
// centred at center, with latitude step r/111.19 degrees and longitude
// step scaled by 1/cos(lat_center) so physical east-west spacing matches
// the north-south spacing (§4.4.1).
func RegionalGridPoints(center geo.Point, rows, cols int, resolutionKM float64) []geo.Point {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	latStep := resolutionKM / geo.KMPerDegreeLat
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-6 {
		cosLat = 1e-6 // guard the poles: avoid a divide blow-up
	}
	lonStep := latStep / cosLat

	points := make([]geo.Point, 0, rows*cols)
	rowOffset := float64(rows-1) / 2
	colOffset := float64(cols-1) / 2
	for r := 0; r < rows; r++ {
		lat := center.Lat + (float64(r)-rowOffset)*latStep
		for c := 0; c < cols; c++ {
			lon := center.Lon + (float64(c)-colOffset)*lonStep
			points = append(points, geo.Point{Lat: lat, Lon: lon})
		}
	}
	return points
}
