package web

import (
	"math"
	"testing"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
)

func TestFibonacciNodeCountBumpedOdd(t *testing.T) {
	n := fibonacciNodeCount(100)
	if n%2 == 0 {
		t.Fatalf("fibonacciNodeCount(100) = %d, want odd", n)
	}
}

func TestFibonacciLatticePointsSpanLatitudeRange(t *testing.T) {
	points := FibonacciLatticePoints(500)
	if len(points) < 3 {
		t.Fatalf("too few points: %d", len(points))
	}
	minLat, maxLat := 90.0, -90.0
	for _, p := range points {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lat < -90 || p.Lat > 90 {
			t.Fatalf("latitude out of range: %v", p.Lat)
		}
		if p.Lon <= -180 || p.Lon > 180 {
			t.Fatalf("longitude out of normalised range: %v", p.Lon)
		}
	}
	if minLat > -60 || maxLat < 60 {
		t.Errorf("lattice does not span near the poles: min=%v max=%v", minLat, maxLat)
	}
}

func TestRegionalGridPointsCenteredAndSpaced(t *testing.T) {
	center := geo.Point{Lat: 34, Lon: -106}
	grid := RegionalGridPoints(center, 3, 3, 111.19)
	if len(grid) != 9 {
		t.Fatalf("len(grid) = %d, want 9", len(grid))
	}
	// The middle point of a 3x3 grid should be the center itself.
	mid := grid[4]
	if math.Abs(mid.Lat-34) > 1e-9 || math.Abs(mid.Lon-(-106)) > 1e-9 {
		t.Errorf("center point = %+v, want (34, -106)", mid)
	}
}
