package travel

import (
	"math"
	"testing"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
)

func syntheticTable() *Table {
	dist := NewWarp(0, 100, 4.0, 1.0/10.0, 1.0/25.0, 550)
	depth := NewWarp(0, 700, 4.0, 1.0/10.0, 1.0/25.0, 105)
	tbl := NewTable("P", []string{"P"}, dist, depth)
	for j := 0; j < depth.N; j++ {
		dKM := depth.Value(float64(j))
		for i := 0; i < dist.N; i++ {
			distDeg := dist.Value(float64(i))
			// Simple monotonic synthetic travel time: increases with
			// distance, decreases very slightly with depth.
			tt := distDeg*10.0 - dKM*0.01
			tbl.SetCell(i, j, tt, distDeg, 'P')
		}
	}
	return tbl
}

func TestTableLookupBilinearAtCorners(t *testing.T) {
	tbl := syntheticTable()
	// At an exact grid corner, Lookup should reproduce the stored value
	// (bilinear interpolation degenerates to the corner itself there).
	i, j := 200, 40
	want := tbl.CellTravelTime(i, j)
	distDeg := tbl.Dist.Value(float64(i))
	depthKM := tbl.Depth.Value(float64(j))
	got := tbl.Lookup(distDeg, depthKM)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("Lookup at grid corner (%d,%d): got %v, want %v", i, j, got, want)
	}
}

func TestTableLookupMonotonicInDistance(t *testing.T) {
	tbl := syntheticTable()
	prev := -1.0
	for d := 0.0; d <= 100; d += 0.5 {
		tt := tbl.Lookup(d, 50)
		if tt == NoTime {
			continue
		}
		if prev >= 0 && tt < prev-1e-6 {
			t.Fatalf("travel time not monotonic in distance at d=%v: tt=%v < prev=%v", d, tt, prev)
		}
		prev = tt
	}
}

func TestTableTUsesOriginAndNoTimeBeforeSetOrigin(t *testing.T) {
	tbl := syntheticTable()
	station := geo.Point{Lat: 1, Lon: 1, Depth: 0}
	if got := tbl.T(station); got != NoTime {
		t.Fatalf("T() before SetOrigin: got %v, want NoTime", got)
	}
	tbl.SetOrigin(geo.Point{Lat: 0, Lon: 0, Depth: 10})
	if got := tbl.T(station); got == NoTime {
		t.Fatalf("T() after SetOrigin unexpectedly returned NoTime")
	}
}

func TestTablePatchHolesInterpolatesInteriorGap(t *testing.T) {
	dist := NewWarp(0, 10, 4.0, 1.0/10.0, 1.0/25.0, 11)
	depth := NewWarp(0, 10, 4.0, 1.0/10.0, 1.0/25.0, 2)
	tbl := NewTable("P", []string{"P"}, dist, depth)
	for i := 0; i < dist.N; i++ {
		tbl.SetCell(i, 0, float64(i)*10, float64(i), 'P')
	}
	// Punch a hole at i=5.
	tbl.TravelTime[tbl.cellIndex(5, 0)] = NoTime
	tbl.PatchHoles()
	got := tbl.CellTravelTime(5, 0)
	want := 50.0 // interpolated between i=4 (40) and i=6 (60)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("PatchHoles interior gap: got %v, want %v", got, want)
	}
}

func TestTablePatchHolesLeavesEdgeGapUnpatched(t *testing.T) {
	dist := NewWarp(0, 10, 4.0, 1.0/10.0, 1.0/25.0, 11)
	depth := NewWarp(0, 10, 4.0, 1.0/10.0, 1.0/25.0, 2)
	tbl := NewTable("P", []string{"P"}, dist, depth)
	for i := 1; i < dist.N; i++ {
		tbl.SetCell(i, 0, float64(i)*10, float64(i), 'P')
	}
	// i=0 was never set, so it remains NoTime (an edge-open gap).
	tbl.PatchHoles()
	if got := tbl.CellTravelTime(0, 0); got != NoTime {
		t.Errorf("edge gap at i=0: got %v, want NoTime (unpatchable)", got)
	}
}
