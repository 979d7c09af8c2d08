// Package travel implements the per-phase travel-time tables (§4.1), the
// TTT per-hypothesis travel-time set (§4.2), and the 1-D earth-model
// integrator that builds tables from a layered velocity profile.
package travel

import (
	"math"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
)

// NoTime is the sentinel returned wherever the spec calls for "no time":
// a missing travel time, a miss against the associable window, or a
// bilinear lookup whose enclosing cell touches a hole in the branch.
// It is a plain return value, never an error — per §7, NoResult is
// represented by sentinel, not exception.
const NoTime = -1.0

// Table is a single-phase, single-branch (distance x depth) travel-time
// grid. Both axes are indexed through a monotonic Warp so resolution is
// dense near zero distance/depth and coarsens smoothly further out.
// Read-only after construction; concurrent reads require no locking
// (spec §5: "shared travel-time tables are treated as immutable after
// load").
type Table struct {
	BranchName string
	Phases     []string // phases this branch contributes to (comma list in the file)

	Dist  Warp
	Depth Warp

	// TravelTime, DepthDistance and PhaseTag are depth-major:
	// index = depthIndex*Dist.N + distIndex.
	TravelTime    []float64
	DepthDistance []float64
	PhaseTag      []byte

	origin    geo.Point
	originSet bool
}

// NewTable allocates an empty table over the given warps, ready to be
// filled in by the earth-model builder or a file loader.
func NewTable(branchName string, phases []string, dist, depth Warp) *Table {
	n := dist.N * depth.N
	t := &Table{
		BranchName:    branchName,
		Phases:        phases,
		Dist:          dist,
		Depth:         depth,
		TravelTime:    make([]float64, n),
		DepthDistance: make([]float64, n),
		PhaseTag:      make([]byte, n),
	}
	for i := range t.TravelTime {
		t.TravelTime[i] = NoTime
		t.DepthDistance[i] = NoTime
	}
	return t
}

func (t *Table) cellIndex(distIdx, depthIdx int) int {
	return depthIdx*t.Dist.N + distIdx
}

// SetOrigin stores the hypothesized hypocentre so subsequent T(geo) calls
// need only compute the great-circle distance to a station.
func (t *Table) SetOrigin(p geo.Point) {
	t.origin = p
	t.originSet = true
}

// T returns the travel time from the stored origin to station, or NoTime
// if the origin has not been set or no time exists at that distance/depth.
func (t *Table) T(station geo.Point) float64 {
	if !t.originSet {
		return NoTime
	}
	delta := geo.Delta(t.origin, station)
	return t.Lookup(delta, t.origin.Depth)
}

// Lookup performs the bilinear (distance x depth) interpolation described
// in §4.1: both arguments are converted through their warps to fractional
// indices, the four integer corners are fetched, and if any corner is the
// NoTime sentinel the result is NoTime (a branch gap always poisons the
// interpolation rather than silently guessing across it).
func (t *Table) Lookup(distanceDeg, depthKM float64) float64 {
	fi := t.Dist.Index(distanceDeg)
	fj := t.Depth.Index(depthKM)

	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	i1, j1 := i0+1, j0+1
	if i1 > t.Dist.N-1 {
		i1 = t.Dist.N - 1
	}
	if j1 > t.Depth.N-1 {
		j1 = t.Depth.N - 1
	}
	if i0 < 0 {
		i0 = 0
	}
	if j0 < 0 {
		j0 = 0
	}

	v00 := t.TravelTime[t.cellIndex(i0, j0)]
	v10 := t.TravelTime[t.cellIndex(i1, j0)]
	v01 := t.TravelTime[t.cellIndex(i0, j1)]
	v11 := t.TravelTime[t.cellIndex(i1, j1)]
	if v00 < 0 || v10 < 0 || v01 < 0 || v11 < 0 {
		return NoTime
	}

	di := fi - float64(i0)
	dj := fj - float64(j0)

	top := v00 + (v10-v00)*di
	bottom := v01 + (v11-v01)*di
	return top + (bottom-top)*dj
}

// CellTravelTime returns the stored (unfilled-interpolation) travel time
// at an exact grid corner, used by the round-trip file test (§8 scenario
// 6) and by the monotonicity property test.
func (t *Table) CellTravelTime(distIdx, depthIdx int) float64 {
	return t.TravelTime[t.cellIndex(distIdx, depthIdx)]
}

// SetCell stores a travel time / depth-distance / phase tag at an exact
// grid corner. Used by the earth-model builder while filling the table
// and by tests constructing synthetic tables.
func (t *Table) SetCell(distIdx, depthIdx int, travelTime, depthDistance float64, phaseTag byte) {
	idx := t.cellIndex(distIdx, depthIdx)
	t.TravelTime[idx] = travelTime
	t.DepthDistance[idx] = depthDistance
	t.PhaseTag[idx] = phaseTag
}

// PatchHoles linearly interpolates across branch gaps within each depth
// row, per §4.1 ("holes within one depth row are linearly patched across
// the row before serialization"). Leading/trailing holes are left as
// NoTime — there is nothing on one side to interpolate from.
func (t *Table) PatchHoles() {
	for j := 0; j < t.Depth.N; j++ {
		row := j * t.Dist.N
		i := 0
		for i < t.Dist.N {
			if t.TravelTime[row+i] >= 0 {
				i++
				continue
			}
			// Found the start of a gap at i; find its end.
			start := i
			for i < t.Dist.N && t.TravelTime[row+i] < 0 {
				i++
			}
			end := i // first good index after the gap (or N if it runs to the edge)
			if start == 0 || end >= t.Dist.N {
				continue // can't patch an edge-open gap
			}
			lo := t.TravelTime[row+start-1]
			hi := t.TravelTime[row+end]
			span := end - (start - 1)
			for k := start; k < end; k++ {
				frac := float64(k-(start-1)) / float64(span)
				t.TravelTime[row+k] = lo + (hi-lo)*frac
			}
		}
	}
}
