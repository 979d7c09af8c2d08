package travel

import (
	"fmt"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
	"github.com/usgs/neic-glass3-sub001/internal/taper"
)

// MaxTravTables bounds how many phase tables a single TTT may hold,
// mirroring the fixed-capacity arrays the spec's reference implementation
// uses for per-hypothesis travel-time sets (§4.2).
const MaxTravTables = 40

// TTT is a per-hypothesis set of travel-time tables: everything a single
// nucleation hypothesis needs to turn an observed arrival time at a
// station into a residual against every candidate phase.
type TTT struct {
	tables  []*Table
	weights map[string]taper.CosineRange
	windows map[string]taper.AssocWindow
	origin  geo.Point
	set     bool
}

// NewTTT returns an empty phase set.
func NewTTT() *TTT {
	return &TTT{
		tables:  make([]*Table, 0, MaxTravTables),
		weights: make(map[string]taper.CosineRange),
		windows: make(map[string]taper.AssocWindow),
	}
}

// SetWeightTaper attaches a four-point cosine taper to a phase, used as a
// distance-dependent nucleation weight by T().
func (t *TTT) SetWeightTaper(phase string, r taper.CosineRange) {
	t.weights[phase] = r
}

// SetAssocWindow attaches a two-point associable-distance window to a
// phase, used by BestMatch to reject phase candidates too far outside
// their expected distance range.
func (t *TTT) SetAssocWindow(phase string, w taper.AssocWindow) {
	t.windows[phase] = w
}

// AddPhase registers a travel-time table as a candidate phase. It fails
// with a *glasserr.Bug if the set is already at capacity — a configuration
// that wires in more than MaxTravTables phase files is a build-time
// mistake, not a runtime condition to recover from.
func (t *TTT) AddPhase(tbl *Table) error {
	if len(t.tables) >= MaxTravTables {
		return &glasserr.Bug{Invariant: fmt.Sprintf("TTT already holds MaxTravTables=%d phase tables", MaxTravTables)}
	}
	t.tables = append(t.tables, tbl)
	return nil
}

// SetOrigin stamps the hypothesized hypocentre onto every phase table in
// the set so later T() calls need only a station location.
func (t *TTT) SetOrigin(p geo.Point) {
	t.origin = p
	t.set = true
	for _, tbl := range t.tables {
		tbl.SetOrigin(p)
	}
}

// Phase looks up a named phase table within the set, or nil if it is not
// present.
func (t *TTT) Phase(name string) *Table {
	for _, tbl := range t.tables {
		for _, p := range tbl.Phases {
			if p == name {
				return tbl
			}
		}
	}
	return nil
}

// T returns the travel time for the named phase to station, or NoTime if
// the phase is unknown or the station falls outside the phase's branch.
func (t *TTT) T(station geo.Point, phase string) float64 {
	tbl := t.Phase(phase)
	if tbl == nil {
		return NoTime
	}
	return tbl.T(station)
}

// TWeight returns the travel time and the configured taper weight at
// station's distance for the named phase. A phase with no taper attached
// via SetWeightTaper always weighs 1.
func (t *TTT) TWeight(station geo.Point, phase string) (travelTime, weight float64) {
	tbl := t.Phase(phase)
	if tbl == nil {
		return NoTime, 0
	}
	tt := tbl.T(station)
	if tt == NoTime {
		return NoTime, 0
	}
	w := 1.0
	if r, ok := t.weights[phase]; ok {
		w = r.Weight(geo.Delta(t.origin, station))
	}
	return tt, w
}

// BestMatch pairs an observed arrival time against every phase in the set
// and returns the phase whose predicted time is closest to tObserved,
// along with the residual (observed minus predicted). Ties (phases whose
// predicted times are equal within 1e-6s) are broken by table
// registration order — the order phases were added in, which callers
// control via AddPhase and which mirrors the configured phase-priority
// order from §4.2 ("ties broken by configured phase order").
func (t *TTT) BestMatch(station geo.Point, tObserved float64) (phase string, residual float64, ok bool) {
	bestAbs := -1.0
	for _, tbl := range t.tables {
		predicted := tbl.T(station)
		if predicted == NoTime {
			continue
		}
		if len(tbl.Phases) > 0 {
			if w, ok := t.windows[tbl.Phases[0]]; ok {
				if !w.Contains(geo.Delta(t.origin, station)) {
					continue
				}
			}
		}
		res := tObserved - predicted
		absRes := res
		if absRes < 0 {
			absRes = -absRes
		}
		if bestAbs < 0 || absRes < bestAbs-1e-6 {
			bestAbs = absRes
			residual = res
			if len(tbl.Phases) > 0 {
				phase = tbl.Phases[0]
			}
			ok = true
		}
	}
	return phase, residual, ok
}

// Td looks up a travel time at an explicit (delta, depth) pair for a
// named phase, bypassing the stored origin. Used when scanning a
// candidate depth outside the hypothesis currently held in SetOrigin —
// e.g. a depth-prior sweep that wants several trial depths without
// mutating the shared TTT.
func (t *TTT) Td(deltaDeg float64, phase string, depthKM float64) float64 {
	tbl := t.Phase(phase)
	if tbl == nil {
		return NoTime
	}
	return tbl.Lookup(deltaDeg, depthKM)
}
