package travel

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// Layer is one row of a 1-D layered earth model: a radius (km, measured
// from the centre of the earth) and the P/S velocities (km/s) at that
// radius. Two consecutive rows sharing a radius encode a discontinuity
// (velocity jumps at a fixed depth, e.g. the core-mantle boundary).
type Layer struct {
	RadiusKM float64
	Vp, Vs   float64
}

// EarthModel is an ASCII 1-D velocity profile, ordered from the centre of
// the earth (radius 0) outward to the surface.
type EarthModel struct {
	SurfaceRadiusKM float64
	Layers          []Layer
}

// LoadEarthModel reads a whitespace-separated "radius vp vs" text file.
// Blank lines and lines starting with '#' are ignored. Rows must be sorted
// by non-decreasing radius; this is verified, not assumed.
func LoadEarthModel(r io.Reader) (*EarthModel, error) {
	m := &EarthModel{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, glasserr.NewConfigError("earth model",
				fmt.Errorf("line %d: want 3 fields, got %d", lineNo, len(fields)))
		}
		radius, err1 := strconv.ParseFloat(fields[0], 64)
		vp, err2 := strconv.ParseFloat(fields[1], 64)
		vs, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, glasserr.NewConfigError("earth model",
				fmt.Errorf("line %d: malformed numeric field", lineNo))
		}
		if len(m.Layers) > 0 && radius < m.Layers[len(m.Layers)-1].RadiusKM {
			return nil, glasserr.NewConfigError("earth model",
				fmt.Errorf("line %d: radius %.3f is out of order", lineNo, radius))
		}
		m.Layers = append(m.Layers, Layer{RadiusKM: radius, Vp: vp, Vs: vs})
	}
	if err := scanner.Err(); err != nil {
		return nil, glasserr.NewConfigError("earth model", err)
	}
	if len(m.Layers) < 2 {
		return nil, glasserr.NewConfigError("earth model",
			fmt.Errorf("need at least 2 layers, got %d", len(m.Layers)))
	}
	m.SurfaceRadiusKM = m.Layers[len(m.Layers)-1].RadiusKM
	return m, nil
}

// velocityAt linearly interpolates the phase velocity at radius r. When r
// falls exactly on a discontinuity (two rows at the same radius), the
// upper (shallower, second) row's velocity is used — the ray is assumed
// to be leaving the discontinuity upward, which is what the table-building
// sweep needs.
func (m *EarthModel) velocityAt(r float64, phase byte) float64 {
	layers := m.Layers
	if r <= layers[0].RadiusKM {
		return velOf(layers[0], phase)
	}
	if r >= m.SurfaceRadiusKM {
		return velOf(layers[len(layers)-1], phase)
	}
	idx := sort.Search(len(layers), func(i int) bool { return layers[i].RadiusKM >= r })
	if idx > 0 && layers[idx].RadiusKM == r {
		// Exact hit on (possibly a discontinuity's) boundary: prefer the
		// upper of any stacked rows at this radius.
		for idx+1 < len(layers) && layers[idx+1].RadiusKM == r {
			idx++
		}
		return velOf(layers[idx], phase)
	}
	lo, hi := layers[idx-1], layers[idx]
	if hi.RadiusKM == lo.RadiusKM {
		return velOf(hi, phase)
	}
	frac := (r - lo.RadiusKM) / (hi.RadiusKM - lo.RadiusKM)
	return velOf(lo, phase) + frac*(velOf(hi, phase)-velOf(lo, phase))
}

func velOf(l Layer, phase byte) float64 {
	if phase == 'S' {
		return l.Vs
	}
	return l.Vp
}

// eta is the spherical-media ray parameter at radius r: r / v(r). A ray
// with parameter p turns where eta(r) == p.
func (m *EarthModel) eta(r float64, phase byte) float64 {
	v := m.velocityAt(r, phase)
	if v <= 0 {
		return math.Inf(1)
	}
	return r / v
}

// turningRadius finds the radius at or below the surface where
// eta(r) == p, by bisection. It assumes eta is monotonic non-decreasing
// with radius over the search bracket (eta(0) = 0), true for the primary
// mantle P/S branches this builder targets (see SPEC_FULL.md §4.1 for the
// branches in scope; core phases with velocity-inversion turning points
// are a documented limitation, not a silent wrong answer — turningRadius
// returns an error if no turning point is found in range, and SweepBranch
// skips that ray parameter).
func (m *EarthModel) turningRadius(p float64, phase byte) (float64, error) {
	lo, hi := 0.0, m.SurfaceRadiusKM
	if m.eta(hi, phase) < p {
		return 0, fmt.Errorf("ray parameter %.6f does not turn within the model (surface eta=%.6f)", p, m.eta(hi, phase))
	}
	if m.eta(lo, phase) > p {
		return 0, fmt.Errorf("ray parameter %.6f turns below the centre of the earth", p)
	}
	for i := 0; i < 60; i++ {
		mid := 0.5 * (lo + hi)
		if m.eta(mid, phase) >= p {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0.5 * (lo + hi), nil
}

// rayIntegrand evaluates the distance (kind='X') or time (kind='T')
// integrand of the standard spherical ray-theory integrals
// (Aki & Richards eq. 4.10.3-4):
//
//	X(p) = 2 integral[rTurn,R] p / (r sqrt(eta(r)^2 - p^2)) dr
//	T(p) = 2 integral[rTurn,R] eta(r)^2 / (r sqrt(eta(r)^2 - p^2)) dr
//
// which is the same family as the spec's abbreviated
// tau(p) = integral (1/v^2 - p^2/r^2)^(1/2) dr formulation.
func rayIntegrand(kind byte, m *EarthModel, p float64, phase byte, r float64) float64 {
	eta := m.eta(r, phase)
	d := eta*eta - p*p
	if d <= 0 {
		return 0
	}
	denom := r * math.Sqrt(d)
	if kind == 'X' {
		return p / denom
	}
	return eta * eta / denom
}

// integrateRay sums the X(p) or T(p) integral across every layer between
// the turning radius and the surface. The layer touching the turning
// radius carries an integrable 1/sqrt singularity; it is regularised with
// the substitution r = rTurn + (rHi-rTurn)*u^2, which cancels the
// singularity against the substitution's Jacobian (the standard technique
// for this integral family). Each layer is then evaluated with gonum's
// fixed-rule quadrature, doubling the panel count (Romberg-style) until
// successive estimates agree to within 1e-6 relative or 8 doublings pass.
func integrateRay(kind byte, m *EarthModel, p float64, phase byte, rTurn float64) float64 {
	total := 0.0
	for i := 0; i < len(m.Layers)-1; i++ {
		rLo, rHi := m.Layers[i].RadiusKM, m.Layers[i+1].RadiusKM
		if rHi <= rTurn {
			continue // entirely below the turning point, ray never reaches it
		}
		lo := rLo
		if lo < rTurn {
			lo = rTurn
		}
		if lo >= rHi {
			continue
		}
		total += integrateLayer(kind, m, p, phase, lo, rHi, lo == rTurn)
	}
	return 2 * total
}

func integrateLayer(kind byte, m *EarthModel, p float64, phase byte, rLo, rHi float64, hasSingularity bool) float64 {
	var f func(float64) float64
	if hasSingularity {
		span := rHi - rLo
		f = func(u float64) float64 {
			r := rLo + span*u*u
			// dr = 2*span*u du; the 2*span*u factor is folded in here so
			// the caller integrates f over u in [0,1] directly.
			return rayIntegrand(kind, m, p, phase, r) * 2 * span * u
		}
		return refine(f, 0, 1)
	}
	f = func(r float64) float64 { return rayIntegrand(kind, m, p, phase, r) }
	return refine(f, rLo, rHi)
}

// refine doubles the quadrature panel count until the estimate stabilises.
func refine(f func(float64) float64, lo, hi float64) float64 {
	prev := quad.Fixed(f, lo, hi, 8, quad.Legendre{}, 0)
	for n := 16; n <= 512; n *= 2 {
		cur := quad.Fixed(f, lo, hi, n, quad.Legendre{}, 0)
		if math.Abs(cur-prev) <= 1e-6*math.Max(1, math.Abs(cur)) {
			return cur
		}
		prev = cur
	}
	return prev
}

// RayPoint is one sample of the (ray parameter, distance, time) sweep
// that feeds a branch's distance/time knots before warping into a Table.
type RayPoint struct {
	P          float64
	DistRadian float64
	TimeSec    float64
}

// SweepBranch sweeps ray parameter from pMin to pMax (pMin closest to a
// vertical ray, pMax closest to grazing) in steps evaluations, computing
// (X(p), T(p)) at each step. Samples whose turning point falls outside the
// model are skipped rather than erroring, since a single ray-parameter
// sweep commonly runs past where a branch physically exists.
func SweepBranch(m *EarthModel, phase byte, pMin, pMax float64, steps int) []RayPoint {
	if steps < 2 {
		steps = 2
	}
	points := make([]RayPoint, 0, steps)
	for i := 0; i < steps; i++ {
		p := pMin + (pMax-pMin)*float64(i)/float64(steps-1)
		rTurn, err := m.turningRadius(p, phase)
		if err != nil {
			continue
		}
		x := integrateRay('X', m, p, phase, rTurn)
		t := integrateRay('T', m, p, phase, rTurn)
		points = append(points, RayPoint{P: p, DistRadian: x, TimeSec: t})
	}
	return points
}

// BuildBranch turns a ray-parameter sweep into a filled Table: for every
// sample it lands (distance, travel time) at the nearest distance grid
// index for the model's own (single, surface) depth, then patches holes.
// Distance is converted from radians to degrees before indexing. Depth
// variation is handled by TTT.addPhase sweeping this builder once per
// configured source depth and merging the resulting columns — see ttt.go.
func BuildBranch(branchName string, phases []string, points []RayPoint, dist, depth Warp, depthIdx int) *Table {
	t := NewTable(branchName, phases, dist, depth)
	for _, pt := range points {
		distDeg := pt.DistRadian * 180 / math.Pi
		if distDeg < dist.Min || distDeg > dist.Max {
			continue
		}
		idx := int(math.Round(dist.Index(distDeg)))
		if idx < 0 || idx >= dist.N {
			continue
		}
		t.SetCell(idx, depthIdx, pt.TimeSec, distDeg, phaseTagByte(branchName))
	}
	t.PatchHoles()
	return t
}

func phaseTagByte(branchName string) byte {
	if branchName == "" {
		return 0
	}
	return branchName[0]
}
