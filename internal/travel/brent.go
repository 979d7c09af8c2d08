package travel

import "math"

// goldenRatio is the golden-section search contraction factor.
const goldenRatio = 0.6180339887498949

// BrentMinimize finds a local minimum of f within the bracket [a, b] using
// golden-section search refined by parabolic interpolation (the classic
// Brent method). It is used by the earth-model builder to locate branch
// extrema (distance turning points) in the swept (p, X(p)) curve.
//
// gonum's optimize package targets multivariate problems and has no
// bounded 1-D minimizer with this shape, so this one piece is hand-rolled
// in the teacher's own terse numerical style rather than reached for an
// ecosystem dependency (see DESIGN.md).
func BrentMinimize(f func(float64) float64, a, b float64, tol float64, maxIter int) (x, fx float64) {
	if tol <= 0 {
		tol = 1e-8
	}
	if maxIter <= 0 {
		maxIter = 100
	}

	const cgold = 1 - goldenRatio
	var e float64 // distance moved on the step before last

	x = a + cgold*(b-a)
	w, v := x, x
	fw, fv := f(x), f(x)
	fx = fw

	for iter := 0; iter < maxIter; iter++ {
		xm := 0.5 * (a + b)
		tol1 := tol*math.Abs(x) + 1e-12
		tol2 := 2 * tol1
		if math.Abs(x-xm) <= tol2-0.5*(b-a) {
			return x, fx
		}

		var d float64
		useParabolic := false
		if math.Abs(e) > tol1 {
			// Try a parabolic interpolation step through (v,fv),(w,fw),(x,fx).
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			etemp := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*etemp) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = sign(tol1, xm-x)
				}
				useParabolic = true
			}
		}
		if !useParabolic {
			if x >= xm {
				e = a - x
			} else {
				e = b - x
			}
			d = cgold * e
		}

		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + sign(tol1, d)
		}
		fu := f(u)

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
	return x, fx
}

func sign(a, b float64) float64 {
	if b >= 0 {
		return math.Abs(a)
	}
	return -math.Abs(a)
}
