// Package rootfind provides scalar root finders used to refine event
// times inside a bracketing interval.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

// Func is a scalar function of one variable.
type Func func(x float64) float64

// Finder locates a root of f in [lo, hi]. df is the derivative of f and
// may be nil; finders that need it fall back to a derivative-free scheme.
// The bracket must satisfy f(lo) and f(hi) having opposite signs (either
// may be zero).
type Finder interface {
	Find(f, df Func, lo, hi float64) (float64, error)
}

// ErrNoBracket is returned when f(lo) and f(hi) have the same sign.
var ErrNoBracket = errors.New("rootfind: interval does not bracket a root")

// Bisection halves the bracket until it is narrower than Tol.
type Bisection struct {
	Tol     float64
	MaxIter int
}

// NewBisection returns a Bisection with defaults suitable for event
// refinement.
func NewBisection() Bisection {
	return Bisection{Tol: 1e-10, MaxIter: 200}
}

func (b Bisection) Find(f, _ Func, lo, hi float64) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, ErrNoBracket
	}
	for i := 0; i < b.MaxIter; i++ {
		mid := 0.5 * (lo + hi)
		if hi-lo < b.Tol {
			return mid, nil
		}
		fm := f(mid)
		if fm == 0 {
			return mid, nil
		}
		if (fm > 0) == (flo > 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return 0, fmt.Errorf("rootfind: bisection did not converge in %d iterations", b.MaxIter)
}

// Newton iterates x - f(x)/df(x) from the bracket midpoint, falling back
// to a bisection step whenever an iterate leaves the bracket or the
// derivative vanishes. The bracket is maintained throughout, so the
// method converges even from poor starting points.
type Newton struct {
	Tol     float64
	MaxIter int
}

// NewNewton returns a Newton finder with defaults suitable for event
// refinement.
func NewNewton() Newton {
	return Newton{Tol: 1e-12, MaxIter: 100}
}

func (n Newton) Find(f, df Func, lo, hi float64) (float64, error) {
	if df == nil {
		return NewBisection().Find(f, nil, lo, hi)
	}
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, ErrNoBracket
	}

	x := 0.5 * (lo + hi)
	for i := 0; i < n.MaxIter; i++ {
		fx := f(x)
		if fx == 0 || hi-lo < n.Tol {
			return x, nil
		}
		if (fx > 0) == (flo > 0) {
			lo, flo = x, fx
		} else {
			hi = x
		}

		d := df(x)
		next := x - fx/d
		if d == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-x) < n.Tol {
			return next, nil
		}
		x = next
	}
	return 0, fmt.Errorf("rootfind: newton did not converge in %d iterations", n.MaxIter)
}
