// Package gradient declares the differentiation strategies a solve can
// request and implements finite-difference gradients of scalar losses.
// Trajectory losses evaluated under common random keys are piecewise
// smooth in the parameters, which makes pathwise difference quotients
// well defined.
package gradient

import (
	"fmt"
	"math"
)

// Strategy selects how gradients of a solve are computed.
type Strategy interface {
	Name() string
	isStrategy()
}

// ForwardDiff computes one-sided difference quotients. Eps is the base
// step size; zero means the default 1e-6, scaled per parameter by its
// magnitude.
type ForwardDiff struct {
	Eps float64
}

func (ForwardDiff) Name() string { return "forward-diff" }
func (ForwardDiff) isStrategy()  {}

// CentralDiff computes symmetric difference quotients, second order
// accurate at twice the evaluation cost of ForwardDiff.
type CentralDiff struct {
	Eps float64
}

func (CentralDiff) Name() string { return "central-diff" }
func (CentralDiff) isStrategy()  {}

// Adjoint requests reverse-mode differentiation. Declared so callers can
// ask for it; solvers that cannot honor it reject the request at
// configuration time.
type Adjoint struct{}

func (Adjoint) Name() string { return "adjoint" }
func (Adjoint) isStrategy()  {}

const defaultEps = 1e-6

func stepFor(eps, p float64) float64 {
	if eps == 0 {
		eps = defaultEps
	}
	return eps * math.Max(1, math.Abs(p))
}

// Compute evaluates the gradient of loss at params using the given
// finite-difference strategy. The params slice is never mutated; loss is
// called with scratch copies.
func Compute(loss func([]float64) (float64, error), params []float64, s Strategy) ([]float64, error) {
	grad := make([]float64, len(params))
	scratch := make([]float64, len(params))

	switch st := s.(type) {
	case ForwardDiff:
		base, err := loss(append(scratch[:0], params...))
		if err != nil {
			return nil, err
		}
		for i, p := range params {
			h := stepFor(st.Eps, p)
			copy(scratch, params)
			scratch[i] = p + h
			up, err := loss(scratch)
			if err != nil {
				return nil, err
			}
			grad[i] = (up - base) / h
		}
	case CentralDiff:
		for i, p := range params {
			h := stepFor(st.Eps, p)
			copy(scratch, params)
			scratch[i] = p + h
			up, err := loss(scratch)
			if err != nil {
				return nil, err
			}
			scratch[i] = p - h
			down, err := loss(scratch)
			if err != nil {
				return nil, err
			}
			grad[i] = (up - down) / (2 * h)
		}
	default:
		return nil, fmt.Errorf("gradient: strategy %q cannot be computed by finite differences", s.Name())
	}
	return grad, nil
}
