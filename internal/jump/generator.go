// Package jump drives single quantum-jump trajectories: deterministic
// no-click evolution under the effective non-Hermitian generator,
// punctuated by clicks wherever the survival probability crosses a
// sampled threshold.
package jump

import (
	"github.com/san-kum/qtraj/ket"
	"github.com/san-kum/qtraj/operator"
)

// Generator holds the unbatched Hamiltonian and jump operators of one
// trajectory and evaluates the no-click derivative
//
//	dpsi/dt = -i H(t) psi - 1/2 sum_k Lk(t)^dag Lk(t) psi
//
// together with the per-channel click rates |Lk psi|^2.
type Generator struct {
	H     operator.Operator
	Ls    []operator.Operator
	LsDag []operator.Operator
	dim   int
}

// NewGenerator builds a Generator from unbatched operators. Adjoints of
// the jump operators are formed once up front.
func NewGenerator(h operator.Operator, ls []operator.Operator) *Generator {
	dags := make([]operator.Operator, len(ls))
	for i, l := range ls {
		dags[i] = l.Adjoint()
	}
	return &Generator{H: h, Ls: ls, LsDag: dags, dim: h.Shape().Rows}
}

// Dim returns the Hilbert space dimension.
func (g *Generator) Dim() int { return g.dim }

// Deriv evaluates the no-click derivative at time t.
func (g *Generator) Deriv(t float64, psi ket.State) ket.State {
	d := ket.Apply(g.H.Eval(t), psi)
	for i := range d {
		d[i] *= -1i
	}
	for k := range g.Ls {
		lpsi := ket.Apply(g.Ls[k].Eval(t), psi)
		ldl := ket.Apply(g.LsDag[k].Eval(t), lpsi)
		ket.AddScaled(d, -0.5, ldl)
	}
	return d
}

// Rates fills out with the click rate |Lk psi|^2 of each channel.
func (g *Generator) Rates(t float64, psi ket.State, out []float64) []float64 {
	if out == nil {
		out = make([]float64, len(g.Ls))
	}
	for k := range g.Ls {
		out[k] = ket.Apply(g.Ls[k].Eval(t), psi).Norm2()
	}
	return out
}

// TotalRate is the summed click rate, which is also the decay rate of
// the survival probability: d|psi|^2/dt = -TotalRate.
func (g *Generator) TotalRate(t float64, psi ket.State) float64 {
	total := 0.0
	for k := range g.Ls {
		total += ket.Apply(g.Ls[k].Eval(t), psi).Norm2()
	}
	return total
}

// ApplyJump applies channel k at time t and renormalizes.
func (g *Generator) ApplyJump(k int, t float64, psi ket.State) ket.State {
	return ket.Apply(g.Ls[k].Eval(t), psi).Normalized()
}
