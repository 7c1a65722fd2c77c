// Package qtraj simulates quantum-jump stochastic trajectories of open
// systems: deterministic evolution under an effective non-Hermitian
// generator, interrupted by jumps wherever the survival probability
// crosses a sampled threshold. Operators and initial states may carry
// batch dimensions; trajectories and batch elements run in parallel and
// reproduce bit-identically for the same keys.
package qtraj

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qtraj/gradient"
	"github.com/san-kum/qtraj/internal/jump"
	"github.com/san-kum/qtraj/ket"
	"github.com/san-kum/qtraj/method"
	"github.com/san-kum/qtraj/operator"
	"github.com/san-kum/qtraj/prng"
)

// Problem is a full description of a batched trajectory solve.
type Problem struct {
	// H is the Hamiltonian, shape (..., n, n).
	H operator.Operator
	// JumpOps are the jump operators, each of shape (..., n, n).
	JumpOps []operator.Operator
	// Psi0 is the initial ket, shape (..., n, 1). Use operator.Ket or
	// operator.KetBatch to build it from raw vectors.
	Psi0 operator.Operator
	// SaveTimes are the strictly increasing times at which states and
	// expectation values are reported.
	SaveTimes []float64
	// Keys seed the trajectories, one key per trajectory.
	Keys []prng.Key
	// Observables are expectation-value operators evaluated at each save
	// time on the renormalized state.
	Observables []*mat.CDense
	// Method selects the solver. Only method.Event is supported.
	Method method.Method
	// Gradient optionally declares the differentiation strategy a caller
	// intends to use with this solve; it is validated against the method
	// and echoed in the result.
	Gradient gradient.Strategy

	Options Options
}

// Options are the solver knobs that do not vectorize.
type Options struct {
	// SaveStates controls whether states are kept at every save time.
	// When false only final states are reported.
	SaveStates bool
	// CartesianBatching selects the cartesian product over operand batch
	// dimensions; when false all operand batch shapes broadcast to one
	// common shape.
	CartesianBatching bool
	// T0 is the start time. NaN means start at SaveTimes[0].
	T0 float64
	// SaveExtra, when set, is evaluated on the renormalized state at
	// every save time and collected alongside states.
	SaveExtra func(ket.State) any
	// NMaxClick is the per-channel click buffer capacity.
	NMaxClick int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		SaveStates:        true,
		CartesianBatching: true,
		T0:                math.NaN(),
		NMaxClick:         10000,
	}
}

func validate(p *Problem) (method.Event, error) {
	if p.H == nil {
		return method.Event{}, fmt.Errorf("qtraj: hamiltonian is required")
	}
	hs := p.H.Shape()
	if hs.Rows != hs.Cols {
		return method.Event{}, fmt.Errorf("qtraj: hamiltonian must have shape (..., n, n), got %v", hs)
	}
	n := hs.Rows

	if len(p.JumpOps) == 0 {
		return method.Event{}, fmt.Errorf("qtraj: no jump operators given; closed-system dynamics should use a plain Schrödinger solver instead")
	}
	for i, l := range p.JumpOps {
		ls := l.Shape()
		if ls.Rows != n || ls.Cols != n {
			return method.Event{}, fmt.Errorf("qtraj: jump operator %d must have shape (..., %d, %d), got %v", i, n, n, ls)
		}
	}

	if p.Psi0 == nil {
		return method.Event{}, fmt.Errorf("qtraj: initial state is required")
	}
	ps := p.Psi0.Shape()
	if ps.Rows != n || ps.Cols != 1 {
		return method.Event{}, fmt.Errorf("qtraj: initial state must have shape (..., %d, 1), got %v", n, ps)
	}
	nKets := 1
	for _, d := range ps.Batch {
		nKets *= d
	}
	for i := 0; i < nKets; i++ {
		idx := operator.Unravel(i, ps.Batch)
		m := p.Psi0.Index(idx).Eval(0)
		norm2 := 0.0
		for j := 0; j < n; j++ {
			c := m.At(j, 0)
			norm2 += real(c)*real(c) + imag(c)*imag(c)
		}
		if math.Abs(norm2-1) > 1e-9 {
			return method.Event{}, fmt.Errorf("qtraj: initial state at batch index %v has squared norm %g, want a normalized ket", idx, norm2)
		}
	}

	for i, obs := range p.Observables {
		r, c := obs.Dims()
		if r != n || c != n {
			return method.Event{}, fmt.Errorf("qtraj: observable %d must be %dx%d, got %dx%d", i, n, n, r, c)
		}
	}

	if len(p.SaveTimes) == 0 {
		return method.Event{}, fmt.Errorf("qtraj: at least one save time is required")
	}
	for i := 1; i < len(p.SaveTimes); i++ {
		if p.SaveTimes[i] <= p.SaveTimes[i-1] {
			return method.Event{}, fmt.Errorf("qtraj: save times must be strictly increasing, got %g after %g", p.SaveTimes[i], p.SaveTimes[i-1])
		}
	}
	if t0 := p.Options.T0; !math.IsNaN(t0) && t0 > p.SaveTimes[0] {
		return method.Event{}, fmt.Errorf("qtraj: start time %g is after the first save time %g", t0, p.SaveTimes[0])
	}

	if len(p.Keys) == 0 {
		return method.Event{}, fmt.Errorf("qtraj: at least one key is required")
	}
	if p.Options.NMaxClick < 1 {
		return method.Event{}, fmt.Errorf("qtraj: NMaxClick must be at least 1, got %d", p.Options.NMaxClick)
	}

	ev, ok := p.Method.(method.Event)
	if !ok {
		if p.Method == nil {
			return method.Event{}, fmt.Errorf("qtraj: a method is required, use method.DefaultEvent()")
		}
		return method.Event{}, fmt.Errorf("qtraj: method %q is not supported by this solver", p.Method.Name())
	}
	if ev.NoClick == nil {
		return method.Event{}, fmt.Errorf("qtraj: the event method requires a no-click stepper")
	}
	if _, err := jump.NewStepping(ev.NoClick); err != nil {
		return method.Event{}, err
	}
	if err := ev.AssertSupportsGradient(p.Gradient); err != nil {
		return method.Event{}, err
	}
	return ev, nil
}
