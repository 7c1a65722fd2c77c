// Package integrators implements the fixed-step and adaptive steppers
// that advance a state vector under a time-dependent derivative.
package integrators

import "github.com/san-kum/qtraj/ket"

// Deriv evaluates the time derivative of the state at time t.
type Deriv func(t float64, psi ket.State) ket.State

// Stepper advances the state by a single step of size dt.
type Stepper interface {
	Step(f Deriv, t float64, psi ket.State, dt float64) ket.State
}

// Adaptive extends Stepper with a trial step that reports an error ratio
// (estimated error over tolerance; accept when <= 1) and a suggested
// next step size.
type Adaptive interface {
	Stepper
	TryStep(f Deriv, t float64, psi ket.State, dt float64) (next ket.State, errRatio float64, dtNext float64)
}
