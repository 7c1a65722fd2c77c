package jump

import (
	"fmt"

	"github.com/san-kum/qtraj/internal/integrators"
	"github.com/san-kum/qtraj/method"
)

// Stepping bundles a stepper instance with its stepping mode: Dt > 0
// means a fixed step, Dt == 0 means the stepper is adaptive and MaxSteps
// bounds the per-segment work.
type Stepping struct {
	Stepper  integrators.Stepper
	Dt       float64
	MaxSteps int
}

var stepperFactories = map[method.Tag]func(method.NoClickMethod) (Stepping, error){
	method.TagEuler: func(nc method.NoClickMethod) (Stepping, error) {
		m := nc.(method.Euler)
		if m.Dt <= 0 {
			return Stepping{}, fmt.Errorf("jump: euler requires a positive step size, got %g", m.Dt)
		}
		return Stepping{Stepper: integrators.NewEuler(), Dt: m.Dt}, nil
	},
	method.TagRK4: func(nc method.NoClickMethod) (Stepping, error) {
		m := nc.(method.RK4)
		if m.Dt <= 0 {
			return Stepping{}, fmt.Errorf("jump: rk4 requires a positive step size, got %g", m.Dt)
		}
		return Stepping{Stepper: integrators.NewRK4(), Dt: m.Dt}, nil
	},
	method.TagDopri5: func(nc method.NoClickMethod) (Stepping, error) {
		m := nc.(method.Dopri5)
		if m.Rtol <= 0 || m.Atol <= 0 {
			return Stepping{}, fmt.Errorf("jump: dopri5 requires positive tolerances, got rtol=%g atol=%g", m.Rtol, m.Atol)
		}
		if m.SafetyFactor <= 0 || m.MinFactor <= 0 || m.MaxFactor <= 0 {
			return Stepping{}, fmt.Errorf("jump: dopri5 requires positive step-control factors, got safety=%g min=%g max=%g",
				m.SafetyFactor, m.MinFactor, m.MaxFactor)
		}
		if m.MaxSteps <= 0 {
			return Stepping{}, fmt.Errorf("jump: dopri5 requires a positive step budget, got %d", m.MaxSteps)
		}
		return Stepping{
			Stepper:  integrators.NewDopri5(m.Rtol, m.Atol, m.SafetyFactor, m.MinFactor, m.MaxFactor),
			MaxSteps: m.MaxSteps,
		}, nil
	},
}

// NewStepping instantiates a fresh stepper for one trajectory.
func NewStepping(nc method.NoClickMethod) (Stepping, error) {
	factory, ok := stepperFactories[nc.Tag()]
	if !ok {
		return Stepping{}, fmt.Errorf("jump: no stepper registered for method %q", nc.Tag())
	}
	return factory(nc)
}
