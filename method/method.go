// Package method declares the solver configurations accepted by the
// trajectory driver: the event-based jump unraveling and the fixed or
// adaptive steppers that carry the deterministic evolution between clicks.
package method

import (
	"fmt"

	"github.com/san-kum/qtraj/gradient"
	"github.com/san-kum/qtraj/rootfind"
)

// Tag identifies a no-click stepper family for dispatch.
type Tag string

const (
	TagEuler  Tag = "euler"
	TagRK4    Tag = "rk4"
	TagDopri5 Tag = "dopri5"
)

// Method is a solver configuration. Only Event is accepted by the
// trajectory driver; the interface exists so that unsupported
// configurations fail with a clear error rather than a type switch panic.
type Method interface {
	Name() string
	isMethod()
}

// NoClickMethod configures the deterministic integrator used between clicks.
type NoClickMethod interface {
	Tag() Tag
	isNoClick()
}

// Euler is the fixed-step first order stepper. Cheap and mostly useful
// for cross-checking; prefer RK4 or Dopri5 for production runs.
type Euler struct {
	Dt float64
}

func (Euler) Tag() Tag   { return TagEuler }
func (Euler) isNoClick() {}

// RK4 is the classical fixed-step fourth order stepper.
type RK4 struct {
	Dt float64
}

func (RK4) Tag() Tag   { return TagRK4 }
func (RK4) isNoClick() {}

// Dopri5 is the adaptive Dormand-Prince 5(4) stepper.
type Dopri5 struct {
	Rtol         float64
	Atol         float64
	SafetyFactor float64
	MinFactor    float64
	MaxFactor    float64
	MaxSteps     int
}

// NewDopri5 returns a Dopri5 with the default tolerances and step controls.
func NewDopri5() Dopri5 {
	return Dopri5{
		Rtol:         1e-6,
		Atol:         1e-6,
		SafetyFactor: 0.9,
		MinFactor:    0.2,
		MaxFactor:    5.0,
		MaxSteps:     100000,
	}
}

func (Dopri5) Tag() Tag   { return TagDopri5 }
func (Dopri5) isNoClick() {}

// Event is the jump-unraveled solver: deterministic no-click evolution
// punctuated by clicks located where the survival probability crosses a
// sampled threshold. RootFinder refines each crossing inside the
// bracketing step; when nil, the right edge of the bracket is used as
// the click time. SmartSampling reuses the deterministic no-click
// trajectory across the batch and restricts the first threshold of every
// other trajectory to the click region.
type Event struct {
	NoClick       NoClickMethod
	RootFinder    rootfind.Finder
	SmartSampling bool
}

// DefaultEvent returns an Event with the adaptive stepper and a
// bisection root finder.
func DefaultEvent() Event {
	return Event{
		NoClick:    NewDopri5(),
		RootFinder: rootfind.NewBisection(),
	}
}

func (Event) Name() string { return "event" }
func (Event) isMethod()    {}

// AssertSupportsGradient reports whether the given gradient strategy can
// be computed under this method. Event trajectories support pathwise
// finite differences under common random keys; adjoint backpropagation
// through the click process is not implemented.
func (m Event) AssertSupportsGradient(g gradient.Strategy) error {
	switch g.(type) {
	case nil, gradient.ForwardDiff, gradient.CentralDiff:
		return nil
	default:
		return fmt.Errorf("method: gradient strategy %q is not supported by the event method (supported: forward-diff, central-diff)", g.Name())
	}
}
