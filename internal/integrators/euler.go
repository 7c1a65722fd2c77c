package integrators

import "github.com/san-kum/qtraj/ket"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Deriv, t float64, psi ket.State, dt float64) ket.State {
	d := f(t, psi)
	result := make(ket.State, len(psi))
	for i := range psi {
		result[i] = psi[i] + complex(dt, 0)*d[i]
	}
	return result
}
