package integrators

import "github.com/san-kum/qtraj/ket"

type RK4 struct {
	k1, k2, k3, k4 ket.State
	scratch        ket.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(ket.State, n)
		r.k2 = make(ket.State, n)
		r.k3 = make(ket.State, n)
		r.k4 = make(ket.State, n)
		r.scratch = make(ket.State, n)
	}
}

func (r *RK4) Step(f Deriv, t float64, psi ket.State, dt float64) ket.State {
	n := len(psi)
	r.ensureScratch(n)
	h := complex(dt, 0)

	copy(r.k1, f(t, psi))

	for i := 0; i < n; i++ {
		r.scratch[i] = psi[i] + h*0.5*r.k1[i]
	}
	copy(r.k2, f(t+dt*0.5, r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = psi[i] + h*0.5*r.k2[i]
	}
	copy(r.k3, f(t+dt*0.5, r.scratch))

	for i := 0; i < n; i++ {
		r.scratch[i] = psi[i] + h*r.k3[i]
	}
	copy(r.k4, f(t+dt, r.scratch))

	result := make(ket.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = psi[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
