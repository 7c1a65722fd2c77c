package integrators

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/qtraj/ket"
)

// Dormand-Prince 5(4) coefficients
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

type Dopri5 struct {
	rtol     float64
	atol     float64
	safety   float64
	minScale float64
	maxScale float64
}

func NewDopri5(rtol, atol, safety, minScale, maxScale float64) *Dopri5 {
	return &Dopri5{
		rtol:     rtol,
		atol:     atol,
		safety:   safety,
		minScale: minScale,
		maxScale: maxScale,
	}
}

func (d *Dopri5) Step(f Deriv, t float64, psi ket.State, dt float64) ket.State {
	next, _, _ := d.TryStep(f, t, psi, dt)
	return next
}

func (d *Dopri5) TryStep(f Deriv, t float64, psi ket.State, dt float64) (ket.State, float64, float64) {
	n := len(psi)
	h := complex(dt, 0)

	k1 := f(t, psi)

	s := make(ket.State, n)
	for i := 0; i < n; i++ {
		s[i] = psi[i] + h*complex(b21, 0)*k1[i]
	}
	k2 := f(t+a2*dt, s)

	for i := 0; i < n; i++ {
		s[i] = psi[i] + h*(complex(b31, 0)*k1[i]+complex(b32, 0)*k2[i])
	}
	k3 := f(t+a3*dt, s)

	for i := 0; i < n; i++ {
		s[i] = psi[i] + h*(complex(b41, 0)*k1[i]+complex(b42, 0)*k2[i]+complex(b43, 0)*k3[i])
	}
	k4 := f(t+a4*dt, s)

	for i := 0; i < n; i++ {
		s[i] = psi[i] + h*(complex(b51, 0)*k1[i]+complex(b52, 0)*k2[i]+complex(b53, 0)*k3[i]+complex(b54, 0)*k4[i])
	}
	k5 := f(t+a5*dt, s)

	for i := 0; i < n; i++ {
		s[i] = psi[i] + h*(complex(b61, 0)*k1[i]+complex(b62, 0)*k2[i]+complex(b63, 0)*k3[i]+complex(b64, 0)*k4[i]+complex(b65, 0)*k5[i])
	}
	k6 := f(t+dt, s)

	next := make(ket.State, n)
	for i := 0; i < n; i++ {
		next[i] = psi[i] + h*(complex(c1, 0)*k1[i]+complex(c3, 0)*k3[i]+complex(c4, 0)*k4[i]+complex(c5, 0)*k5[i]+complex(c6, 0)*k6[i])
	}

	k7 := f(t+dt, next)

	errRatio := 0.0
	for i := 0; i < n; i++ {
		est := h * (complex(dc1, 0)*k1[i] + complex(dc3, 0)*k3[i] + complex(dc4, 0)*k4[i] + complex(dc5, 0)*k5[i] + complex(dc6, 0)*k6[i] + complex(dc7, 0)*k7[i])
		tol := d.atol + d.rtol*math.Max(cmplx.Abs(psi[i]), cmplx.Abs(next[i]))
		errRatio = math.Max(errRatio, cmplx.Abs(est)/tol)
	}

	var dtNext float64
	if errRatio > 1 {
		dtNext = dt * math.Max(d.minScale, d.safety*math.Pow(errRatio, -0.25))
	} else if errRatio > 0 {
		dtNext = dt * math.Min(d.maxScale, d.safety*math.Pow(errRatio, -0.2))
	} else {
		dtNext = dt * d.maxScale
	}

	return next, errRatio, dtNext
}
