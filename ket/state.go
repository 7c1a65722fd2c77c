// Package ket implements complex state vectors for wavefunction evolution.
// During no-click segments the state is deliberately left un-normalized: its
// squared norm is the survival probability of the measurement record. Callers
// take a Normalized copy for reporting and immediately after a jump.
package ket

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// State is a complex ket vector.
type State []complex128

// Basis returns the dim-dimensional basis state |i>.
func Basis(dim, i int) State {
	s := make(State, dim)
	s[i] = 1
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Norm2 returns the squared norm <s|s>.
func (s State) Norm2() float64 {
	sum := 0.0
	for _, v := range s {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum
}

func (s State) Norm() float64 {
	return math.Sqrt(s.Norm2())
}

// Normalized returns a unit-norm copy of s. A zero vector is returned
// unchanged.
func (s State) Normalized() State {
	n := s.Norm()
	if n == 0 {
		return s.Clone()
	}
	c := make(State, len(s))
	inv := complex(1/n, 0)
	for i, v := range s {
		c[i] = v * inv
	}
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) ||
			math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
			return false
		}
	}
	return true
}

// Dot returns the Hermitian inner product <a|b>.
func Dot(a, b State) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

// Apply returns m|s| as a new state.
func Apply(m *mat.CDense, s State) State {
	r, c := m.Dims()
	out := make(State, r)
	for i := 0; i < r; i++ {
		var sum complex128
		for j := 0; j < c; j++ {
			sum += m.At(i, j) * s[j]
		}
		out[i] = sum
	}
	return out
}

// Expect returns the expectation value <s|op|s>. The caller is responsible
// for normalizing s first if a physical expectation is wanted.
func Expect(op *mat.CDense, s State) complex128 {
	return Dot(s, Apply(op, s))
}

// AddScaled performs dst += alpha*src in place.
func AddScaled(dst State, alpha complex128, src State) {
	for i := range dst {
		dst[i] += alpha * src[i]
	}
}
