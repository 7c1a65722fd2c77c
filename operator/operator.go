// Package operator represents time-dependent linear operators (Hamiltonians,
// jump operators, kets) as lazily evaluated functions of time with algebraic
// composition and static batch metadata. Operators are immutable: every
// composition returns a new value.
package operator

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Operator is a time-dependent linear operator t -> matrix. Evaluating at any
// time returns a matrix of the declared trailing shape.
//
// Eval is only valid on an unbatched operator; batched operators must be
// narrowed with Index first. The returned matrix is owned by the operator and
// must not be mutated.
type Operator interface {
	Shape() Shape

	Eval(t float64) *mat.CDense

	// Index selects a single batch element. The index must fully resolve
	// the batch dimensions; the result is unbatched.
	Index(idx []int) Operator

	// BroadcastTo returns a view of the operator with the given batch
	// shape, which must be broadcast-compatible with the current one.
	BroadcastTo(batch []int) (Operator, error)

	// Adjoint returns the conjugate transpose.
	Adjoint() Operator

	// Mul returns the operator scaled by z.
	Mul(z complex128) Operator

	// Add returns the pointwise sum with o, whose trailing dimensions must
	// match. Batch dimensions broadcast.
	Add(o Operator) (Operator, error)
}

// matrix helpers shared by the operator variants

func adjointMat(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

func scaleMat(z complex128, m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, z*m.At(i, j))
		}
	}
	return out
}

func conjMat(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

func addMat(a, b *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j)+b.At(i, j))
		}
	}
	return out
}
