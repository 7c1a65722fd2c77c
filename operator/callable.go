package operator

import (
	"gonum.org/v1/gonum/mat"
)

// callableOp defers entirely to a user function t -> matrix.
type callableOp struct {
	f    func(t float64) *mat.CDense
	rows int
	cols int
}

// Callable wraps an arbitrary matrix-valued function of time. The function is
// probed at t=0 to determine the operator's shape; it must return matrices of
// that shape for every time.
func Callable(f func(t float64) *mat.CDense) Operator {
	r, c := f(0).Dims()
	return &callableOp{f: f, rows: r, cols: c}
}

func (o *callableOp) Shape() Shape {
	return Shape{Rows: o.rows, Cols: o.cols}
}

func (o *callableOp) Eval(t float64) *mat.CDense {
	return o.f(t)
}

func (o *callableOp) Index(idx []int) Operator { return o }

func (o *callableOp) BroadcastTo(batch []int) (Operator, error) {
	if len(batch) == 0 {
		return o, nil
	}
	return &broadcastOp{inner: o, batch: append([]int(nil), batch...)}, nil
}

func (o *callableOp) Adjoint() Operator {
	f := o.f
	return &callableOp{
		f:    func(t float64) *mat.CDense { return adjointMat(f(t)) },
		rows: o.cols,
		cols: o.rows,
	}
}

func (o *callableOp) Mul(z complex128) Operator {
	f := o.f
	return &callableOp{
		f:    func(t float64) *mat.CDense { return scaleMat(z, f(t)) },
		rows: o.rows,
		cols: o.cols,
	}
}

func (o *callableOp) Add(other Operator) (Operator, error) {
	return sum(o, other)
}
