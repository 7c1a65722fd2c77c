package operator

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// modulatedOp is f(t) times a fixed base matrix, with f a scalar envelope.
type modulatedOp struct {
	f    func(t float64) complex128
	base *mat.CDense
}

// Modulated builds an operator f(t)*base from a scalar envelope function.
func Modulated(f func(t float64) complex128, base *mat.CDense) Operator {
	return &modulatedOp{f: f, base: base}
}

func (o *modulatedOp) Shape() Shape {
	r, c := o.base.Dims()
	return Shape{Rows: r, Cols: c}
}

func (o *modulatedOp) Eval(t float64) *mat.CDense {
	return scaleMat(o.f(t), o.base)
}

func (o *modulatedOp) Index(idx []int) Operator { return o }

func (o *modulatedOp) BroadcastTo(batch []int) (Operator, error) {
	if _, err := BroadcastBatch(nil, batch); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return o, nil
	}
	// an unbatched operator broadcasts to any shape by replication
	return &broadcastOp{inner: o, batch: append([]int(nil), batch...)}, nil
}

func (o *modulatedOp) Adjoint() Operator {
	f := o.f
	return &modulatedOp{
		f:    func(t float64) complex128 { return cmplx.Conj(f(t)) },
		base: adjointMat(o.base),
	}
}

func (o *modulatedOp) Mul(z complex128) Operator {
	return &modulatedOp{f: o.f, base: scaleMat(z, o.base)}
}

func (o *modulatedOp) Add(other Operator) (Operator, error) {
	return sum(o, other)
}

// broadcastOp replicates an unbatched operator across batch dimensions.
type broadcastOp struct {
	inner Operator
	batch []int
}

func (o *broadcastOp) Shape() Shape {
	s := o.inner.Shape()
	return Shape{Batch: o.batch, Rows: s.Rows, Cols: s.Cols}
}

func (o *broadcastOp) Eval(t float64) *mat.CDense {
	panic("operator: Eval on batched operator, call Index first")
}

func (o *broadcastOp) Index(idx []int) Operator { return o.inner }

func (o *broadcastOp) BroadcastTo(batch []int) (Operator, error) {
	common, err := BroadcastBatch(o.batch, batch)
	if err != nil {
		return nil, err
	}
	if !sameDims(common, batch) {
		return nil, fmt.Errorf("operator: cannot broadcast batch %v to %v", o.batch, batch)
	}
	return &broadcastOp{inner: o.inner, batch: append([]int(nil), batch...)}, nil
}

func (o *broadcastOp) Adjoint() Operator {
	return &broadcastOp{inner: o.inner.Adjoint(), batch: o.batch}
}

func (o *broadcastOp) Mul(z complex128) Operator {
	return &broadcastOp{inner: o.inner.Mul(z), batch: o.batch}
}

func (o *broadcastOp) Add(other Operator) (Operator, error) {
	return sum(o, other)
}
