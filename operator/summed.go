package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// summedOp is the lazy pointwise sum of operators with matching trailing
// dimensions; batch dimensions are broadcast.
type summedOp struct {
	terms []Operator
	batch []int
	rows  int
	cols  int
}

func sum(a, b Operator) (Operator, error) {
	as, bs := a.Shape(), b.Shape()
	if as.Rows != bs.Rows || as.Cols != bs.Cols {
		return nil, fmt.Errorf("operator: cannot add shapes %v and %v", as, bs)
	}

	var terms []Operator
	for _, op := range []Operator{a, b} {
		if s, ok := op.(*summedOp); ok {
			terms = append(terms, s.terms...)
		} else {
			terms = append(terms, op)
		}
	}

	shapes := make([][]int, len(terms))
	for i, t := range terms {
		shapes[i] = t.Shape().Batch
	}
	batch, err := BroadcastBatch(shapes...)
	if err != nil {
		return nil, err
	}
	return &summedOp{terms: terms, batch: batch, rows: as.Rows, cols: as.Cols}, nil
}

func (o *summedOp) Shape() Shape {
	return Shape{Batch: o.batch, Rows: o.rows, Cols: o.cols}
}

func (o *summedOp) Eval(t float64) *mat.CDense {
	if len(o.batch) > 0 {
		panic("operator: Eval on batched operator, call Index first")
	}
	out := o.terms[0].Eval(t)
	for _, term := range o.terms[1:] {
		out = addMat(out, term.Eval(t))
	}
	return out
}

func (o *summedOp) Index(idx []int) Operator {
	terms := make([]Operator, len(o.terms))
	for i, t := range o.terms {
		terms[i] = t.Index(broadcastIndex(idx, o.batch, t.Shape().Batch))
	}
	return &summedOp{terms: terms, rows: o.rows, cols: o.cols}
}

func (o *summedOp) BroadcastTo(batch []int) (Operator, error) {
	common, err := BroadcastBatch(o.batch, batch)
	if err != nil {
		return nil, err
	}
	if !sameDims(common, batch) {
		return nil, fmt.Errorf("operator: cannot broadcast batch %v to %v", o.batch, batch)
	}
	return &summedOp{terms: o.terms, batch: common, rows: o.rows, cols: o.cols}, nil
}

func (o *summedOp) Adjoint() Operator {
	terms := make([]Operator, len(o.terms))
	for i, t := range o.terms {
		terms[i] = t.Adjoint()
	}
	return &summedOp{terms: terms, batch: o.batch, rows: o.cols, cols: o.rows}
}

func (o *summedOp) Mul(z complex128) Operator {
	terms := make([]Operator, len(o.terms))
	for i, t := range o.terms {
		terms[i] = t.Mul(z)
	}
	return &summedOp{terms: terms, batch: o.batch, rows: o.rows, cols: o.cols}
}

func (o *summedOp) Add(other Operator) (Operator, error) {
	return sum(o, other)
}
