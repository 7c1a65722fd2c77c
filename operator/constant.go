package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// constantOp holds one matrix per batch element, flattened row-major over the
// batch dimensions.
type constantOp struct {
	batch []int
	mats  []*mat.CDense
	rows  int
	cols  int
}

// Constant wraps a fixed matrix as a time-independent operator.
func Constant(m *mat.CDense) Operator {
	r, c := m.Dims()
	return &constantOp{mats: []*mat.CDense{m}, rows: r, cols: c}
}

// ConstantBatch wraps a batch of fixed matrices, flattened row-major over the
// batch shape.
func ConstantBatch(batch []int, mats []*mat.CDense) (Operator, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("operator: empty matrix batch")
	}
	if prod(batch) != len(mats) {
		return nil, fmt.Errorf("operator: batch shape %v needs %d matrices, got %d", batch, prod(batch), len(mats))
	}
	r, c := mats[0].Dims()
	for i, m := range mats[1:] {
		ri, ci := m.Dims()
		if ri != r || ci != c {
			return nil, fmt.Errorf("operator: matrix %d has dims (%d, %d), want (%d, %d)", i+1, ri, ci, r, c)
		}
	}
	b := make([]int, len(batch))
	copy(b, batch)
	return &constantOp{batch: b, mats: mats, rows: r, cols: c}, nil
}

// Ket wraps a state vector as a constant (n, 1) operator, the form expected
// for initial states.
func Ket(vec []complex128) Operator {
	data := make([]complex128, len(vec))
	copy(data, vec)
	return Constant(mat.NewCDense(len(vec), 1, data))
}

// KetBatch wraps a batch of state vectors as a constant (..., n, 1) operator.
func KetBatch(batch []int, vecs [][]complex128) (Operator, error) {
	mats := make([]*mat.CDense, len(vecs))
	for i, v := range vecs {
		data := make([]complex128, len(v))
		copy(data, v)
		mats[i] = mat.NewCDense(len(v), 1, data)
	}
	return ConstantBatch(batch, mats)
}

func (o *constantOp) Shape() Shape {
	return Shape{Batch: o.batch, Rows: o.rows, Cols: o.cols}
}

func (o *constantOp) Eval(t float64) *mat.CDense {
	if len(o.batch) > 0 {
		panic("operator: Eval on batched operator, call Index first")
	}
	return o.mats[0]
}

func (o *constantOp) Index(idx []int) Operator {
	return &constantOp{mats: []*mat.CDense{o.mats[Ravel(idx, o.batch)]}, rows: o.rows, cols: o.cols}
}

func (o *constantOp) BroadcastTo(batch []int) (Operator, error) {
	common, err := BroadcastBatch(o.batch, batch)
	if err != nil {
		return nil, err
	}
	if !sameDims(common, batch) {
		return nil, fmt.Errorf("operator: cannot broadcast batch %v to %v", o.batch, batch)
	}
	if sameDims(o.batch, batch) {
		return o, nil
	}
	mats := make([]*mat.CDense, prod(batch))
	for i := range mats {
		src := broadcastIndex(Unravel(i, batch), batch, o.batch)
		mats[i] = o.mats[Ravel(src, o.batch)]
	}
	return ConstantBatch(batch, mats)
}

func (o *constantOp) Adjoint() Operator {
	mats := make([]*mat.CDense, len(o.mats))
	for i, m := range o.mats {
		mats[i] = adjointMat(m)
	}
	return &constantOp{batch: o.batch, mats: mats, rows: o.cols, cols: o.rows}
}

func (o *constantOp) Mul(z complex128) Operator {
	mats := make([]*mat.CDense, len(o.mats))
	for i, m := range o.mats {
		mats[i] = scaleMat(z, m)
	}
	return &constantOp{batch: o.batch, mats: mats, rows: o.rows, cols: o.cols}
}

func (o *constantOp) Add(other Operator) (Operator, error) {
	os := other.Shape()
	if os.Rows != o.rows || os.Cols != o.cols {
		return nil, fmt.Errorf("operator: cannot add shapes %v and %v", o.Shape(), os)
	}
	if oc, ok := other.(*constantOp); ok {
		batch, err := BroadcastBatch(o.batch, oc.batch)
		if err != nil {
			return nil, err
		}
		a, _ := o.BroadcastTo(batch)
		b, _ := oc.BroadcastTo(batch)
		ac, bc := a.(*constantOp), b.(*constantOp)
		mats := make([]*mat.CDense, len(ac.mats))
		for i := range mats {
			mats[i] = addMat(ac.mats[i], bc.mats[i])
		}
		if len(batch) == 0 {
			return Constant(mats[0]), nil
		}
		return ConstantBatch(batch, mats)
	}
	return sum(o, other)
}
