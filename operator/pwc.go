package operator

import (
	"fmt"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// pwcOp is a piecewise-constant operator: coefficient c_k times a fixed base
// matrix on each interval [times[k], times[k+1]), zero outside the covered
// range. Coefficients may carry batch dimensions.
type pwcOp struct {
	batch  []int
	times  []float64
	values [][]complex128 // [batch element][interval]
	base   *mat.CDense
}

// PWC builds a piecewise-constant operator from interval boundaries, one
// coefficient per interval, and a base matrix.
func PWC(times []float64, values []complex128, base *mat.CDense) (Operator, error) {
	return PWCBatch(nil, times, [][]complex128{values}, base)
}

// PWCBatch builds a batched piecewise-constant operator; values holds one
// coefficient row per batch element, flattened row-major.
func PWCBatch(batch []int, times []float64, values [][]complex128, base *mat.CDense) (Operator, error) {
	if len(times) < 2 {
		return nil, fmt.Errorf("operator: pwc needs at least 2 time points, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("operator: pwc times must be strictly increasing")
		}
	}
	if prod(batch) != len(values) {
		return nil, fmt.Errorf("operator: batch shape %v needs %d coefficient rows, got %d", batch, prod(batch), len(values))
	}
	for i, row := range values {
		if len(row) != len(times)-1 {
			return nil, fmt.Errorf("operator: coefficient row %d has %d entries, want %d", i, len(row), len(times)-1)
		}
	}
	b := make([]int, len(batch))
	copy(b, batch)
	return &pwcOp{batch: b, times: times, values: values, base: base}, nil
}

func (o *pwcOp) Shape() Shape {
	r, c := o.base.Dims()
	return Shape{Batch: o.batch, Rows: r, Cols: c}
}

func (o *pwcOp) coeff(t float64) complex128 {
	if t < o.times[0] || t >= o.times[len(o.times)-1] {
		return 0
	}
	k := sort.SearchFloat64s(o.times, t)
	if k == len(o.times) || o.times[k] > t {
		k--
	}
	return o.values[0][k]
}

func (o *pwcOp) Eval(t float64) *mat.CDense {
	if len(o.batch) > 0 {
		panic("operator: Eval on batched operator, call Index first")
	}
	return scaleMat(o.coeff(t), o.base)
}

func (o *pwcOp) Index(idx []int) Operator {
	row := o.values[Ravel(idx, o.batch)]
	return &pwcOp{times: o.times, values: [][]complex128{row}, base: o.base}
}

func (o *pwcOp) BroadcastTo(batch []int) (Operator, error) {
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
	values := make([][]complex128, prod(batch))
	for i := range values {
		src := broadcastIndex(Unravel(i, batch), batch, o.batch)
		values[i] = o.values[Ravel(src, o.batch)]
	}
	b := make([]int, len(batch))
	copy(b, batch)
	return &pwcOp{batch: b, times: o.times, values: values, base: o.base}, nil
}

func (o *pwcOp) Adjoint() Operator {
	values := make([][]complex128, len(o.values))
	for i, row := range o.values {
		conj := make([]complex128, len(row))
		for j, v := range row {
			conj[j] = cmplx.Conj(v)
		}
		values[i] = conj
	}
	return &pwcOp{batch: o.batch, times: o.times, values: values, base: adjointMat(o.base)}
}

func (o *pwcOp) Mul(z complex128) Operator {
	return &pwcOp{batch: o.batch, times: o.times, values: o.values, base: scaleMat(z, o.base)}
}

func (o *pwcOp) Add(other Operator) (Operator, error) {
	return sum(o, other)
}
