package operator

import "fmt"

// Shape describes an operator's leading batch dimensions and its trailing
// matrix dimensions.
type Shape struct {
	Batch []int
	Rows  int
	Cols  int
}

// Dim returns the Hilbert-space dimension of a square operator.
func (s Shape) Dim() int { return s.Rows }

// IsBatched reports whether the shape carries leading batch dimensions.
func (s Shape) IsBatched() bool { return len(s.Batch) > 0 }

// NumElems returns the number of batch elements (1 for an unbatched shape).
func (s Shape) NumElems() int { return prod(s.Batch) }

func (s Shape) String() string {
	str := "("
	for _, b := range s.Batch {
		str += fmt.Sprintf("%d, ", b)
	}
	return str + fmt.Sprintf("%d, %d)", s.Rows, s.Cols)
}

func prod(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// Unravel converts a flat row-major index into a multi-index over dims.
func Unravel(i int, dims []int) []int {
	idx := make([]int, len(dims))
	for k := len(dims) - 1; k >= 0; k-- {
		idx[k] = i % dims[k]
		i /= dims[k]
	}
	return idx
}

// Ravel converts a multi-index over dims into a flat row-major index.
func Ravel(idx, dims []int) int {
	flat := 0
	for k, d := range dims {
		flat = flat*d + idx[k]
	}
	return flat
}

// BroadcastBatch computes the common batch shape of the given batch shapes
// under trailing-dimension broadcast rules.
func BroadcastBatch(shapes ...[]int) ([]int, error) {
	ndim := 0
	for _, s := range shapes {
		if len(s) > ndim {
			ndim = len(s)
		}
	}
	out := make([]int, ndim)
	for i := range out {
		out[i] = 1
	}
	for _, s := range shapes {
		off := ndim - len(s)
		for i, d := range s {
			switch {
			case out[off+i] == 1:
				out[off+i] = d
			case d != 1 && d != out[off+i]:
				return nil, fmt.Errorf("operator: batch shapes %v are not broadcast-compatible", shapes)
			}
		}
	}
	return out, nil
}

// broadcastIndex maps a multi-index over the dst batch shape to the
// corresponding multi-index over the (broadcast-compatible) src batch shape.
func broadcastIndex(idx, dst, src []int) []int {
	off := len(dst) - len(src)
	out := make([]int, len(src))
	for i, d := range src {
		if d == 1 {
			out[i] = 0
		} else {
			out[i] = idx[off+i]
		}
	}
	return out
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
