package config

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func sigmaX() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})
}

func sigmaZ() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1})
}

// sigmaMinus lowers |e> = (1, 0) to |g> = (0, 1).
func sigmaMinus() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{0, 0, 1, 0})
}

// annihilation returns the truncated bosonic lowering operator.
func annihilation(n int) *mat.CDense {
	a := mat.NewCDense(n, n, nil)
	for i := 1; i < n; i++ {
		a.Set(i-1, i, complex(math.Sqrt(float64(i)), 0))
	}
	return a
}

// number returns the photon-number operator diag(0..n-1).
func number(n int) *mat.CDense {
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, complex(float64(i), 0))
	}
	return m
}

func scaled(m *mat.CDense, w float64) *mat.CDense {
	r, c := m.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, complex(w, 0)*m.At(i, j))
		}
	}
	return out
}

func addScaled(a, b *mat.CDense, w float64) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j)+complex(w, 0)*b.At(i, j))
		}
	}
	return out
}
