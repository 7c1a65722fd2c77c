package ket

import (
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBasisAndNorm(t *testing.T) {
	s := Basis(3, 1)
	if s.Norm() != 1 {
		t.Errorf("basis state norm = %v, want 1", s.Norm())
	}
	if s[0] != 0 || s[1] != 1 || s[2] != 0 {
		t.Errorf("unexpected basis state %v", s)
	}
}

func TestNormalized(t *testing.T) {
	s := State{2, 0, 2i}
	n := s.Normalized()

	if math.Abs(n.Norm()-1) > 1e-15 {
		t.Errorf("normalized norm = %v, want 1", n.Norm())
	}
	// original untouched
	if s[0] != 2 {
		t.Error("Normalized mutated the receiver")
	}

	zero := State{0, 0}
	if zero.Normalized().Norm() != 0 {
		t.Error("normalizing the zero vector should be a no-op")
	}
}

func TestDotConjugatesFirstArgument(t *testing.T) {
	a := State{1i, 0}
	b := State{1i, 0}
	if d := Dot(a, b); cmplx.Abs(d-1) > 1e-15 {
		t.Errorf("<a|a> = %v, want 1", d)
	}
}

func TestApplyAndExpect(t *testing.T) {
	// sigma_x
	sx := mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})

	up := Basis(2, 0)
	flipped := Apply(sx, up)
	if flipped[0] != 0 || flipped[1] != 1 {
		t.Errorf("sigma_x|0> = %v, want |1>", flipped)
	}

	// <0|sx|0> = 0, <+|sx|+> = 1
	if e := Expect(sx, up); cmplx.Abs(e) > 1e-15 {
		t.Errorf("<0|sx|0> = %v, want 0", e)
	}
	inv := complex(1/math.Sqrt2, 0)
	plus := State{inv, inv}
	if e := Expect(sx, plus); cmplx.Abs(e-1) > 1e-14 {
		t.Errorf("<+|sx|+> = %v, want 1", e)
	}
}

func TestIsValid(t *testing.T) {
	if !(State{1, 2i}).IsValid() {
		t.Error("finite state reported invalid")
	}
	if (State{complex(math.NaN(), 0)}).IsValid() {
		t.Error("NaN state reported valid")
	}
	if (State{complex(0, math.Inf(1))}).IsValid() {
		t.Error("Inf state reported valid")
	}
}

func TestAddScaled(t *testing.T) {
	dst := State{1, 1}
	AddScaled(dst, 2i, State{1, 0})
	if dst[0] != 1+2i || dst[1] != 1 {
		t.Errorf("AddScaled result %v", dst)
	}
}
