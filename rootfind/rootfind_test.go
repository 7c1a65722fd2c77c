package rootfind

import (
	"errors"
	"math"
	"testing"
)

func TestBisectionLinear(t *testing.T) {
	f := func(x float64) float64 { return 2*x - 1 }
	x, err := NewBisection().Find(f, nil, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-0.5) > 1e-9 {
		t.Errorf("root = %g, want 0.5", x)
	}
}

func TestBisectionCosine(t *testing.T) {
	x, err := NewBisection().Find(math.Cos, nil, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-math.Pi/2) > 1e-9 {
		t.Errorf("root = %g, want pi/2", x)
	}
}

func TestBisectionNoBracket(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	if _, err := NewBisection().Find(f, nil, -1, 1); !errors.Is(err, ErrNoBracket) {
		t.Errorf("err = %v, want ErrNoBracket", err)
	}
}

func TestBisectionEndpointRoot(t *testing.T) {
	f := func(x float64) float64 { return x }
	x, err := NewBisection().Find(f, nil, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if x != 0 {
		t.Errorf("root = %g, want 0", x)
	}
}

func TestNewtonCosine(t *testing.T) {
	df := func(x float64) float64 { return -math.Sin(x) }
	x, err := NewNewton().Find(math.Cos, df, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-math.Pi/2) > 1e-10 {
		t.Errorf("root = %g, want pi/2", x)
	}
}

func TestNewtonNilDerivativeFallsBack(t *testing.T) {
	f := func(x float64) float64 { return x - 0.25 }
	x, err := NewNewton().Find(f, nil, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-0.25) > 1e-9 {
		t.Errorf("root = %g, want 0.25", x)
	}
}

func TestNewtonStaysInBracket(t *testing.T) {
	// steep tails push raw newton iterates far outside [lo, hi]
	f := func(x float64) float64 { return math.Tanh(10 * (x - 0.7)) }
	df := func(x float64) float64 {
		c := math.Cosh(10 * (x - 0.7))
		return 10 / (c * c)
	}
	x, err := NewNewton().Find(f, df, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-0.7) > 1e-9 {
		t.Errorf("root = %g, want 0.7", x)
	}
}
