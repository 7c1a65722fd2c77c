package gradient

import (
	"math"
	"testing"
)

// quadratic f(x,y) = 3x^2 + xy with gradient (6x+y, x).
func quadratic(p []float64) (float64, error) {
	return 3*p[0]*p[0] + p[0]*p[1], nil
}

func TestForwardDiffQuadratic(t *testing.T) {
	grad, err := Compute(quadratic, []float64{2, -1}, ForwardDiff{})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{11, 2}
	for i := range want {
		if math.Abs(grad[i]-want[i]) > 1e-4 {
			t.Errorf("grad[%d] = %g, want %g", i, grad[i], want[i])
		}
	}
}

func TestCentralDiffQuadratic(t *testing.T) {
	grad, err := Compute(quadratic, []float64{2, -1}, CentralDiff{})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{11, 2}
	for i := range want {
		// central differences are exact on quadratics up to rounding
		if math.Abs(grad[i]-want[i]) > 1e-7 {
			t.Errorf("grad[%d] = %g, want %g", i, grad[i], want[i])
		}
	}
}

func TestComputeDoesNotMutateParams(t *testing.T) {
	params := []float64{2, -1}
	if _, err := Compute(quadratic, params, CentralDiff{}); err != nil {
		t.Fatal(err)
	}
	if params[0] != 2 || params[1] != -1 {
		t.Errorf("params mutated: %v", params)
	}
}

func TestAdjointRejected(t *testing.T) {
	if _, err := Compute(quadratic, []float64{1}, Adjoint{}); err == nil {
		t.Error("expected error for adjoint strategy")
	}
}

func TestCustomEpsScaling(t *testing.T) {
	// large parameter: the step must scale with |p| to stay accurate
	grad, err := Compute(quadratic, []float64{1e6, 0}, CentralDiff{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(grad[0]-6e6) > 1 {
		t.Errorf("grad[0] = %g, want 6e6", grad[0])
	}
}
