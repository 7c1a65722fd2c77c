package analysis

import (
	"math"
	"testing"
)

func TestEnsembleMean(t *testing.T) {
	expects := [][]complex128{
		{1, 0.5},
		{0, 0.5},
	}
	mean := EnsembleMean(expects)
	if mean[0] != 0.5 || mean[1] != 0.5 {
		t.Errorf("mean = %v, want [0.5 0.5]", mean)
	}
}

func TestEnsembleMeanEmpty(t *testing.T) {
	if EnsembleMean(nil) != nil {
		t.Error("empty ensemble must give nil")
	}
}

func TestWeightedMean(t *testing.T) {
	noclick := []complex128{1, 1}
	clicked := [][]complex128{{-1, -1}, {-1, -1}}
	got := WeightedMean(0.25, noclick, clicked)
	// 0.25*1 + 0.75*(-1) = -0.5
	for i, v := range got {
		if math.Abs(v+0.5) > 1e-15 {
			t.Errorf("weighted[%d] = %g, want -0.5", i, v)
		}
	}
}

func TestClickRate(t *testing.T) {
	if got := ClickRate([]int{2, 0, 4}, 2.0); math.Abs(got-1.0) > 1e-15 {
		t.Errorf("rate = %g, want 1", got)
	}
	if ClickRate(nil, 1.0) != 0 {
		t.Error("empty ensemble must give rate 0")
	}
}

func TestWaitingTimes(t *testing.T) {
	nan := math.NaN()
	ct := [][]float64{
		{0.5, 2.0, nan, nan},
		{1.0, nan, nan, nan},
	}
	waits := WaitingTimes(ct)
	want := []float64{0.5, 1.0}
	if len(waits) != 2 {
		t.Fatalf("len = %d, want 2", len(waits))
	}
	for i := range want {
		if math.Abs(waits[i]-want[i]) > 1e-15 {
			t.Errorf("waits[%d] = %g, want %g", i, waits[i], want[i])
		}
	}
}

func TestWaitingTimesTooFewClicks(t *testing.T) {
	if WaitingTimes([][]float64{{0.5, math.NaN()}}) != nil {
		t.Error("fewer than two clicks must give nil")
	}
}
