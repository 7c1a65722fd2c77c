package qtraj

import (
	"context"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qtraj/gradient"
	"github.com/san-kum/qtraj/ket"
	"github.com/san-kum/qtraj/method"
	"github.com/san-kum/qtraj/operator"
	"github.com/san-kum/qtraj/prng"
)

func sigmaMinus(gamma float64) *mat.CDense {
	g := complex(math.Sqrt(gamma), 0)
	return mat.NewCDense(2, 2, []complex128{0, 0, g, 0})
}

func sigmaZ() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1})
}

func zero2() *mat.CDense {
	return mat.NewCDense(2, 2, nil)
}

func linspace(t0, t1 float64, n int) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = t0 + (t1-t0)*float64(i)/float64(n-1)
	}
	return ts
}

func decayProblem(gamma float64, nKeys int) Problem {
	return Problem{
		H:           operator.Constant(zero2()),
		JumpOps:     []operator.Operator{operator.Constant(sigmaMinus(gamma))},
		Psi0:        operator.Ket([]complex128{1, 0}),
		SaveTimes:   linspace(0, 2, 9),
		Keys:        prng.NewKey(17).Split(nKeys),
		Observables: []*mat.CDense{sigmaZ()},
		Method:      method.DefaultEvent(),
		Options:     DefaultOptions(),
	}
}

func TestSolveValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Problem)
		wantSub string
	}{
		{"no jump ops", func(p *Problem) { p.JumpOps = nil }, "Schrödinger"},
		{"non square H", func(p *Problem) { p.H = operator.Ket([]complex128{1, 0}) }, "(..., n, n)"},
		{"jump op dim", func(p *Problem) {
			p.JumpOps = []operator.Operator{operator.Constant(mat.NewCDense(3, 3, nil))}
		}, "jump operator 0"},
		{"psi0 shape", func(p *Problem) { p.Psi0 = operator.Constant(zero2()) }, "initial state"},
		{"psi0 not normalized", func(p *Problem) { p.Psi0 = operator.Ket([]complex128{2, 0}) }, "normalized"},
		{"observable dim", func(p *Problem) { p.Observables = []*mat.CDense{mat.NewCDense(3, 3, nil)} }, "observable 0"},
		{"empty save times", func(p *Problem) { p.SaveTimes = nil }, "save time"},
		{"non increasing save times", func(p *Problem) { p.SaveTimes = []float64{0, 1, 1} }, "strictly increasing"},
		{"t0 after first save", func(p *Problem) { p.Options.T0 = 0.5 }, "start time"},
		{"no keys", func(p *Problem) { p.Keys = nil }, "key"},
		{"bad nmaxclick", func(p *Problem) { p.Options.NMaxClick = 0 }, "NMaxClick"},
		{"nil method", func(p *Problem) { p.Method = nil }, "method"},
		{"missing stepper", func(p *Problem) { p.Method = method.Event{} }, "no-click stepper"},
		{"zero fixed step", func(p *Problem) {
			p.Method = method.Event{NoClick: method.RK4{}}
		}, "positive step"},
		{"zero value dopri5", func(p *Problem) {
			p.Method = method.Event{NoClick: method.Dopri5{}}
		}, "dopri5"},
		{"adjoint gradient", func(p *Problem) { p.Gradient = gradient.Adjoint{} }, "adjoint"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := decayProblem(1.0, 4)
			tc.mutate(&p)
			_, err := Solve(context.Background(), p)
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestSolveUnbatchedShape(t *testing.T) {
	res, err := Solve(context.Background(), decayProblem(1.0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.BatchShape) != 0 {
		t.Errorf("BatchShape = %v, want empty", res.BatchShape)
	}
	if len(res.Batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(res.Batches))
	}
	b := res.At()
	if len(b.FinalStates) != 5 || len(b.Expects) != 5 {
		t.Errorf("trajectory counts: %d final states, %d expects", len(b.FinalStates), len(b.Expects))
	}
	for _, s := range b.FinalStates {
		if math.Abs(s.Norm2()-1) > 1e-9 {
			t.Errorf("final state norm2 = %g", s.Norm2())
		}
	}
}

func TestSolveEchoesConfiguration(t *testing.T) {
	p := decayProblem(1.0, 3)
	p.Gradient = gradient.CentralDiff{}
	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Keys) != 3 || len(res.SaveTimes) != 9 {
		t.Error("result must echo keys and save times")
	}
	if _, ok := res.Method.(method.Event); !ok {
		t.Error("result must echo the method")
	}
	if _, ok := res.Gradient.(gradient.CentralDiff); !ok {
		t.Error("result must echo the gradient strategy")
	}
}

func TestSmartSamplingWeightedAverage(t *testing.T) {
	// pure decay from |e>: the mixed-state mean of sigma_z at time T is
	// 2 e^{-gamma T} - 1. Under smart sampling every clicked trajectory
	// sits in |g> at T, so the weighted average is exact up to solver
	// tolerance, independent of the number of trajectories.
	gamma, t1 := 1.0, 2.0
	p := decayProblem(gamma, 6)
	m := method.DefaultEvent()
	m.SmartSampling = true
	p.Method = m

	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	b := res.At()
	if b.NoClickProb == nil {
		t.Fatal("smart sampling must report NoClickProb")
	}

	last := len(p.SaveTimes) - 1
	pnc := b.NoClickProb[last]

	sum := 0.0
	for _, trajExp := range b.Expects[1:] {
		sum += real(trajExp[0][last])
	}
	clicked := sum / float64(len(b.Expects)-1)
	weighted := pnc*real(b.Expects[0][0][last]) + (1-pnc)*clicked

	want := 2*math.Exp(-gamma*t1) - 1
	if math.Abs(weighted-want) > 1e-5 {
		t.Errorf("weighted <sigma_z>(T) = %g, want %g", weighted, want)
	}
}

func TestSolveCartesianBatchShape(t *testing.T) {
	h, err := operator.ConstantBatch([]int{2}, []*mat.CDense{zero2(), sigmaZ()})
	if err != nil {
		t.Fatal(err)
	}
	l, err := operator.ConstantBatch([]int{3}, []*mat.CDense{sigmaMinus(0.5), sigmaMinus(1), sigmaMinus(2)})
	if err != nil {
		t.Fatal(err)
	}

	p := decayProblem(1.0, 3)
	p.H = h
	p.JumpOps = []operator.Operator{l}

	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.BatchShape) != 2 || res.BatchShape[0] != 2 || res.BatchShape[1] != 3 {
		t.Fatalf("BatchShape = %v, want [2 3]", res.BatchShape)
	}
	if res.At(1, 2) != &res.Batches[5] {
		t.Error("At must index row-major")
	}
}

func TestSolveSharedBatchShape(t *testing.T) {
	l, err := operator.ConstantBatch([]int{3}, []*mat.CDense{sigmaMinus(0.5), sigmaMinus(1), sigmaMinus(2)})
	if err != nil {
		t.Fatal(err)
	}
	p := decayProblem(1.0, 3)
	p.JumpOps = []operator.Operator{l}
	p.Options.CartesianBatching = false

	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.BatchShape) != 1 || res.BatchShape[0] != 3 {
		t.Fatalf("BatchShape = %v, want [3]", res.BatchShape)
	}
}

func TestSolveSaveStatesOff(t *testing.T) {
	p := decayProblem(1.0, 3)
	p.Options.SaveStates = false
	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	b := res.At()
	if b.States != nil {
		t.Error("States must be nil when SaveStates is off")
	}
	if len(b.FinalStates) != 3 {
		t.Error("final states must still be reported")
	}
}

func TestSmartSamplingSaveStatesOff(t *testing.T) {
	p := decayProblem(1.0, 3)
	p.Options.SaveStates = false
	m := method.DefaultEvent()
	m.SmartSampling = true
	p.Method = m

	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	b := res.At()
	if len(b.NoClickStates) != 1 {
		t.Fatalf("NoClickStates holds %d states, want the final state only", len(b.NoClickStates))
	}
	if math.Abs(b.NoClickStates[0].Norm()-1) > 1e-9 {
		t.Errorf("no-click final state norm = %g, want 1", b.NoClickStates[0].Norm())
	}
}

func TestSolveSaveExtra(t *testing.T) {
	p := decayProblem(1.0, 2)
	p.Options.SaveExtra = func(s ket.State) any {
		return real(s[0] * complex(real(s[0]), -imag(s[0])))
	}
	res, err := Solve(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	b := res.At()
	if len(b.Extra) != 2 || len(b.Extra[0]) != len(p.SaveTimes) {
		t.Fatalf("Extra layout = %d x %d", len(b.Extra), len(b.Extra[0]))
	}
	if _, ok := b.Extra[0][0].(float64); !ok {
		t.Error("Extra must carry the SaveExtra payload")
	}
}

// survival probability of the deterministic trajectory as a loss; for
// pure decay it is e^{-gamma T} with derivative -T e^{-gamma T}.
func noClickLoss(t *testing.T, t1 float64) func([]float64) (float64, error) {
	t.Helper()
	return func(params []float64) (float64, error) {
		gamma := params[0]
		p := decayProblem(gamma, 2)
		p.SaveTimes = linspace(0, t1, 5)
		m := method.DefaultEvent()
		m.SmartSampling = true
		// tight tolerances so the difference quotient is not dominated by
		// integration error
		nc := method.NewDopri5()
		nc.Rtol, nc.Atol = 1e-10, 1e-10
		m.NoClick = nc
		p.Method = m

		res, err := Solve(context.Background(), p)
		if err != nil {
			return 0, err
		}
		prob := res.At().NoClickProb
		return prob[len(prob)-1], nil
	}
}

// smart-sampling weighted mean of <sigma_z>(T); for pure decay from the
// excited state the clicked trajectories all sit in |g> at T, so the loss is
// exactly 2 e^{-gamma T} - 1 with derivative -2T e^{-gamma T}.
func expectLoss(t *testing.T, t1 float64) func([]float64) (float64, error) {
	t.Helper()
	return func(params []float64) (float64, error) {
		gamma := params[0]
		p := decayProblem(gamma, 3)
		p.SaveTimes = linspace(0, t1, 5)
		m := method.DefaultEvent()
		m.SmartSampling = true
		nc := method.NewDopri5()
		nc.Rtol, nc.Atol = 1e-10, 1e-10
		m.NoClick = nc
		p.Method = m

		res, err := Solve(context.Background(), p)
		if err != nil {
			return 0, err
		}
		b := res.At()
		last := len(p.SaveTimes) - 1
		pnc := b.NoClickProb[last]
		sum := 0.0
		for _, trajExp := range b.Expects[1:] {
			sum += real(trajExp[0][last])
		}
		clicked := sum / float64(len(b.Expects)-1)
		return pnc*real(b.Expects[0][0][last]) + (1-pnc)*clicked, nil
	}
}

func TestGradientForwardDiff(t *testing.T) {
	gamma, t1 := 0.8, 1.5
	grad, err := gradient.Compute(noClickLoss(t, t1), []float64{gamma}, gradient.ForwardDiff{Eps: 1e-5})
	if err != nil {
		t.Fatal(err)
	}
	want := -t1 * math.Exp(-gamma*t1)
	if math.Abs(grad[0]-want) > 1e-3 {
		t.Errorf("d p_noclick / d gamma = %g, want %g", grad[0], want)
	}
}

func TestGradientCentralDiff(t *testing.T) {
	gamma, t1 := 0.8, 1.5
	grad, err := gradient.Compute(noClickLoss(t, t1), []float64{gamma}, gradient.CentralDiff{Eps: 1e-5})
	if err != nil {
		t.Fatal(err)
	}
	want := -t1 * math.Exp(-gamma*t1)
	if math.Abs(grad[0]-want) > 1e-4 {
		t.Errorf("d p_noclick / d gamma = %g, want %g", grad[0], want)
	}
}

func TestGradientThroughExpectation(t *testing.T) {
	gamma, t1 := 0.8, 1.5
	grad, err := gradient.Compute(expectLoss(t, t1), []float64{gamma}, gradient.CentralDiff{Eps: 1e-5})
	if err != nil {
		t.Fatal(err)
	}
	want := -2 * t1 * math.Exp(-gamma*t1)
	if math.Abs(grad[0]-want) > 1e-4 {
		t.Errorf("d <sigma_z>(T) / d gamma = %g, want %g", grad[0], want)
	}
}
