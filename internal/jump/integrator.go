package jump

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qtraj/internal/integrators"
	"github.com/san-kum/qtraj/ket"
	"github.com/san-kum/qtraj/method"
	"github.com/san-kum/qtraj/prng"
	"github.com/san-kum/qtraj/rootfind"
)

// initial trial step for adaptive steppers, as a fraction of the first
// save interval
const initialStepFraction = 0.01

// Config describes one trajectory run. The operators inside Gen must be
// unbatched.
type Config struct {
	Gen         *Generator
	SaveTimes   []float64
	T0          float64
	NoClick     method.NoClickMethod
	Finder      rootfind.Finder
	NMaxClick   int
	SaveStates  bool
	Observables []*mat.CDense
	SaveExtra   func(ket.State) any
}

// Info reports per-trajectory integration statistics. Err is non-nil
// when the trajectory terminated early; the remaining save slots then
// hold the last state before termination.
type Info struct {
	Steps    int
	Rejected int
	Err      error
}

// Traj is the output of a single trajectory.
type Traj struct {
	States      []ket.State
	FinalState  ket.State
	Expects     [][]complex128
	ClickTimes  [][]float64
	NClicks     []int
	NoClickProb []float64
	Extra       []any
	Info        Info
}

// RunClick integrates one clicking trajectory, drawing thresholds and
// channel choices from stream. With rmin > 0 the first threshold is
// restricted to [rmin, 1).
func RunClick(ctx context.Context, cfg Config, psi0 ket.State, stream *prng.Stream, rmin float64) (*Traj, error) {
	return run(ctx, cfg, psi0, newSampler(stream, rmin))
}

// RunNoClick integrates the deterministic no-click trajectory. No
// randomness is consumed; the squared norm at each save time is recorded
// as the no-click probability.
func RunNoClick(ctx context.Context, cfg Config, psi0 ket.State) (*Traj, error) {
	return run(ctx, cfg, psi0, nil)
}

func run(ctx context.Context, cfg Config, psi0 ket.State, smp *sampler) (*Traj, error) {
	st, err := NewStepping(cfg.NoClick)
	if err != nil {
		return nil, err
	}
	adaptive, isAdaptive := st.Stepper.(integrators.Adaptive)
	deriv := cfg.Gen.Deriv

	nSave := len(cfg.SaveTimes)
	nObs := len(cfg.Observables)
	nChan := len(cfg.Gen.Ls)

	out := &Traj{
		Expects: make([][]complex128, nObs),
		Extra:   nil,
	}
	for i := range out.Expects {
		out.Expects[i] = make([]complex128, nSave)
	}
	if cfg.SaveStates {
		out.States = make([]ket.State, nSave)
	}
	if cfg.SaveExtra != nil {
		out.Extra = make([]any, nSave)
	}
	if smp == nil {
		out.NoClickProb = make([]float64, nSave)
	}

	rec := newClickRecord(nChan, cfg.NMaxClick)
	rates := make([]float64, nChan)

	psi := psi0.Clone()
	t := cfg.T0

	// threshold below any reachable squared norm disables clicks
	r := -1.0
	if smp != nil {
		r = smp.nextThreshold()
	}

	dt := st.Dt
	if isAdaptive {
		dt = (cfg.SaveTimes[nSave-1] - cfg.T0) * initialStepFraction
		if dt <= 0 {
			dt = 1e-3
		}
	}

	save := func(k int) {
		norm := psi.Normalized()
		if cfg.SaveStates {
			out.States[k] = norm
		}
		for i, obs := range cfg.Observables {
			out.Expects[i][k] = ket.Expect(obs, norm)
		}
		if cfg.SaveExtra != nil {
			out.Extra[k] = cfg.SaveExtra(norm)
		}
		if out.NoClickProb != nil {
			out.NoClickProb[k] = psi.Norm2()
		}
		out.FinalState = norm
	}

	terminate := func(k int, cause error) *Traj {
		out.Info.Err = cause
		for ; k < nSave; k++ {
			save(k)
		}
		out.ClickTimes = rec.times
		out.NClicks = rec.counts
		return out
	}

	for k := 0; k < nSave; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := cfg.SaveTimes[k]

		for t < target-1e-14*math.Max(1, math.Abs(target)) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			h := math.Min(dt, target-t)

			var next ket.State
			if isAdaptive {
				if st.MaxSteps > 0 && out.Info.Steps+out.Info.Rejected >= st.MaxSteps {
					return terminate(k, ErrMaxSteps), nil
				}
				trial, ratio, dtNext := adaptive.TryStep(deriv, t, psi, h)
				if ratio > 1 {
					out.Info.Rejected++
					dt = dtNext
					continue
				}
				next = trial
				dt = dtNext
			} else {
				next = st.Stepper.Step(deriv, t, psi, h)
			}
			out.Info.Steps++

			if next.Norm2() > r {
				psi = next
				t += h
				continue
			}

			// survival probability crossed the threshold inside (t, t+h)
			tstar := t + h
			psiStar := next
			if cfg.Finder != nil {
				evalAt := func(tau float64) ket.State {
					return st.Stepper.Step(deriv, t, psi, tau-t)
				}
				g := func(tau float64) float64 {
					return evalAt(tau).Norm2() - r
				}
				dg := func(tau float64) float64 {
					return -cfg.Gen.TotalRate(tau, evalAt(tau))
				}
				if root, err := cfg.Finder.Find(g, dg, t, t+h); err == nil {
					tstar = root
					psiStar = evalAt(root)
				}
			}

			cfg.Gen.Rates(tstar, psiStar, rates)
			ch, ok := smp.pickChannel(rates)
			if !ok {
				// all channel rates vanished at the crossing: keep the
				// threshold and continue deterministically
				psi = next
				t += h
				continue
			}

			psi = cfg.Gen.ApplyJump(ch, tstar, psiStar)
			t = tstar
			if rec.add(ch, tstar) {
				return terminate(k, ErrClickOverflow), nil
			}
			r = smp.nextThreshold()
		}

		t = target
		save(k)
	}

	out.ClickTimes = rec.times
	out.NClicks = rec.counts
	return out, nil
}
