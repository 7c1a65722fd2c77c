package qtraj

import (
	"context"
	"math"

	"github.com/san-kum/qtraj/internal/batch"
	"github.com/san-kum/qtraj/internal/jump"
	"github.com/san-kum/qtraj/ket"
)

// Solve runs the batched trajectory simulation described by p. All
// configuration errors are reported before any integration starts;
// per-trajectory diagnostics (step exhaustion, click overflow) land in
// the result's Infos instead.
func Solve(ctx context.Context, p Problem) (*Result, error) {
	ev, err := validate(&p)
	if err != nil {
		return nil, err
	}

	t0 := p.Options.T0
	if math.IsNaN(t0) {
		t0 = p.SaveTimes[0]
	}

	params := batch.Params{
		H:         p.H,
		Ls:        p.JumpOps,
		Psi0:      p.Psi0,
		Keys:      p.Keys,
		Cartesian: p.Options.CartesianBatching,
		Smart:     ev.SmartSampling,
		Traj: jump.Config{
			SaveTimes:   p.SaveTimes,
			T0:          t0,
			NoClick:     ev.NoClick,
			Finder:      ev.RootFinder,
			NMaxClick:   p.Options.NMaxClick,
			SaveStates:  p.Options.SaveStates,
			Observables: p.Observables,
			SaveExtra:   p.Options.SaveExtra,
		},
	}

	dims, elems, err := batch.Run(ctx, params)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BatchShape: dims,
		Batches:    make([]Batch, len(elems)),
		SaveTimes:  p.SaveTimes,
		Keys:       p.Keys,
		Method:     p.Method,
		Gradient:   p.Gradient,
		Options:    p.Options,
	}
	for i, e := range elems {
		res.Batches[i] = assemble(e, &p)
	}
	return res, nil
}

func assemble(e *batch.Element, p *Problem) Batch {
	ntraj := len(e.Trajs)
	b := Batch{
		FinalStates:   make([]ket.State, ntraj),
		Expects:       make([][][]complex128, ntraj),
		ClickTimes:    make([][][]float64, ntraj),
		NClicks:       make([][]int, ntraj),
		Infos:         make([]TrajInfo, ntraj),
		NoClickStates: e.NoClickStates,
		NoClickProb:   e.NoClickProb,
	}
	if p.Options.SaveStates {
		b.States = make([][]ket.State, ntraj)
	}
	if p.Options.SaveExtra != nil {
		b.Extra = make([][]any, ntraj)
	}
	for i, tr := range e.Trajs {
		if p.Options.SaveStates {
			b.States[i] = tr.States
		}
		b.FinalStates[i] = tr.FinalState
		b.Expects[i] = tr.Expects
		b.ClickTimes[i] = tr.ClickTimes
		b.NClicks[i] = tr.NClicks
		b.Infos[i] = TrajInfo(tr.Info)
		if p.Options.SaveExtra != nil {
			b.Extra[i] = tr.Extra
		}
	}
	return b
}
