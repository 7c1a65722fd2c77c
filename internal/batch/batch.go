// Package batch fans a trajectory configuration out over batched
// operators and random keys, running the per-element ensembles in
// parallel and assembling results in a deterministic order.
package batch

import (
	"context"
	"sync"

	"github.com/san-kum/qtraj/internal/jump"
	"github.com/san-kum/qtraj/ket"
	"github.com/san-kum/qtraj/operator"
	"github.com/san-kum/qtraj/prng"
)

// Params describes a batched solve. Traj is the per-trajectory template;
// its Gen field is filled in per batch element.
type Params struct {
	H         operator.Operator
	Ls        []operator.Operator
	Psi0      operator.Operator
	Keys      []prng.Key
	Cartesian bool
	Smart     bool
	Traj      jump.Config
}

// Element holds the trajectories of one batch element. Under smart
// sampling Trajs[0] is the deterministic no-click trajectory and the
// NoClick fields mirror its saved states and survival probabilities.
type Element struct {
	Trajs         []*jump.Traj
	NoClickStates []ket.State
	NoClickProb   []float64
}

// CartesianDims concatenates the batch dimensions of the Hamiltonian,
// each jump operator in order, and the initial state.
func CartesianDims(h operator.Operator, ls []operator.Operator, psi0 operator.Operator) []int {
	var dims []int
	dims = append(dims, h.Shape().Batch...)
	for _, l := range ls {
		dims = append(dims, l.Shape().Batch...)
	}
	dims = append(dims, psi0.Shape().Batch...)
	return dims
}

// SharedDims broadcasts all operand batch shapes to a common shape.
func SharedDims(h operator.Operator, ls []operator.Operator, psi0 operator.Operator) ([]int, error) {
	shapes := [][]int{h.Shape().Batch}
	for _, l := range ls {
		shapes = append(shapes, l.Shape().Batch)
	}
	shapes = append(shapes, psi0.Shape().Batch)
	return operator.BroadcastBatch(shapes...)
}

// element extracts the unbatched operands of flat batch index i.
func (p Params) element(dims []int, i int) (operator.Operator, []operator.Operator, ket.State, error) {
	idx := operator.Unravel(i, dims)

	if p.Cartesian {
		pos := 0
		take := func(op operator.Operator) operator.Operator {
			n := len(op.Shape().Batch)
			sub := idx[pos : pos+n]
			pos += n
			return op.Index(sub)
		}
		h := take(p.H)
		ls := make([]operator.Operator, len(p.Ls))
		for k, l := range p.Ls {
			ls[k] = take(l)
		}
		psi0 := take(p.Psi0)
		return h, ls, readKet(psi0), nil
	}

	bh, err := p.H.BroadcastTo(dims)
	if err != nil {
		return nil, nil, nil, err
	}
	ls := make([]operator.Operator, len(p.Ls))
	for k, l := range p.Ls {
		if ls[k], err = l.BroadcastTo(dims); err != nil {
			return nil, nil, nil, err
		}
		ls[k] = ls[k].Index(idx)
	}
	bpsi, err := p.Psi0.BroadcastTo(dims)
	if err != nil {
		return nil, nil, nil, err
	}
	return bh.Index(idx), ls, readKet(bpsi.Index(idx)), nil
}

// readKet reads an unbatched (n, 1) operator into a unit-norm state
// vector.
func readKet(op operator.Operator) ket.State {
	m := op.Eval(0)
	n, _ := m.Dims()
	s := make(ket.State, n)
	for i := 0; i < n; i++ {
		s[i] = m.At(i, 0)
	}
	return s.Normalized()
}

// Run executes the full batch. The returned elements are indexed in
// row-major order over dims; trajectory order within an element follows
// the key order.
func Run(ctx context.Context, p Params) ([]int, []*Element, error) {
	var dims []int
	var err error
	if p.Cartesian {
		dims = CartesianDims(p.H, p.Ls, p.Psi0)
	} else {
		if dims, err = SharedDims(p.H, p.Ls, p.Psi0); err != nil {
			return nil, nil, err
		}
	}

	nElems := 1
	for _, d := range dims {
		nElems *= d
	}

	elems := make([]*Element, nElems)
	errs := make([]error, nElems)

	var wg sync.WaitGroup
	for i := 0; i < nElems; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			elems[idx], errs[idx] = p.runElement(ctx, dims, idx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return dims, elems, nil
}

func (p Params) runElement(ctx context.Context, dims []int, idx int) (*Element, error) {
	h, ls, psi0, err := p.element(dims, idx)
	if err != nil {
		return nil, err
	}

	cfg := p.Traj
	cfg.Gen = jump.NewGenerator(h, ls)

	elem := &Element{Trajs: make([]*jump.Traj, len(p.Keys))}

	keys := p.Keys
	rmin := 0.0
	if p.Smart {
		// the first key is reserved for the deterministic trajectory; it
		// consumes no draws but keeps the key-to-trajectory correspondence
		noclick, err := jump.RunNoClick(ctx, cfg, psi0)
		if err != nil {
			return nil, err
		}
		elem.Trajs[0] = noclick
		elem.NoClickStates = noclick.States
		if elem.NoClickStates == nil {
			// states were not saved; still report the final state
			elem.NoClickStates = []ket.State{noclick.FinalState}
		}
		elem.NoClickProb = noclick.NoClickProb
		rmin = noclick.NoClickProb[len(noclick.NoClickProb)-1]
		keys = keys[1:]
	}

	offset := len(p.Keys) - len(keys)
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func(i int, k prng.Key) {
			defer wg.Done()
			elem.Trajs[offset+i], errs[i] = jump.RunClick(ctx, cfg, psi0, k.Stream(), rmin)
		}(i, k)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return elem, nil
}
