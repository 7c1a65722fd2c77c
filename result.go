package qtraj

import (
	"github.com/san-kum/qtraj/gradient"
	"github.com/san-kum/qtraj/ket"
	"github.com/san-kum/qtraj/method"
	"github.com/san-kum/qtraj/operator"
	"github.com/san-kum/qtraj/prng"
)

// TrajInfo reports integration statistics of one trajectory. A non-nil
// Err means the trajectory terminated early; its remaining save slots
// repeat the last state before termination.
type TrajInfo struct {
	Steps    int
	Rejected int
	Err      error
}

// Batch holds the trajectory outputs of one batch element. All leading
// indices are the trajectory index, in key order; under smart sampling
// trajectory 0 is the deterministic no-click run.
type Batch struct {
	// States is [ntraj][nsave]; nil when Options.SaveStates is false.
	States [][]ket.State
	// FinalStates is the renormalized state of each trajectory at the
	// final save time.
	FinalStates []ket.State
	// Expects is [ntraj][nobs][nsave].
	Expects [][][]complex128
	// ClickTimes is [ntraj][nchannel][NMaxClick], NaN-padded.
	ClickTimes [][][]float64
	// NClicks is [ntraj][nchannel] and keeps counting past NMaxClick.
	NClicks [][]int
	// Extra is [ntraj][nsave]; nil unless Options.SaveExtra is set.
	Extra [][]any

	Infos []TrajInfo

	// NoClickStates and NoClickProb mirror the deterministic trajectory
	// under smart sampling: its saved states and its survival probability
	// at each save time. When SaveStates is off NoClickStates holds only
	// the final state. Nil without smart sampling.
	NoClickStates []ket.State
	NoClickProb   []float64
}

// Result is the output of Solve.
type Result struct {
	// BatchShape is the output batch shape; empty for an unbatched solve.
	BatchShape []int
	// Batches is row-major over BatchShape.
	Batches []Batch

	SaveTimes []float64
	Keys      []prng.Key
	Method    method.Method
	Gradient  gradient.Strategy
	Options   Options
}

// At returns the batch element at the given multi-index.
func (r *Result) At(idx ...int) *Batch {
	return &r.Batches[operator.Ravel(idx, r.BatchShape)]
}
