package qtraj

import "github.com/san-kum/qtraj/internal/jump"

// Sentinel errors reported through TrajInfo.Err.
var (
	// ErrMaxSteps: the adaptive stepper ran out of steps before the next
	// save time.
	ErrMaxSteps = jump.ErrMaxSteps

	// ErrClickOverflow: a trajectory recorded more clicks on one channel
	// than Options.NMaxClick allows.
	ErrClickOverflow = jump.ErrClickOverflow
)
