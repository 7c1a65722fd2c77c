package jump

import "errors"

var (
	// ErrMaxSteps is set when the adaptive stepper exhausts its step
	// budget before reaching the next save time.
	ErrMaxSteps = errors.New("jump: maximum step count exceeded")

	// ErrClickOverflow is set when a trajectory records more clicks on a
	// channel than its click buffer can hold.
	ErrClickOverflow = errors.New("jump: click record capacity exceeded")
)
