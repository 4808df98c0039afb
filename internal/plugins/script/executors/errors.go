package executors

import "errors"

var (
	// ErrConfiguration marks problems with the step configuration, such as
	// malformed bindings or an unreadable script source
	ErrConfiguration = errors.New("configuration error")

	// ErrEvaluation marks compile or runtime failures raised by the script
	ErrEvaluation = errors.New("evaluation error")

	// ErrInterrupted marks an evaluation stopped by cancellation
	ErrInterrupted = errors.New("script interrupted")
)
