package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPipelineMustBeSet is returned when a nil pipeline is used.
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	// ErrRegistryMustBeSet is returned when a pipeline is built without a runner registry.
	ErrRegistryMustBeSet = errors.New("registry must be set")
	// ErrTempPathRequired is returned when the paths mapping has no "temp" entry.
	ErrTempPathRequired = errors.New(`paths must contain a "temp" entry`)
	// ErrPipelineRunning is returned when steps are added or edited while a run is active.
	ErrPipelineRunning = errors.New("pipeline is running")
	// ErrNothingToResume is returned when Resume is requested before any run selected steps.
	ErrNothingToResume = errors.New("no previous run to resume")
)

// StepError reports a step whose runner returned an error status and whose
// policy does not tolerate errors. The run halts with the cursor left on the
// failing step so it can be edited and resumed.
type StepError struct {
	StepID int
	Runner string
	Detail string
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %d (%s) reported an error", e.StepID, e.Runner)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

// StepFailure reports a step whose runner returned a Go error or panicked and
// whose policy does not tolerate failures. The underlying error is wrapped.
type StepFailure struct {
	StepID int
	Runner string
	Err    error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.StepID, e.Runner, e.Err)
}

func (e *StepFailure) Unwrap() error {
	return e.Err
}
