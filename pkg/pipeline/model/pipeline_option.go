package model

import "time"

// PipelineOption defines the hooks called by the execution engine around a
// run. Implementations (drawer, measure) observe the run without taking part
// in step execution.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	// PrepareStep runs once per selected step before the run starts.
	// prev is the preceding step in the run chain (StartStep for the first).
	PrepareStep(prev, step *StepInfo) error

	// OnStepDone runs after every step attempt with its outcome and duration.
	OnStepDone(step *StepInfo, status Status, elapsed time.Duration) error

	// Finish runs after the pipeline run ends, whether it completed or halted.
	Finish() error
}
