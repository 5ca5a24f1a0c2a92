package pipeline

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"go.arcalot.io/log/v2"

	"github.com/askiada/go-reduction/internal/fsutil"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// PathTemp is the required key of the paths mapping: scratch space for runners.
const PathTemp = "temp"

// PathLog is the optional key of the paths mapping. When present, the whole
// pipeline is checkpointed under it after every step attempt.
const PathLog = "log"

// PathConfig is a recognised optional key: where runners look for
// configuration files. The engine itself never reads it.
const PathConfig = "config"

type engineState string

const (
	stateIdle          engineState = "idle"
	stateRunning       engineState = "running"
	stateHaltedOnError engineState = "halted_on_error"
	stateComplete      engineState = "complete"
)

// Warning is one warning emitted by a step during a run, collected on the
// pipeline across all steps of the run.
type Warning struct {
	StepID  int    `json:"step_id"`
	Message string `json:"message"`
}

// Config configures a new pipeline.
type Config struct {
	// Name identifies the pipeline in logs and in the checkpoint.
	Name string
	// Paths maps logical names to directories. "temp" is required; "log"
	// enables checkpointing; any other key is passed through to runners.
	Paths map[string]string
	// Registry resolves step runner names. Required.
	Registry *Registry
	// CreatePaths creates missing path directories instead of failing.
	CreatePaths bool
	// Logger receives engine output. Defaults to an error-level logger on
	// stderr.
	Logger log.Logger
}

// Pipeline is the aggregate root: the full step list, the subsequence
// selected for the current run, the cursor into it, and the status log. The
// exported fields are what the checkpoint persists; they are owned by the run
// loop while a run is active and must not be mutated concurrently.
type Pipeline struct {
	Name        string            `json:"name"`
	Paths       map[string]string `json:"paths"`
	Steps       []*Step           `json:"steps"`
	RunSteps    []int             `json:"run_steps"`
	RunStepIdx  int               `json:"run_step_idx"`
	StatusLog   []StatusEntry     `json:"status_log"`
	RunWarnings []Warning         `json:"run_warnings,omitempty"`

	state    engineState
	registry *Registry
	logger   log.Logger
	opts     []model.PipelineOption
}

// New creates a pipeline. The paths mapping must contain a "temp" entry; every
// listed directory must exist unless cfg.CreatePaths is set, in which case
// missing directories are created.
func New(cfg Config, opts ...model.PipelineOption) (*Pipeline, error) {
	if cfg.Registry == nil {
		return nil, ErrRegistryMustBeSet
	}
	if _, ok := cfg.Paths[PathTemp]; !ok {
		return nil, ErrTempPathRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Config{
			Level:       log.LevelError,
			Destination: log.DestinationStdout,
			Stdout:      os.Stderr,
		})
	}

	pipe := &Pipeline{
		Name:     cfg.Name,
		Paths:    cfg.Paths,
		state:    stateIdle,
		registry: cfg.Registry,
		logger:   logger,
		opts:     opts,
	}
	if err := pipe.checkPaths(cfg.CreatePaths); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.New(); err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

func (p *Pipeline) checkPaths(create bool) error {
	for name, dir := range p.Paths {
		exists, err := fsutil.DirExists(dir)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if !create {
			return errors.Errorf("path %q (%s) does not exist", name, dir)
		}
		if err := fsutil.EnsureDir(dir); err != nil {
			return errors.Wrapf(err, "unable to create path %q", name)
		}
	}

	return nil
}

// AddStep appends a step wrapping the named runner. The runner name is
// resolved against the registry immediately; the kwargs are not validated
// until the step is invoked. Steps cannot be added while a run is active.
func (p *Pipeline) AddStep(runnerName string, tags []string, opts ...StepOption) (*Step, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if err := p.guardEdit(); err != nil {
		return nil, err
	}
	runner, err := p.registry.Resolve(runnerName)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add step")
	}

	step := &Step{
		ID:     len(p.Steps),
		Runner: runnerName,
		Tags:   tags,
		runner: runner,
		pipe:   p,
	}
	for _, opt := range opts {
		opt(step)
	}
	p.Steps = append(p.Steps, step)

	return step, nil
}

// Step returns the step with the given ID, so a halted run can be edited
// before resuming.
func (p *Pipeline) Step(id int) (*Step, error) {
	if id < 0 || id >= len(p.Steps) {
		return nil, errors.Errorf("no step with id %d", id)
	}

	return p.Steps[id], nil
}

// State returns the engine state as a string: idle, running, halted_on_error,
// or complete.
func (p *Pipeline) State() string {
	return string(p.state)
}

// Halted reports whether the last run stopped on an intolerable error. A
// halted pipeline is the intended entry point for Resume.
func (p *Pipeline) Halted() bool {
	return p.state == stateHaltedOnError
}

// Complete reports whether the last run walked its whole selection.
func (p *Pipeline) Complete() bool {
	return p.state == stateComplete
}

// guardEdit refuses step mutation while the run loop owns the aggregate.
func (p *Pipeline) guardEdit() error {
	if p.state == stateRunning {
		return ErrPipelineRunning
	}

	return nil
}

func (p *Pipeline) addWarning(stepID int, message string) {
	p.RunWarnings = append(p.RunWarnings, Warning{StepID: stepID, Message: message})
}

// collectWarnings pulls the recognised "warnings" payload out of a step
// result into the pipeline's run warnings.
func (p *Pipeline) collectWarnings(stepID int, result *model.Result) {
	if result == nil || result.Values == nil {
		return
	}
	switch warnings := result.Values["warnings"].(type) {
	case string:
		p.addWarning(stepID, warnings)
	case []string:
		for _, msg := range warnings {
			p.addWarning(stepID, msg)
		}
	case []any:
		for _, item := range warnings {
			if msg, ok := item.(string); ok {
				p.addWarning(stepID, msg)
			}
		}
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
