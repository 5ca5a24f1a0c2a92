package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.arcalot.io/log/v2"

	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// CheckpointFileName is the name of the checkpoint file under the "log" path.
const CheckpointFileName = "pipeline.json"

const checkpointVersion = 1

// checkpointRecord is the versioned on-disk form of the whole aggregate.
// Steps are persisted as descriptors (runner name, tags, kwargs, policy,
// results); no code is serialized. Loading resolves the names against a
// registry.
type checkpointRecord struct {
	Version     int               `json:"version"`
	Name        string            `json:"name"`
	State       string            `json:"state"`
	Paths       map[string]string `json:"paths"`
	Steps       []*Step           `json:"steps"`
	RunSteps    []int             `json:"run_steps"`
	RunStepIdx  int               `json:"run_step_idx"`
	StatusLog   []StatusEntry     `json:"status_log"`
	RunWarnings []Warning         `json:"run_warnings,omitempty"`
}

// CheckpointPath returns the checkpoint file location and whether
// checkpointing is enabled for this pipeline.
func (p *Pipeline) CheckpointPath() (string, bool) {
	dir, ok := p.Paths[PathLog]
	if !ok {
		return "", false
	}

	return filepath.Join(dir, CheckpointFileName), true
}

// checkpoint overwrites the snapshot file with the current aggregate. It is a
// no-op when no log path is configured. The write is a single-writer
// overwrite; a crash mid-write can tear the file, which is accepted.
func (p *Pipeline) checkpoint() error {
	path, ok := p.CheckpointPath()
	if !ok {
		return nil
	}
	record := checkpointRecord{
		Version:     checkpointVersion,
		Name:        p.Name,
		State:       string(p.state),
		Paths:       p.Paths,
		Steps:       p.Steps,
		RunSteps:    p.RunSteps,
		RunStepIdx:  p.RunStepIdx,
		StatusLog:   p.StatusLog,
		RunWarnings: p.RunWarnings,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to encode checkpoint")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "unable to write checkpoint %s", path)
	}

	return nil
}

// Checkpoint forces a snapshot write outside the run loop, for callers that
// edited steps and want the on-disk state to match before the next run.
func (p *Pipeline) Checkpoint() error {
	if err := p.guardEdit(); err != nil {
		return err
	}

	return p.checkpoint()
}

// Load reconstructs a pipeline from a checkpoint file, exactly as it stood
// after the last persisted step attempt: steps with their results, the run
// selection, the cursor, and the status log. Runner names are resolved
// against cfg.Registry; an unknown name is an error naming the step. Only
// cfg.Registry and cfg.Logger are consulted; everything else comes from the
// snapshot.
//
// A snapshot persisted mid-run (the process died before the run ended) is
// loaded as halted, making it resumable.
func Load(path string, cfg Config, opts ...model.PipelineOption) (*Pipeline, error) {
	if cfg.Registry == nil {
		return nil, ErrRegistryMustBeSet
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read checkpoint %s", path)
	}
	var record checkpointRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "unable to decode checkpoint %s", path)
	}
	if record.Version != checkpointVersion {
		return nil, errors.Errorf("unsupported checkpoint version %d (want %d)", record.Version, checkpointVersion)
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
		Name:        record.Name,
		Paths:       record.Paths,
		Steps:       record.Steps,
		RunSteps:    record.RunSteps,
		RunStepIdx:  record.RunStepIdx,
		StatusLog:   record.StatusLog,
		RunWarnings: record.RunWarnings,
		state:       loadedState(record.State),
		registry:    cfg.Registry,
		logger:      logger,
		opts:        opts,
	}
	for _, opt := range opts {
		if err := opt.New(); err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}
	for _, step := range pipe.Steps {
		runner, err := cfg.Registry.Resolve(step.Runner)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to restore step %d", step.ID)
		}
		step.runner = runner
		step.pipe = pipe
	}

	return pipe, nil
}

func loadedState(state string) engineState {
	switch engineState(state) {
	case stateComplete:
		return stateComplete
	case stateIdle:
		return stateIdle
	default:
		// halted_on_error, or a run that never reached its terminal
		// checkpoint before the process died.
		return stateHaltedOnError
	}
}
