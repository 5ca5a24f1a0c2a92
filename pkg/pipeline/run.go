package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

type runConfig struct {
	runTags        []string
	ignoreTags     []string
	runSteps       []int
	resume         bool
	startIdx       int
	hasStartIdx    bool
	ignoreErrors   bool
	ignoreFailures bool
}

// RunOption configures a single Run call.
type RunOption func(c *runConfig)

// RunTags restricts the run to steps carrying at least one of the given tags.
func RunTags(tags ...string) RunOption {
	return func(c *runConfig) {
		c.runTags = tags
	}
}

// IgnoreTags excludes steps carrying any of the given tags. Exclusion always
// wins over RunTags.
func IgnoreTags(tags ...string) RunOption {
	return func(c *runConfig) {
		c.ignoreTags = tags
	}
}

// RunSteps runs exactly the given step indices, in the given order, bypassing
// the tag logic.
func RunSteps(indices ...int) RunOption {
	return func(c *runConfig) {
		c.runSteps = indices
	}
}

// Resume reuses the selection and cursor of the previous run instead of
// recomputing them, continuing from the step the run halted on.
func Resume() RunOption {
	return func(c *runConfig) {
		c.resume = true
	}
}

// StartIndex moves the cursor to the given position in the run selection
// before executing. Combined with Resume it skips a known-bad step without
// discarding the rest of the planned selection; without Resume the selection
// is recomputed first and the jump is logged as a configuration warning.
func StartIndex(idx int) RunOption {
	return func(c *runConfig) {
		c.startIdx = idx
		c.hasStartIdx = true
	}
}

// RunIgnoreErrors makes this run log and continue past error results from
// every step, regardless of the per-step policy.
func RunIgnoreErrors() RunOption {
	return func(c *runConfig) {
		c.ignoreErrors = true
	}
}

// RunIgnoreFailures makes this run log and continue past runner failures from
// every step, regardless of the per-step policy.
func RunIgnoreFailures() RunOption {
	return func(c *runConfig) {
		c.ignoreFailures = true
	}
}

// Run executes the selected steps in order, starting from the cursor.
//
// A fresh call recomputes the selection and starts at the beginning. On an
// intolerable error the run halts with the cursor left on the failing step;
// Run(Resume()) continues from exactly that step. After every attempt the
// status log is appended and, when a log path is configured, the whole
// aggregate is checkpointed, so the on-disk state never lags the in-memory
// cursor by more than one step.
//
// The returned result reports the aggregate outcome and carries the warnings
// collected from step results under the "warnings" payload key.
func (p *Pipeline) Run(ctx context.Context, opts ...RunOption) (*model.Result, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if p.state == stateRunning {
		return nil, ErrPipelineRunning
	}
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := p.prepareRun(cfg); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	infos := p.prepareHooks()

	p.state = stateRunning
	p.logger.Debugf("pipeline %s: run %s starting at cursor %d of %d", p.Name, runID, p.RunStepIdx, len(p.RunSteps))

	for p.RunStepIdx < len(p.RunSteps) {
		if err := ctx.Err(); err != nil {
			p.state = stateHaltedOnError
			if cerr := p.checkpoint(); cerr != nil {
				p.logger.Errorf("pipeline %s: checkpoint failed during cancellation: %v", p.Name, cerr)
			}
			p.finishHooks()

			return nil, errors.Wrap(err, "run cancelled")
		}

		step := p.Steps[p.RunSteps[p.RunStepIdx]]
		start := time.Now()
		result, runErr := p.invoke(ctx, step)
		elapsed := time.Since(start)

		haltErr := p.recordAttempt(runID, cfg, step, result, runErr)
		p.hookStepDone(infos, step, elapsed)
		if err := p.checkpoint(); err != nil {
			p.state = stateHaltedOnError
			p.finishHooks()

			return nil, errors.Wrap(err, "unable to write checkpoint")
		}
		if haltErr != nil {
			p.finishHooks()

			return nil, haltErr
		}
		p.RunStepIdx++
	}

	p.state = stateComplete
	if err := p.checkpoint(); err != nil {
		return nil, errors.Wrap(err, "unable to write final checkpoint")
	}
	p.finishHooks()
	p.logger.Infof("pipeline %s: run %s complete (%d steps)", p.Name, runID, len(p.RunSteps))

	return p.aggregateResult(), nil
}

// prepareRun applies the selection semantics: fresh runs recompute the
// selection and reset the cursor, resumed runs reuse both.
func (p *Pipeline) prepareRun(cfg *runConfig) error {
	if cfg.resume {
		if p.RunSteps == nil {
			return ErrNothingToResume
		}
		if cfg.runTags != nil || cfg.ignoreTags != nil || cfg.runSteps != nil {
			p.logger.Warningf("pipeline %s: selection options are ignored on resume; reusing the previous selection", p.Name)
		}
		if cfg.hasStartIdx {
			if cfg.startIdx < 0 || cfg.startIdx > len(p.RunSteps) {
				return errors.Errorf("start index %d out of range [0, %d]", cfg.startIdx, len(p.RunSteps))
			}
			p.RunStepIdx = cfg.startIdx
		}

		return nil
	}

	selected, err := selectRun(p.Steps, cfg.runTags, cfg.ignoreTags, cfg.runSteps)
	if err != nil {
		return err
	}
	p.RunSteps = selected
	p.RunStepIdx = 0
	p.RunWarnings = nil
	if cfg.hasStartIdx {
		if cfg.startIdx < 0 || cfg.startIdx > len(p.RunSteps) {
			return errors.Errorf("start index %d out of range [0, %d]", cfg.startIdx, len(p.RunSteps))
		}
		// Jumping into a fresh selection discards the steps before the start
		// index; resuming is usually what was meant.
		p.logger.Warningf("pipeline %s: start index %d without resume resets the selection and skips the first %d steps", p.Name, cfg.startIdx, cfg.startIdx)
		p.RunStepIdx = cfg.startIdx
	}

	return nil
}

// invoke calls the step's runner, turning a panic into a returned error so a
// broken runner is subject to the same failure policy as one returning an
// error.
func (p *Pipeline) invoke(ctx context.Context, step *Step) (result *model.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = errors.Errorf("runner panicked: %v", rec)
		}
	}()
	if step.runner == nil {
		return nil, errors.Errorf("step %d (%s) has no resolved runner", step.ID, step.Runner)
	}

	return step.runner.Run(ctx, p, step.Kwargs)
}

// recordAttempt interprets one attempt's outcome, appends the status log
// entry, stores the result on the step, and applies the error policy. A
// non-nil return halts the run with the cursor left on the step.
func (p *Pipeline) recordAttempt(runID string, cfg *runConfig, step *Step, result *model.Result, runErr error) error {
	if runErr != nil {
		detail := runErr.Error()
		step.Results = &model.Result{Status: model.StatusError, Values: map[string]any{"error": detail}}
		p.logStatus(runID, step, model.StatusError, detail)
		if step.IgnoreFailures || cfg.ignoreFailures {
			p.logger.Warningf("pipeline %s: step %d (%s) failed, continuing: %v", p.Name, step.ID, step.Runner, runErr)

			return nil
		}
		p.state = stateHaltedOnError

		return &StepFailure{StepID: step.ID, Runner: step.Runner, Err: runErr}
	}

	if result == nil {
		result = &model.Result{Status: model.StatusUnknown}
	}
	step.Results = result
	p.collectWarnings(step.ID, result)

	switch result.Status {
	case model.StatusSuccess:
		p.logStatus(runID, step, model.StatusSuccess, result.Detail())
		p.logger.Debugf("pipeline %s: step %d (%s) succeeded", p.Name, step.ID, step.Runner)

		return nil
	case model.StatusError:
		detail := result.Detail()
		p.logStatus(runID, step, model.StatusError, detail)
		if step.IgnoreErrors || cfg.ignoreErrors {
			p.logger.Warningf("pipeline %s: step %d (%s) reported an error, continuing: %s", p.Name, step.ID, step.Runner, detail)

			return nil
		}
		p.state = stateHaltedOnError

		return &StepError{StepID: step.ID, Runner: step.Runner, Detail: detail}
	default:
		// Unrecognised statuses come from runners outside our control; they
		// are recorded and never halt the run.
		result.Status = model.StatusUnknown
		p.logStatus(runID, step, model.StatusUnknown, result.Detail())
		p.logger.Warningf("pipeline %s: step %d (%s) returned no recognisable status", p.Name, step.ID, step.Runner)

		return nil
	}
}

func (p *Pipeline) aggregateResult() *model.Result {
	values := map[string]any{}
	if len(p.RunWarnings) > 0 {
		warnings := make([]string, 0, len(p.RunWarnings))
		for _, warning := range p.RunWarnings {
			warnings = append(warnings, warning.Message)
		}
		values["warnings"] = warnings
	}

	return &model.Result{Status: model.StatusSuccess, Values: values}
}

// prepareHooks announces the selected chain to the option hooks and returns
// the step infos, keyed by step ID, reused by hookStepDone.
func (p *Pipeline) prepareHooks() map[int]*model.StepInfo {
	infos := make(map[int]*model.StepInfo, len(p.RunSteps))
	prev := model.StartStep
	for _, idx := range p.RunSteps {
		info := p.Steps[idx].info()
		infos[p.Steps[idx].ID] = info
		for _, opt := range p.opts {
			if err := opt.PrepareStep(prev, info); err != nil {
				p.logger.Warningf("pipeline %s: option hook failed preparing step %d: %v", p.Name, info.ID, err)
			}
		}
		prev = info
	}
	for _, opt := range p.opts {
		if err := opt.PrepareStep(prev, model.EndStep); err != nil {
			p.logger.Warningf("pipeline %s: option hook failed preparing end step: %v", p.Name, err)
		}
	}

	return infos
}

func (p *Pipeline) hookStepDone(infos map[int]*model.StepInfo, step *Step, elapsed time.Duration) {
	info, ok := infos[step.ID]
	if !ok {
		return
	}
	status := model.StatusUnknown
	if step.Results != nil {
		status = step.Results.Status
	}
	info.Status = status
	for _, opt := range p.opts {
		if err := opt.OnStepDone(info, status, elapsed); err != nil {
			p.logger.Warningf("pipeline %s: option hook failed after step %d: %v", p.Name, step.ID, err)
		}
	}
}

func (p *Pipeline) finishHooks() {
	for _, opt := range p.opts {
		if err := opt.Finish(); err != nil {
			p.logger.Warningf("pipeline %s: option hook failed to finish: %v", p.Name, err)
		}
	}
}
