package pipeline

import (
	"context"

	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// Kwargs holds the invocation arguments of a step. The values are not
// validated against the runner; a runner that is missing an argument reports
// that at call time. Kwargs are serialized verbatim into the checkpoint, so
// values must be JSON-encodable.
type Kwargs map[string]any

// String returns the string value under key, or "" when absent or not a string.
func (k Kwargs) String(key string) string {
	val, _ := k[key].(string)

	return val
}

// Int returns the integer value under key. JSON decoding yields float64, so
// both int and float64 are accepted.
func (k Kwargs) Int(key string) int {
	switch val := k[key].(type) {
	case int:
		return val
	case float64:
		return int(val)
	}

	return 0
}

// Bool returns the boolean value under key, or false when absent.
func (k Kwargs) Bool(key string) bool {
	val, _ := k[key].(bool)

	return val
}

// Strings returns the list of strings under key. A checkpoint round trip
// decodes lists as []any, so both forms are accepted.
func (k Kwargs) Strings(key string) []string {
	switch val := k[key].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

func (k Kwargs) clone() Kwargs {
	if k == nil {
		return nil
	}
	out := make(Kwargs, len(k))
	for key, val := range k {
		out[key] = val
	}

	return out
}

// Runner is one unit of work in a pipeline. The pipeline is passed in so a
// runner can read the paths mapping; kwargs carry its invocation arguments.
//
// A runner reports a recoverable domain problem by returning a Result with
// StatusError and a nil error. A returned non-nil error means the runner
// itself broke and is treated as a failure. A result without a recognised
// status is recorded as StatusUnknown and never halts the run.
type Runner interface {
	Run(ctx context.Context, pipe *Pipeline, kwargs Kwargs) (*model.Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, pipe *Pipeline, kwargs Kwargs) (*model.Result, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, pipe *Pipeline, kwargs Kwargs) (*model.Result, error) {
	return f(ctx, pipe, kwargs)
}

// Step is one unit of work in the pipeline: a registered runner name, the
// kwargs it is invoked with, a set of tags used for selective execution, and
// the error-tolerance policy. The ID is the position in the owning pipeline's
// step list and never changes; steps are appended, never reordered.
type Step struct {
	ID             int           `json:"id"`
	Runner         string        `json:"runner"`
	Tags           []string      `json:"tags"`
	Kwargs         Kwargs        `json:"kwargs,omitempty"`
	IgnoreErrors   bool          `json:"ignore_errors"`
	IgnoreFailures bool          `json:"ignore_failures"`
	Results        *model.Result `json:"results,omitempty"`

	runner Runner
	pipe   *Pipeline
}

// StepOption configures a step when it is added.
type StepOption func(s *Step)

// StepKwargs sets the invocation arguments of the step. The map is copied;
// later changes to the caller's map do not reach the step.
func StepKwargs(kwargs Kwargs) StepOption {
	return func(s *Step) {
		s.Kwargs = kwargs.clone()
	}
}

// StepIgnoreErrors makes the run log and continue when the step's runner
// returns an error status instead of halting.
func StepIgnoreErrors() StepOption {
	return func(s *Step) {
		s.IgnoreErrors = true
	}
}

// StepIgnoreFailures makes the run log and continue when the step's runner
// returns a Go error or panics instead of halting.
func StepIgnoreFailures() StepOption {
	return func(s *Step) {
		s.IgnoreFailures = true
	}
}

// HasAnyTag reports whether the step carries at least one of the given tags.
func (s *Step) HasAnyTag(tags []string) bool {
	for _, tag := range tags {
		for _, own := range s.Tags {
			if own == tag {
				return true
			}
		}
	}

	return false
}

// SetKwarg replaces a single invocation argument. This is the edit-and-resume
// mechanism: fix a bad argument on the halted step, then resume the run.
// Editing is refused while the pipeline is running.
func (s *Step) SetKwarg(key string, value any) error {
	if err := s.pipe.guardEdit(); err != nil {
		return err
	}
	if s.Kwargs == nil {
		s.Kwargs = Kwargs{}
	}
	s.Kwargs[key] = value

	return nil
}

// SetKwargs replaces all invocation arguments of the step. The map is copied.
func (s *Step) SetKwargs(kwargs Kwargs) error {
	if err := s.pipe.guardEdit(); err != nil {
		return err
	}
	s.Kwargs = kwargs.clone()

	return nil
}

// SetIgnoreErrors changes the error-status policy of the step between runs.
func (s *Step) SetIgnoreErrors(ignore bool) error {
	if err := s.pipe.guardEdit(); err != nil {
		return err
	}
	s.IgnoreErrors = ignore

	return nil
}

// SetIgnoreFailures changes the failure policy of the step between runs.
func (s *Step) SetIgnoreFailures(ignore bool) error {
	if err := s.pipe.guardEdit(); err != nil {
		return err
	}
	s.IgnoreFailures = ignore

	return nil
}

func (s *Step) info() *model.StepInfo {
	status := model.StatusPending
	if s.Results != nil {
		status = s.Results.Status
	}

	return &model.StepInfo{
		ID:     s.ID,
		Runner: s.Runner,
		Tags:   s.Tags,
		Status: status,
	}
}
