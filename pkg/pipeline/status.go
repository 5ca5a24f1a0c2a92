package pipeline

import (
	"time"

	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// StatusEntry is one record of the append-only status log: the outcome of a
// single step attempt within a run. RunID groups the entries of one Run call.
type StatusEntry struct {
	RunID     string       `json:"run_id"`
	StepID    int          `json:"step_id"`
	Runner    string       `json:"runner"`
	Status    model.Status `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Detail    string       `json:"detail,omitempty"`
}

func (p *Pipeline) logStatus(runID string, step *Step, status model.Status, detail string) {
	p.StatusLog = append(p.StatusLog, StatusEntry{
		RunID:     runID,
		StepID:    step.ID,
		Runner:    step.Runner,
		Status:    status,
		Timestamp: nowUTC(),
		Detail:    detail,
	})
}

// LastStatus returns the most recent status entry for the step with the given
// ID, or nil when the step has not been attempted.
func (p *Pipeline) LastStatus(stepID int) *StatusEntry {
	for i := len(p.StatusLog) - 1; i >= 0; i-- {
		if p.StatusLog[i].StepID == stepID {
			return &p.StatusLog[i]
		}
	}

	return nil
}
