package measure

import (
	"time"

	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
	startTime time.Time
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStep.Label())
	pm.AddMetric(model.EndStep.Label())

	return nil
}

func (pm *pipelineMeasure) PrepareStep(prev, step *model.StepInfo) error {
	pm.AddMetric(step.Label())

	return nil
}

func (pm *pipelineMeasure) OnStepDone(step *model.StepInfo, status model.Status, elapsed time.Duration) error {
	pm.AddMetric(step.Label()).AddDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.AddMetric(model.EndStep.Label()).SetTotalDuration(time.Since(pm.startTime))

	return nil
}

// PipelineMeasure returns a pipeline option that records the duration of
// every step attempt into the given measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure, time.Now()}
}
