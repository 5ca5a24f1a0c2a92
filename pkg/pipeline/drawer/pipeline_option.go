package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-reduction/pkg/pipeline/measure"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Label())
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}
	err = pd.AddStep(model.EndStep.Label())
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStep(prev, step *model.StepInfo) error {
	err := pd.AddStep(step.Label())
	if err != nil {
		return err
	}
	err = pd.AddLink(prev.Label(), step.Label())
	if err != nil {
		return err
	}

	return nil
}

func (pd *pipelineDrawer) OnStepDone(step *model.StepInfo, status model.Status, elapsed time.Duration) error {
	return pd.SetStatus(step.Label(), status)
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.SetLabel(model.EndStep.Label(), time.Since(pd.startTime).String())
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns a pipeline option that draws the run chain with the
// given drawer. The measure is optional; when set, step durations annotate
// the drawing.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure, time.Now()}
}
