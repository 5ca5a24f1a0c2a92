package drawer

import (
	"github.com/askiada/go-reduction/pkg/pipeline/measure"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a run chain.
type Drawer interface {
	// AddStep adds a step to the drawing. Adding the same step twice is a
	// no-op, so a resumed run can announce its chain again.
	AddStep(stepName string) error
	// AddLink adds a link between consecutive steps of the chain.
	AddLink(parentStepName, childStepName string) error
	// SetStatus colours a step with its outcome.
	SetStatus(stepName string, status model.Status) error
	// SetLabel annotates a step with extra text, such as its duration.
	SetLabel(stepName, label string) error
	// AddMeasure annotates the drawing with the collected step durations.
	AddMeasure(measure measure.Measure) error
	// Draw writes the file.
	Draw() error
}
