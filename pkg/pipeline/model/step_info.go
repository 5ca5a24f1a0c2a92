package model

import "strconv"

var (
	// StartStep marks the beginning of the run chain in option hooks.
	StartStep = &StepInfo{ID: -1, Runner: "start"}
	// EndStep marks the end of the run chain in option hooks.
	EndStep = &StepInfo{ID: -2, Runner: "end"}
)

// StepInfo describes one step of the run chain to the option packages. The
// engine fills it from the owning step record before the run starts and
// updates Status after each attempt.
type StepInfo struct {
	ID     int
	Runner string
	Tags   []string
	Status Status
}

// Label returns the display name of the step: the runner name suffixed with
// the step ID so repeated runners stay distinct in a drawing.
func (s *StepInfo) Label() string {
	if s.ID < 0 {
		return s.Runner
	}

	return s.Runner + " #" + strconv.Itoa(s.ID)
}
