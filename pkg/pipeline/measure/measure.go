package measure

import (
	"sync"
)

// DefaultMeasure is the in-memory Measure implementation.
type DefaultMeasure struct {
	Steps map[string]Metric
}

// NewDefaultMeasure creates an empty measure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

// AddMetric returns the metric registered under name, creating it when
// needed. A resumed run prepares the same steps again and must keep the
// durations already accumulated.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	if mt, ok := m.Steps[name]; ok {
		return mt
	}
	mt := &DefaultMetric{
		mu: &sync.Mutex{},
	}
	m.Steps[name] = mt

	return mt
}

// GetMetric returns the metric registered under name, or nil.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	return m.Steps[name]
}

// AllMetrics returns all metrics keyed by step name.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	return m.Steps
}

var _ Measure = (*DefaultMeasure)(nil)
