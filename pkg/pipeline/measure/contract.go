package measure

import "time"

// Measure collects one metric per step of a run.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the attempt durations of a single step. A step attempted
// more than once (ignored error reruns, resumed runs) accumulates across
// attempts.
type Metric interface {
	AddDuration(elapsed time.Duration)
	Attempts() int64
	AVGDuration() time.Duration
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
}
