package model

// Status is the outcome of a single step attempt.
type Status string

const (
	// StatusPending is the zero state of a step that has not been attempted yet.
	StatusPending Status = "pending"
	// StatusSuccess means the runner reported success.
	StatusSuccess Status = "success"
	// StatusError means the runner reported an error, or returned a Go error
	// that the step was configured to tolerate.
	StatusError Status = "error"
	// StatusUnknown is assigned by the engine when a runner's result carries
	// no recognisable status. It is never chosen by a runner.
	StatusUnknown Status = "unknown"
)

// Result is the structured outcome returned by a runner. Status is the only
// field the engine interprets; Values is a free-form payload kept on the step
// and written to the checkpoint.
//
// The payload key "warnings" is recognised by the engine: a string or a list
// of strings under it is appended to the pipeline's run warnings.
type Result struct {
	Status Status         `json:"status"`
	Values map[string]any `json:"values,omitempty"`
}

// Success returns a success result with an optional payload.
func Success(values map[string]any) *Result {
	return &Result{Status: StatusSuccess, Values: values}
}

// Error returns an error result with a detail message in the payload.
func Error(detail string) *Result {
	return &Result{Status: StatusError, Values: map[string]any{"error": detail}}
}

// Detail returns a human-readable summary of the result payload, used in the
// status log. The "error" payload entry wins when present.
func (r *Result) Detail() string {
	if r == nil || r.Values == nil {
		return ""
	}
	if msg, ok := r.Values["error"].(string); ok {
		return msg
	}
	if msg, ok := r.Values["detail"].(string); ok {
		return msg
	}

	return ""
}
