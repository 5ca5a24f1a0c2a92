// Package pipeline orchestrates multi-step reduction jobs as an ordered list
// of named, tagged steps. Each step wraps a registered runner with its
// invocation arguments and an error-tolerance policy.
//
// A run walks a selected subsequence of the steps, chosen by tag filters or
// an explicit index list, and stops on the first intolerable error with the
// cursor left on the failing step. The whole aggregate is written to a
// checkpoint file after every step attempt, so a halted or crashed run can be
// reloaded, edited in place, and resumed from where it stopped.
//
// Execution is strictly sequential: one step at a time, no dependency
// resolution between steps, and no parallelism. A runner that blocks on an
// external process blocks the whole pipeline.
package pipeline
