package pipeline

import "github.com/pkg/errors"

// selectRun computes the ordered subsequence of step indices to execute.
//
// An explicit index list is used verbatim, in the given order, bypassing the
// tag logic. Otherwise the candidates are the steps whose tags intersect
// runTags (all steps when runTags is empty), minus every step whose tags
// intersect ignoreTags. The ignore set always wins: a step matching both sets
// is excluded. The result preserves the original step order, not the order
// tags were given in.
func selectRun(steps []*Step, runTags, ignoreTags []string, explicit []int) ([]int, error) {
	if explicit != nil {
		for _, idx := range explicit {
			if idx < 0 || idx >= len(steps) {
				return nil, errors.Errorf("run step index %d out of range [0, %d)", idx, len(steps))
			}
		}

		return append([]int(nil), explicit...), nil
	}

	selected := make([]int, 0, len(steps))
	for idx, step := range steps {
		if len(runTags) > 0 && !step.HasAnyTag(runTags) {
			continue
		}
		if step.HasAnyTag(ignoreTags) {
			continue
		}
		selected = append(selected, idx)
	}

	return selected, nil
}
