package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagSteps(tags ...[]string) []*Step {
	steps := make([]*Step, len(tags))
	for i, stepTags := range tags {
		steps[i] = &Step{ID: i, Tags: stepTags}
	}

	return steps
}

func TestSelectRunAll(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1", "X"}, []string{"s2", "X"}, []string{"s3", "Y"})
	got, err := selectRun(steps, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestSelectRunTags(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1", "X"}, []string{"s2", "X"}, []string{"s3", "Y"})
	got, err := selectRun(steps, []string{"X"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestSelectIgnoreTags(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1", "X"}, []string{"s2", "X"}, []string{"s3", "Y"})
	got, err := selectRun(steps, nil, []string{"s2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)
}

func TestSelectIgnoreWinsOverRun(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1", "X"}, []string{"s2", "X"}, []string{"s3", "Y"})
	got, err := selectRun(steps, []string{"X"}, []string{"X"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = selectRun(steps, []string{"X", "Y"}, []string{"s2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)
}

func TestSelectPreservesStepOrder(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1", "X"}, []string{"s2", "Y"}, []string{"s3", "X"})
	// tag order must not leak into the result order
	got, err := selectRun(steps, []string{"Y", "X"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestSelectExplicitSubset(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1"}, []string{"s2"}, []string{"s3"})
	// used verbatim, in the given order, tags bypassed entirely
	got, err := selectRun(steps, []string{"s1"}, []string{"s3"}, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, got)
}

func TestSelectExplicitOutOfRange(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1"})
	_, err := selectRun(steps, nil, nil, []int{0, 1})
	require.Error(t, err)
}

func TestSelectIdempotent(t *testing.T) {
	t.Parallel()

	steps := tagSteps([]string{"s1", "X"}, []string{"s2", "X"}, []string{"s3", "Y"})
	first, err := selectRun(steps, []string{"X"}, []string{"s2"}, nil)
	require.NoError(t, err)
	second, err := selectRun(steps, []string{"X"}, []string{"s2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
