package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.arcalot.io/log/v2"

	"github.com/askiada/go-reduction/pkg/pipeline"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

func TestCheckpointPath(t *testing.T) {
	t.Parallel()

	pipe := newTestPipeline(t)
	path, ok := pipe.CheckpointPath()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(pipe.Paths[pipeline.PathLog], pipeline.CheckpointFileName), path)
}

func TestCheckpointDisabledWithoutLogPath(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(pipeline.Config{
		Name:        "nolog",
		Paths:       map[string]string{pipeline.PathTemp: t.TempDir()},
		Registry:    testRegistry(t),
		CreatePaths: true,
		Logger:      log.NewTestLogger(t),
	})
	require.NoError(t, err)
	_, ok := pipe.CheckpointPath()
	assert.False(t, ok)

	_, err = pipe.AddStep("ok", []string{"s1"})
	require.NoError(t, err)
	_, err = pipe.Run(context.Background())
	require.NoError(t, err)
}

func TestLoadAfterHalt(t *testing.T) {
	t.Parallel()

	pipe := newTestPipeline(t)
	_, err := pipe.AddStep("ok", []string{"s1"}, pipeline.StepKwargs(pipeline.Kwargs{"var1": 1, "var2": 2}))
	require.NoError(t, err)
	_, err = pipe.AddStep("divide", []string{"s2"}, pipeline.StepKwargs(pipeline.Kwargs{"var1": 10, "var2": 0}))
	require.NoError(t, err)
	_, err = pipe.AddStep("ok", []string{"s3"})
	require.NoError(t, err)

	_, err = pipe.Run(context.Background())
	require.Error(t, err)

	path, ok := pipe.CheckpointPath()
	require.True(t, ok)
	loaded, err := pipeline.Load(path, pipeline.Config{
		Registry: testRegistry(t),
		Logger:   log.NewTestLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, pipe.Name, loaded.Name)
	assert.True(t, loaded.Halted())
	assert.Equal(t, []int{0, 1, 2}, loaded.RunSteps)
	assert.Equal(t, 1, loaded.RunStepIdx)
	require.Len(t, loaded.Steps, 3)
	assert.Equal(t, model.StatusSuccess, loaded.Steps[0].Results.Status)
	assert.Equal(t, model.StatusError, loaded.Steps[1].Results.Status)
	assert.Nil(t, loaded.Steps[2].Results)
	require.Len(t, loaded.StatusLog, 2)
	assert.Equal(t, "division by 0", loaded.StatusLog[1].Detail)
}

func TestLoadThenResume(t *testing.T) {
	t.Parallel()

	pipe := newTestPipeline(t)
	_, err := pipe.AddStep("ok", []string{"s1"})
	require.NoError(t, err)
	_, err = pipe.AddStep("divide", []string{"s2"}, pipeline.StepKwargs(pipeline.Kwargs{"var1": 10, "var2": 0}))
	require.NoError(t, err)
	_, err = pipe.AddStep("ok", []string{"s3"})
	require.NoError(t, err)

	_, err = pipe.Run(context.Background())
	require.Error(t, err)

	path, _ := pipe.CheckpointPath()
	loaded, err := pipeline.Load(path, pipeline.Config{
		Registry: testRegistry(t),
		Logger:   log.NewTestLogger(t),
	})
	require.NoError(t, err)

	step, err := loaded.Step(1)
	require.NoError(t, err)
	require.NoError(t, step.SetKwarg("var2", 5))

	result, err := loaded.Run(context.Background(), pipeline.Resume())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, result.Status)
	assert.True(t, loaded.Complete())
	assert.Equal(t, 2, loaded.Steps[1].Results.Values["quotient"])
	assert.Equal(t, model.StatusSuccess, loaded.Steps[2].Results.Status)
}

func TestLoadMidRunStateIsHalted(t *testing.T) {
	t.Parallel()

	pipe := newTestPipeline(t)
	_, err := pipe.AddStep("ok", []string{"s1"})
	require.NoError(t, err)
	_, err = pipe.Run(context.Background())
	require.NoError(t, err)

	// simulate a process that died mid-run: rewrite the persisted state
	path, _ := pipe.CheckpointPath()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(data, &record))
	record["state"] = "running"
	data, err = json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := pipeline.Load(path, pipeline.Config{
		Registry: testRegistry(t),
		Logger:   log.NewTestLogger(t),
	})
	require.NoError(t, err)
	assert.True(t, loaded.Halted())
}

func TestLoadUnknownRunner(t *testing.T) {
	t.Parallel()

	pipe := newTestPipeline(t)
	_, err := pipe.AddStep("ok", []string{"s1"})
	require.NoError(t, err)
	_, err = pipe.Run(context.Background())
	require.NoError(t, err)

	path, _ := pipe.CheckpointPath()
	_, err = pipeline.Load(path, pipeline.Config{
		Registry: pipeline.NewRegistry(),
		Logger:   log.NewTestLogger(t),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to restore step 0")
}

func TestLoadRequiresRegistry(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Load("nowhere.json", pipeline.Config{})
	require.ErrorIs(t, err, pipeline.ErrRegistryMustBeSet)
}

func TestLoadVersionMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), pipeline.CheckpointFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "name": "x"}`), 0o644))

	_, err := pipeline.Load(path, pipeline.Config{
		Registry: testRegistry(t),
		Logger:   log.NewTestLogger(t),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported checkpoint version 99")
}

func TestCheckpointForcedWrite(t *testing.T) {
	t.Parallel()

	pipe := newTestPipeline(t)
	step, err := pipe.AddStep("ok", []string{"s1"}, pipeline.StepKwargs(pipeline.Kwargs{"var1": 1}))
	require.NoError(t, err)
	require.NoError(t, step.SetKwarg("var2", 2))
	require.NoError(t, pipe.Checkpoint())

	path, _ := pipe.CheckpointPath()
	loaded, err := pipeline.Load(path, pipeline.Config{
		Registry: testRegistry(t),
		Logger:   log.NewTestLogger(t),
	})
	require.NoError(t, err)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, 2, loaded.Steps[0].Kwargs.Int("var2"))
	assert.Nil(t, loaded.Steps[0].Results)
}
