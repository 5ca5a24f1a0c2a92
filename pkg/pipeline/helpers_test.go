package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.arcalot.io/log/v2"

	"github.com/askiada/go-reduction/pkg/pipeline"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// testRegistry returns a registry with the runners used across the tests:
// "ok" succeeds, "fail" reports an error result, "boom" returns a Go error,
// "panic" panics, "bare" returns a result without a status and "divide"
// errors when var2 is zero.
func testRegistry(t *testing.T) *pipeline.Registry {
	t.Helper()

	reg := pipeline.NewRegistry()
	require.NoError(t, reg.RegisterFunc("ok", func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		return model.Success(map[string]any{"sum": kwargs.Int("var1") + kwargs.Int("var2")}), nil
	}))
	require.NoError(t, reg.RegisterFunc("fail", func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		return model.Error("division by 0"), nil
	}))
	require.NoError(t, reg.RegisterFunc("boom", func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		return nil, assert.AnError
	}))
	require.NoError(t, reg.RegisterFunc("panic", func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		panic("unreachable file")
	}))
	require.NoError(t, reg.RegisterFunc("bare", func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		return &model.Result{Values: map[string]any{"rows": 42}}, nil
	}))
	require.NoError(t, reg.RegisterFunc("divide", func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		if kwargs.Int("var2") == 0 {
			return model.Error("division by 0"), nil
		}

		return model.Success(map[string]any{"quotient": kwargs.Int("var1") / kwargs.Int("var2")}), nil
	}))

	return reg
}

func testPaths(t *testing.T) map[string]string {
	t.Helper()

	dir := t.TempDir()

	return map[string]string{
		pipeline.PathTemp: dir + "/temp",
		pipeline.PathLog:  dir + "/log",
	}
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	pipe, err := pipeline.New(pipeline.Config{
		Name:        "test",
		Paths:       testPaths(t),
		Registry:    testRegistry(t),
		CreatePaths: true,
		Logger:      log.NewTestLogger(t),
	})
	require.NoError(t, err)

	return pipe
}
