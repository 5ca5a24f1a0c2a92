// Package config builds pipelines from YAML definitions. Steps reference
// runners by registered name, so a definition file together with a runner
// registry fully describes a reduction job.
package config

import (
	"github.com/pkg/errors"
	"go.arcalot.io/log/v2"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-reduction/pkg/pipeline"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// PipelineConfig is the root structure for a pipeline definition.
type PipelineConfig struct {
	Name        string            `yaml:"name"`
	Paths       map[string]string `yaml:"paths"`
	CreatePaths bool              `yaml:"create_paths"`
	Steps       []StepRef         `yaml:"steps"`
}

// StepRef is a single step entry: either a plain runner name or a struct.
// In YAML, a step can be written as:
//   - astrometry
//   - runner: stack
//     tags: [stack, deep]
//     ignore_errors: true
//     kwargs:
//       field: ngc6822
type StepRef struct {
	Runner         string         `yaml:"runner"`
	Tags           []string       `yaml:"tags"`
	Kwargs         map[string]any `yaml:"kwargs"`
	IgnoreErrors   bool           `yaml:"ignore_errors"`
	IgnoreFailures bool           `yaml:"ignore_failures"`
}

// UnmarshalYAML allows a step to be a string (runner name only) or a struct.
func (s *StepRef) UnmarshalYAML(value *yaml.Node) error {
	var nameOnly string
	if err := value.Decode(&nameOnly); err == nil {
		s.Runner = nameOnly

		return nil
	}
	type raw StepRef

	return value.Decode((*raw)(s))
}

// Parse parses YAML bytes into a PipelineConfig.
func Parse(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse pipeline config")
	}

	return &cfg, nil
}

// Build creates the pipeline described by the definition, resolving every
// step against the registry. A step without tags gets its runner name as the
// only tag, so it stays addressable by tag filters.
func (c *PipelineConfig) Build(registry *pipeline.Registry, logger log.Logger, opts ...model.PipelineOption) (*pipeline.Pipeline, error) {
	pipe, err := pipeline.New(pipeline.Config{
		Name:        c.Name,
		Paths:       c.Paths,
		Registry:    registry,
		CreatePaths: c.CreatePaths,
		Logger:      logger,
	}, opts...)
	if err != nil {
		return nil, err
	}

	for i, ref := range c.Steps {
		if ref.Runner == "" {
			return nil, errors.Errorf("step %d has no runner", i)
		}
		tags := ref.Tags
		if len(tags) == 0 {
			tags = []string{ref.Runner}
		}
		stepOpts := []pipeline.StepOption{}
		if ref.Kwargs != nil {
			stepOpts = append(stepOpts, pipeline.StepKwargs(pipeline.Kwargs(ref.Kwargs)))
		}
		if ref.IgnoreErrors {
			stepOpts = append(stepOpts, pipeline.StepIgnoreErrors())
		}
		if ref.IgnoreFailures {
			stepOpts = append(stepOpts, pipeline.StepIgnoreFailures())
		}
		if _, err := pipe.AddStep(ref.Runner, tags, stepOpts...); err != nil {
			return nil, errors.Wrapf(err, "unable to add step %d", i)
		}
	}

	return pipe, nil
}
