// Package command adapts external executables to the pipeline runner
// contract. A reduction step usually shells out to an image-processing
// binary; this package runs it, captures its output, and maps the exit
// status onto a step result so the engine's error policy applies.
package command

import (
	"bufio"
	"context"
	"io"
	"os/exec"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-reduction/pkg/pipeline"
	"github.com/askiada/go-reduction/pkg/pipeline/model"
)

// Program describes one external executable. Args are fixed leading
// arguments; per-step arguments come from the step kwargs at run time.
type Program struct {
	// Name is the suggested registry name of the program.
	Name string
	// Path is the executable path, or a bare name resolved on PATH.
	Path string
	// Args are prepended to every invocation.
	Args []string
	// Env is the environment of the process; nil inherits the parent's.
	Env []string
	// Dir is the working directory; empty inherits the parent's. The kwargs
	// key "dir" overrides it per step.
	Dir string
}

// Runner returns a pipeline runner executing the program.
//
// Recognised kwargs: "args" (list of strings appended to the argv) and "dir"
// (working directory override). The runner blocks until the process exits; a
// cancelled context kills it.
//
// A non-zero exit maps to a Result with StatusError carrying the exit code,
// so the step's IgnoreErrors policy decides whether the run continues. A
// process that cannot be started at all is a failure (returned as a Go
// error). Stderr lines are surfaced as the result's warnings payload.
func (p *Program) Runner() pipeline.Runner {
	return pipeline.RunnerFunc(func(ctx context.Context, pipe *pipeline.Pipeline, kwargs pipeline.Kwargs) (*model.Result, error) {
		argv := append(append([]string(nil), p.Args...), kwargs.Strings("args")...)

		cmd := exec.CommandContext(ctx, p.Path, argv...)
		cmd.Env = p.Env
		cmd.Dir = p.Dir
		if dir := kwargs.String("dir"); dir != "" {
			cmd.Dir = dir
		}

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, errors.Wrap(err, "unable to open stdout pipe")
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, errors.Wrap(err, "unable to open stderr pipe")
		}

		if err := cmd.Start(); err != nil {
			return nil, errors.Wrapf(err, "unable to start %s", p.Path)
		}

		var outLines, errLines []string
		grp := errgroup.Group{}
		grp.Go(func() error {
			var err error
			outLines, err = readLines(stdout)

			return err
		})
		grp.Go(func() error {
			var err error
			errLines, err = readLines(stderr)

			return err
		})
		if err := grp.Wait(); err != nil {
			_ = cmd.Wait()

			return nil, errors.Wrapf(err, "unable to read output of %s", p.Path)
		}

		waitErr := cmd.Wait()

		values := map[string]any{
			"command": p.Path,
		}
		if len(outLines) > 0 {
			values["output"] = outLines
		}
		if len(errLines) > 0 {
			values["warnings"] = errLines
		}

		if waitErr != nil {
			exitErr := &exec.ExitError{}
			if !errors.As(waitErr, &exitErr) {
				return nil, errors.Wrapf(waitErr, "unable to run %s", p.Path)
			}
			values["exit_code"] = exitErr.ExitCode()
			values["error"] = waitErr.Error()

			return &model.Result{Status: model.StatusError, Values: values}, nil
		}
		values["exit_code"] = 0

		return &model.Result{Status: model.StatusSuccess, Values: values}, nil
	})
}

// Register registers the program's runner under its name.
func (p *Program) Register(registry *pipeline.Registry) error {
	name := p.Name
	if name == "" {
		name = p.Path
	}

	return registry.Register(name, p.Runner())
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return lines, errors.Wrap(err, "unable to scan output")
	}

	return lines, nil
}
