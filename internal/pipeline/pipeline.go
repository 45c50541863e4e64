package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/shinji-kodama/project-quickstart/internal/ctxlog"
	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/runner"
)

// Reporter receives progress events from the driver loop.
type Reporter interface {
	// StageStarted is called before a stage with a non-empty message runs.
	StageStarted(stage Stage)
	// CommandStarted is called right before an external command runs.
	CommandStarted(cmd runner.Command)
	// StageDone is called after every step of a stage with a non-empty
	// message succeeded.
	StageDone(stage Stage)
	// StepSkipped is called in dry-run mode for each step not executed.
	StepSkipped(step Step)
}

// Pipeline drives a Plan. A Pipeline is single-use.
type Pipeline struct {
	Runner   runner.Runner
	Reporter Reporter

	// DryRun executes validation stages only and reports every other step
	// through Reporter.StepSkipped.
	DryRun bool

	state   model.State
	workDir string
}

// New returns a Pipeline that runs commands with r and reports to rep.
func New(r runner.Runner, rep Reporter) *Pipeline {
	return &Pipeline{Runner: r, Reporter: rep}
}

// State returns the state the pipeline is in: the state of the stage being
// run, Done after success or Aborted after a failure.
func (p *Pipeline) State() model.State {
	return p.state
}

// WorkDir returns the working directory after the last StepChdir.
func (p *Pipeline) WorkDir() string {
	return p.workDir
}

// Run executes plan stage by stage and step by step. It stops at the first
// failing step and returns its error; later steps never start.
func (p *Pipeline) Run(ctx context.Context, plan Plan) error {
	log := ctxlog.FromContext(ctx)
	p.workDir = plan.WorkDir

	for _, stage := range plan.Stages {
		p.state = stage.State
		log.Debug("entering state", "state", stage.State.String(), "steps", len(stage.Steps))

		skip := p.DryRun && stage.State != model.StateValidating
		if stage.Message != "" && !skip {
			p.Reporter.StageStarted(stage)
		}

		for _, step := range stage.Steps {
			if skip {
				p.Reporter.StepSkipped(step)
				continue
			}
			if err := p.execute(ctx, step); err != nil {
				log.Debug("step failed", "state", stage.State.String(), "step", step.Kind.String(), "label", step.Label, "error", err)
				p.state = model.StateAborted
				return err
			}
		}

		if stage.Message != "" && !skip {
			p.Reporter.StageDone(stage)
		}
	}

	p.state = model.StateDone
	return nil
}

func (p *Pipeline) execute(ctx context.Context, step Step) error {
	switch step.Kind {
	case StepCheck:
		return step.Check(ctx)

	case StepMkdir:
		if err := os.Mkdir(step.Path, 0o755); err != nil {
			return model.WrapCLIError(model.KindFilesystemError,
				fmt.Sprintf("failed to create directory %s", step.Path), err)
		}
		return nil

	case StepChdir:
		info, err := os.Stat(step.Path)
		if err == nil && !info.IsDir() {
			err = errors.New("not a directory")
		}
		if err != nil {
			return model.WrapCLIError(model.KindFilesystemError,
				fmt.Sprintf("failed to enter directory %s", step.Path), err)
		}
		p.workDir = step.Path
		return nil

	case StepCommand:
		cmd := step.Command
		if cmd.Dir == "" {
			cmd.Dir = p.workDir
		}
		p.Reporter.CommandStarted(cmd)
		return p.Runner.Run(ctx, cmd)

	case StepRemove:
		return p.removeAll(ctx, step.Removals)

	default:
		return fmt.Errorf("unknown step kind %s", step.Kind)
	}
}

// removeAll deletes every removal concurrently and waits for all of them.
// Siblings keep running after a failure; the first error is returned.
func (p *Pipeline) removeAll(ctx context.Context, removals []Removal) error {
	log := ctxlog.FromContext(ctx)

	var g errgroup.Group
	for _, r := range removals {
		r := r
		path := filepath.Join(p.workDir, r.Path)
		g.Go(func() error {
			var err error
			if r.Recursive {
				err = os.RemoveAll(path)
			} else {
				err = os.Remove(path)
			}
			if err != nil {
				log.Debug("removal failed", "path", path, "error", err)
				return model.WrapCLIError(model.KindFilesystemError,
					fmt.Sprintf("failed to delete %s", r.Path), err)
			}
			log.Debug("removed", "path", path)
			return nil
		})
	}
	return g.Wait()
}
