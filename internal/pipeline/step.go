package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/runner"
)

// StepKind enumerates the operations a step can perform.
type StepKind int

const (
	// StepCheck runs a precondition that must not mutate anything.
	StepCheck StepKind = iota
	// StepMkdir creates a directory.
	StepMkdir
	// StepChdir switches the working directory used by later steps.
	StepChdir
	// StepCommand runs an external program.
	StepCommand
	// StepRemove deletes a batch of paths concurrently.
	StepRemove
)

func (k StepKind) String() string {
	switch k {
	case StepCheck:
		return "check"
	case StepMkdir:
		return "mkdir"
	case StepChdir:
		return "chdir"
	case StepCommand:
		return "command"
	case StepRemove:
		return "remove"
	default:
		return fmt.Sprintf("step(%d)", int(k))
	}
}

// Removal is one path deleted by a StepRemove.
type Removal struct {
	// Path is relative to the working directory.
	Path string
	// Recursive removes a directory tree and tolerates a missing path.
	// Non-recursive removal unlinks a single file and fails if it is missing.
	Recursive bool
}

// CheckFunc is the body of a StepCheck.
type CheckFunc func(ctx context.Context) error

// Step is one unit of work. Only the fields relevant to Kind are set.
type Step struct {
	Kind StepKind

	// Label describes the step in dry-run output and logs.
	Label string

	// Check is set for StepCheck.
	Check CheckFunc

	// Path is set for StepMkdir and StepChdir.
	Path string

	// Command is set for StepCommand. An empty Command.Dir means the
	// pipeline's current working directory.
	Command runner.Command

	// Removals is set for StepRemove.
	Removals []Removal
}

// Describe renders the step for dry-run output.
func (s Step) Describe() string {
	switch s.Kind {
	case StepCommand:
		return s.Command.String()
	case StepMkdir:
		return "mkdir " + s.Path
	case StepChdir:
		return "cd " + s.Path
	case StepRemove:
		paths := make([]string, len(s.Removals))
		for i, r := range s.Removals {
			paths[i] = r.Path
		}
		return "rm " + strings.Join(paths, " ")
	default:
		return s.Label
	}
}

// Stage groups the steps executed for one state of the run.
type Stage struct {
	State model.State

	// Message is printed before the stage runs. Empty stages run silently,
	// and without a completion tick.
	Message string

	Steps []Step
}

// Plan is the full ordered list of stages of a run.
type Plan struct {
	Target model.TargetDirectory

	// WorkDir is the initial working directory of the run.
	WorkDir string

	Stages []Stage
}

// Commands returns every external command in the plan, in order.
func (p Plan) Commands() []runner.Command {
	var out []runner.Command
	for _, st := range p.Stages {
		for _, s := range st.Steps {
			if s.Kind == StepCommand {
				out = append(out, s.Command)
			}
		}
	}
	return out
}

// States returns the state of each stage, in order.
func (p Plan) States() []model.State {
	out := make([]model.State, len(p.Stages))
	for i, st := range p.Stages {
		out[i] = st.State
	}
	return out
}
