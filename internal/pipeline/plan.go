package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/runner"
	"github.com/shinji-kodama/project-quickstart/internal/template"
)

// Validator is the precondition checker used by the validation stage.
type Validator interface {
	CheckEmpty(ctx context.Context, target model.TargetDirectory) error
	CheckClean(ctx context.Context, target model.TargetDirectory) error
	CheckProjectName(parent, name string) (string, error)
}

// GitCommands builds the version-control commands.
type GitCommands interface {
	InitCommand(dir string) runner.Command
	AddAllCommand(dir string) runner.Command
	CommitCommand(dir, message string) runner.Command
}

// Options configures Build.
type Options struct {
	// Target is the resolved directory to scaffold into.
	Target model.TargetDirectory

	// InvocationDir is the directory quickstart was started from.
	InvocationDir string

	// ProjectName selects the project-name flow: the target is created as
	// InvocationDir/ProjectName and entered before fetching.
	ProjectName string

	// AllowGitReuse runs the git cleanliness check when the target is
	// already a checkout.
	AllowGitReuse bool

	Validator Validator
	Git       GitCommands
	Tools     template.Tools

	// Preflight, when set, runs last in validation, before any mutation.
	Preflight CheckFunc

	// PostExtract, when set, runs right after extraction.
	PostExtract CheckFunc

	TemplateURL   string
	ArchiveName   string
	RemoveDirs    []string
	RemoveFiles   []string
	CommitMessage string
	InstallArgs   []string
}

// Build assembles the scaffolding plan:
//
//	Validating     emptiness / project name, git cleanliness, preflight
//	Preparing      mkdir + chdir (project-name flow only)
//	Fetching       curl
//	Extracting     tar --strip 1, template inspection
//	CleaningUp     concurrent removal of the unwanted paths and the archive
//	VersionControl git init (if needed), git add, git commit
//	Installing     package manager install
func Build(opts Options) (Plan, error) {
	if opts.Validator == nil || opts.Git == nil {
		return Plan{}, fmt.Errorf("pipeline: validator and git are required")
	}
	if len(opts.InstallArgs) == 0 {
		return Plan{}, fmt.Errorf("pipeline: install command is empty")
	}

	plan := Plan{Target: opts.Target, WorkDir: opts.Target.Path}
	target := opts.Target
	createDir := opts.ProjectName != ""

	if createDir {
		plan.WorkDir = opts.InvocationDir
		parent, name := opts.InvocationDir, opts.ProjectName
		plan.Stages = append(plan.Stages, Stage{
			State: model.StateValidating,
			Steps: []Step{{
				Kind:  StepCheck,
				Label: "validate project name",
				Check: func(context.Context) error {
					_, err := opts.Validator.CheckProjectName(parent, name)
					return err
				},
			}},
		})
	} else {
		plan.Stages = append(plan.Stages, Stage{
			State: model.StateValidating,
			Steps: []Step{{
				Kind:  StepCheck,
				Label: "check directory is empty",
				Check: func(ctx context.Context) error {
					return opts.Validator.CheckEmpty(ctx, target)
				},
			}},
		})
		if target.HasGit && opts.AllowGitReuse {
			plan.Stages = append(plan.Stages, Stage{
				State:   model.StateValidating,
				Message: "This is already a git-managed directory; verifying working directory is clean...",
				Steps: []Step{{
					Kind:  StepCheck,
					Label: "check working tree is clean",
					Check: func(ctx context.Context) error {
						return opts.Validator.CheckClean(ctx, target)
					},
				}},
			})
		}
	}

	if opts.Preflight != nil {
		plan.Stages = append(plan.Stages, Stage{
			State: model.StateValidating,
			Steps: []Step{{Kind: StepCheck, Label: "check required tools", Check: opts.Preflight}},
		})
	}

	if createDir {
		plan.Stages = append(plan.Stages, Stage{
			State:   model.StatePreparing,
			Message: fmt.Sprintf("Creating project directory %s...", target.DisplayPath),
			Steps: []Step{
				{Kind: StepMkdir, Label: "create project directory", Path: target.Path},
				{Kind: StepChdir, Label: "enter project directory", Path: target.Path},
			},
		})
	}

	removals := make([]Removal, 0, len(opts.RemoveDirs)+len(opts.RemoveFiles)+1)
	for _, d := range opts.RemoveDirs {
		removals = append(removals, Removal{Path: d, Recursive: true})
	}
	for _, f := range opts.RemoveFiles {
		removals = append(removals, Removal{Path: f})
	}
	removals = append(removals, Removal{Path: opts.ArchiveName})

	vcsSteps := make([]Step, 0, 3)
	if !target.HasGit {
		vcsSteps = append(vcsSteps, commandStep("initialize repository", opts.Git.InitCommand("")))
	}
	vcsSteps = append(vcsSteps,
		commandStep("stage files", opts.Git.AddAllCommand("")),
		commandStep("create initial commit", opts.Git.CommitCommand("", opts.CommitMessage)),
	)

	extractSteps := []Step{commandStep("extract template", opts.Tools.ExtractCommand("", opts.ArchiveName))}
	if opts.PostExtract != nil {
		extractSteps = append(extractSteps, Step{Kind: StepCheck, Label: "inspect template", Check: opts.PostExtract})
	}

	install := runner.Command{Name: opts.InstallArgs[0], Args: opts.InstallArgs[1:]}

	plan.Stages = append(plan.Stages,
		Stage{
			State:   model.StateFetching,
			Message: "Downloading latest project template...",
			Steps:   []Step{commandStep("download template", opts.Tools.FetchCommand("", opts.TemplateURL, opts.ArchiveName))},
		},
		Stage{
			State:   model.StateExtracting,
			Message: "Unzipping...",
			Steps:   extractSteps,
		},
		Stage{
			State:   model.StateCleaningUp,
			Message: "Deleting unneeded files...",
			Steps:   []Step{{Kind: StepRemove, Label: "delete unneeded files", Removals: removals}},
		},
		Stage{
			State:   model.StateVersionControl,
			Message: "Committing initial files...",
			Steps:   vcsSteps,
		},
		Stage{
			State:   model.StateInstallingDependencies,
			Message: fmt.Sprintf("Running %s for you (this might take a while)...", strings.Join(opts.InstallArgs, " ")),
			Steps:   []Step{commandStep("install dependencies", install)},
		},
	)

	return plan, nil
}

func commandStep(label string, cmd runner.Command) Step {
	return Step{Kind: StepCommand, Label: label, Command: cmd}
}
