package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/project-quickstart/internal/config"
	"github.com/shinji-kodama/project-quickstart/internal/ctxlog"
	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/pipeline"
	"github.com/shinji-kodama/project-quickstart/internal/precheck"
	"github.com/shinji-kodama/project-quickstart/internal/runner"
	"github.com/shinji-kodama/project-quickstart/internal/template"
	"github.com/shinji-kodama/project-quickstart/internal/ui"
	"github.com/shinji-kodama/project-quickstart/internal/vcs"
)

// session is the per-invocation state shared by both scaffolding flows.
type session struct {
	cfg       *config.Config
	git       *vcs.Manager
	validator *precheck.Validator
	cwd       string
}

func (a *app) newSession(cmd *cobra.Command) (*session, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.KindFilesystemError, "failed to get current directory", err)
	}

	cfg, err := config.Load(a.configPath, a.home, cmd.Flags())
	if err != nil {
		return nil, model.WrapCLIError(model.KindGeneral, "invalid configuration", err)
	}

	git := vcs.NewManager(cfg.Tools.Git)
	return &session{
		cfg:       cfg,
		git:       git,
		validator: precheck.New(git, cfg.AllowGitReuse, cfg.Strictness()),
		cwd:       cwd,
	}, nil
}

// runCurrentDir scaffolds into the working directory.
func (a *app) runCurrentDir(cmd *cobra.Command) error {
	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}

	target, err := s.validator.Inspect(s.cwd, s.cwd)
	if err != nil {
		return err
	}
	return a.scaffold(cmd, s, target, "")
}

// scaffold builds and runs the pipeline, then prints the next steps.
func (a *app) scaffold(cmd *cobra.Command, s *session, target model.TargetDirectory, projectName string) error {
	ctx := cmd.Context()
	log := ctxlog.FromContext(ctx)
	log.Debug("resolved target", "path", target.Path, "exists", target.Exists, "hasGit", target.HasGit)

	// Progress goes to stderr in JSON mode so stdout carries only the result.
	// Child output follows it there too.
	progress := cmd.OutOrStdout()
	r := a.runner
	if a.jsonOutput {
		progress = cmd.ErrOrStderr()
		if ex, ok := r.(*runner.Exec); ok {
			quiet := *ex
			quiet.Stdout = ex.Stderr
			r = &quiet
		}
	}
	styler := ui.NewStylerFor(progress)

	tools := template.Tools{Curl: s.cfg.Tools.Curl, Tar: s.cfg.Tools.Tar}
	installArgs := s.cfg.InstallArgs()

	plan, err := pipeline.Build(pipeline.Options{
		Target:        target,
		InvocationDir: s.cwd,
		ProjectName:   projectName,
		AllowGitReuse: s.cfg.AllowGitReuse,
		Validator:     s.validator,
		Git:           s.git,
		Tools:         tools,
		Preflight:     a.preflight(append(tools.Programs(), s.git.Binary, installArgs[0])...),
		PostExtract:   a.engineCheck(target.Path, progress, styler),
		TemplateURL:   s.cfg.TemplateURL,
		ArchiveName:   s.cfg.ArchiveName,
		RemoveDirs:    s.cfg.RemoveDirs,
		RemoveFiles:   s.cfg.RemoveFiles,
		CommitMessage: s.cfg.CommitMessage,
		InstallArgs:   installArgs,
	})
	if err != nil {
		return err
	}

	p := pipeline.New(r, newConsoleReporter(progress, styler))
	p.DryRun = a.dryRun

	if err := p.Run(ctx, plan); err != nil {
		return err
	}

	startCmd := s.cfg.StartCommand
	if !a.dryRun {
		detected, detectErr := template.StartCommand(p.WorkDir(), template.ProgramOf(s.cfg.InstallCommand), s.cfg.StartCommand)
		if detectErr != nil {
			log.Warn("could not read template manifest", "error", detectErr)
		}
		startCmd = detected
	}

	printResult(cmd.OutOrStdout(), a.jsonOutput, result{
		Directory:    target.Path,
		DisplayPath:  target.DisplayPath,
		StartCommand: startCmd,
		DryRun:       a.dryRun,
		home:         a.home,
	})
	return nil
}

// preflight returns a check that every program the pipeline needs is on
// PATH, so a missing tool is reported before anything is downloaded.
func (a *app) preflight(programs ...string) pipeline.CheckFunc {
	return func(ctx context.Context) error {
		for _, prog := range programs {
			path, err := a.lookPath(prog)
			if err != nil {
				return model.WrapCLIError(model.KindLaunchFailure,
					fmt.Sprintf("required program %q was not found", prog), err).
					WithHint(fmt.Sprintf("Install %s (or configure its path) and try again.", prog))
			}
			ctxlog.FromContext(ctx).Debug("found program", "name", prog, "path", path)
		}
		return nil
	}
}

// engineCheck warns when the extracted template declares an engines.node
// range the installed node does not satisfy. It never fails the run: npm
// reports the mismatch again during install, and a missing node is left to
// the install step.
func (a *app) engineCheck(dir string, w io.Writer, styler ui.Styler) pipeline.CheckFunc {
	return func(ctx context.Context) error {
		log := ctxlog.FromContext(ctx)

		constraint, err := template.NodeEngine(dir)
		if err != nil {
			log.Warn("could not read template manifest", "error", err)
			return nil
		}
		if constraint == "" || a.nodeVersion == nil {
			return nil
		}

		version, err := a.nodeVersion(ctx)
		if err != nil {
			log.Debug("node version unavailable", "error", err)
			return nil
		}
		ok, err := template.SatisfiesEngine(constraint, version)
		if err != nil {
			log.Debug("engine check skipped", "error", err)
			return nil
		}
		if !ok {
			fmt.Fprintln(w, styler.Render(fmt.Sprintf(
				"Warning: the template expects node %s but %s is installed.",
				constraint, strings.TrimSpace(version)), ui.StyleError))
		}
		return nil
	}
}

// consoleReporter prints pipeline progress the way a user reads it: a
// blank-line separated message per stage, the command lines as they start,
// and a tick when a stage completes.
type consoleReporter struct {
	w      io.Writer
	styler ui.Styler
}

func newConsoleReporter(w io.Writer, styler ui.Styler) *consoleReporter {
	return &consoleReporter{w: w, styler: styler}
}

func (r *consoleReporter) StageStarted(stage pipeline.Stage) {
	fmt.Fprintln(r.w, "\n\n"+r.styler.Render(stage.Message, ui.StyleProgress))
}

func (r *consoleReporter) CommandStarted(cmd runner.Command) {
	fmt.Fprintln(r.w, r.styler.Render(" > ", ui.StyleCommand)+cmd.String())
}

func (r *consoleReporter) StageDone(pipeline.Stage) {
	fmt.Fprintln(r.w, r.styler.Render("✓", ui.StyleSuccess))
}

func (r *consoleReporter) StepSkipped(step pipeline.Step) {
	fmt.Fprintln(r.w, r.styler.Render(" [dry-run] ", ui.StyleInfo)+step.Describe())
}

// result is the outcome printed after a successful run.
type result struct {
	Directory    string `json:"directory"`
	DisplayPath  string `json:"-"`
	StartCommand string `json:"startCommand"`
	DryRun       bool   `json:"dryRun,omitempty"`

	home string
}

func printResult(w io.Writer, jsonOutput bool, r result) {
	if jsonOutput {
		data, _ := json.MarshalIndent(r, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	styler := ui.NewStylerFor(w)
	if r.DryRun {
		fmt.Fprintln(w, "\n"+styler.Render("Dry run complete; nothing was changed in ", ui.StyleInfo)+
			styler.Render(ui.DisplayPath(r.Directory, r.home), ui.StylePath))
		return
	}

	prompt := styler.Render(" > ", ui.StyleCommand)
	fmt.Fprintln(w, "\n\n"+styler.Render("Now start the development server:", ui.StyleSuccess))
	if r.DisplayPath != "." && r.DisplayPath != "" {
		dir := r.DisplayPath
		if filepath.IsAbs(dir) {
			dir = ui.DisplayPath(dir, r.home)
		}
		fmt.Fprintln(w, prompt+styler.Render("cd "+dir, ui.StylePath))
	}
	fmt.Fprintln(w, prompt+styler.Render(r.StartCommand, ui.StyleCommand))
}
