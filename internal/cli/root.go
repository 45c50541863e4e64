// Package cli implements the cobra-based CLI commands for quickstart.
//
// The root command scaffolds into the current directory. The "new"
// subcommand asks for a project name and scaffolds into a new directory,
// and "config" prints the effective configuration. This file defines the
// root command, the global flags and the top-level error handling.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/project-quickstart/internal/ctxlog"
	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/runner"
	"github.com/shinji-kodama/project-quickstart/internal/ui"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// app carries the collaborators and global flag values shared by every
// command. Tests swap the collaborators for fakes.
type app struct {
	runner   runner.Runner
	prompter ui.Prompter
	lookPath func(file string) (string, error)
	getwd    func() (string, error)
	home     string

	// nodeVersion reports the installed node version ("v20.11.1").
	nodeVersion func(ctx context.Context) (string, error)

	jsonOutput bool
	verbose    bool
	dryRun     bool
	configPath string
}

func defaultApp() *app {
	home, _ := os.UserHomeDir()
	return &app{
		runner:   runner.New(),
		prompter: ui.NewSurveyPrompter(),
		lookPath: exec.LookPath,
		getwd:    os.Getwd,
		home:     home,

		nodeVersion: func(ctx context.Context) (string, error) {
			out, err := exec.CommandContext(ctx, "node", "--version").Output()
			return string(out), err
		},
	}
}

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself scaffolds into the working directory. The "new"
// subcommand scaffolds into a fresh directory and "config" inspects the
// effective configuration.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultApp())
}

// newRootCommand builds the command tree around a, so tests can swap the
// runner, prompter and filesystem lookups.
func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "quickstart",
		Short: "Scaffold a project from the starter kit template",
		Long: `quickstart downloads the project starter kit into the current directory,
removes the files that are not meant to ship with a new project, creates an
initial git commit and installs dependencies.

The directory must be empty, or a git checkout with no uncommitted changes.
Use "quickstart new" to scaffold into a new directory instead.`,
		// The root command scaffolds into the working directory, so a stray
		// positional argument is almost certainly a mistyped subcommand.
		Args: cobra.NoArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		// A failed download is not a usage problem, and the usage text would
		// bury the actual message.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Execute formats them (text or JSON based on --json).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// PersistentPreRunE runs before every subcommand. Flags are parsed
		// by then, so the logger can honour --verbose. It goes on the
		// context so every package logs through the same handler.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// Logs go to stderr so stdout stays reserved for results.
			logger := ctxlog.New(cmd.ErrOrStderr(), a.verbose)
			cmd.SetContext(ctxlog.WithLogger(ctx, logger))
			return nil
		},

		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCurrentDir(cmd)
		},
	}

	// PersistentFlags are inherited by all subcommands, so "new" and
	// "config" accept the same global flags without re-declaring them.
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&a.jsonOutput, "json", false, "Output the result in JSON format")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Validate and print the plan without changing anything")
	flags.StringVar(&a.configPath, "config", "", "Config file (default: ~/.quickstart.yaml if present)")

	// These flags are not bound to app fields. config.Load reads them
	// through viper, which layers them over the config file and the
	// QUICKSTART_* environment.
	flags.String("template-url", "", "URL of the template zip archive")
	flags.String("commit-message", "", "Message of the initial commit")
	flags.String("install-command", "", "Dependency install command (e.g. \"npm install\")")
	flags.String("git-strictness", "", "Cleanliness check for existing checkouts: tracked, staged or all")

	// Register subcommands. Each is defined in its own file and shares a.
	rootCmd.AddCommand(newNewCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// Execute runs the root command and exits the process with the status
// derived from its error.
func Execute(rootCmd *cobra.Command) {
	os.Exit(execute(context.Background(), rootCmd))
}

func execute(ctx context.Context, rootCmd *cobra.Command) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return int(model.ExitSuccess)
	}

	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("json")
	w := rootCmd.ErrOrStderr()
	printError(w, ui.NewStylerFor(w), jsonOutput, err)
	return int(exitCodeFor(err))
}

// exitCodeFor maps an error to the process exit status.
func exitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitFailure
}

// printError outputs an error in the appropriate format (JSON or text).
// A declined confirmation is not an error and is printed without prefix.
func printError(w io.Writer, styler ui.Styler, jsonOutput bool, err error) {
	var cliErr *model.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = model.WrapCLIError(model.KindGeneral, "unexpected error", err)
	}

	if jsonOutput {
		errObj := map[string]interface{}{
			"kind":    string(cliErr.Kind),
			"message": cliErr.Message,
		}
		if cliErr.Hint != "" {
			errObj["hint"] = cliErr.Hint
		}
		if cliErr.Err != nil {
			errObj["detail"] = cliErr.Err.Error()
		}
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			errObj["exitCode"] = exitErr.Code
			if exitErr.Signal != "" {
				errObj["signal"] = exitErr.Signal
			}
		}
		data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if cliErr.Kind == model.KindUserDeclined {
		fmt.Fprintln(w, cliErr.Message)
		return
	}

	message := cliErr.Error()
	if cliErr.Kind == model.KindGeneral {
		message = "Error: " + err.Error()
	}
	fmt.Fprintln(w, "\n"+styler.Render(message, ui.StyleError))
	if cliErr.Hint != "" {
		fmt.Fprintln(w, "\n"+cliErr.Hint)
	}
}
