package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/project-quickstart/internal/model"
	"github.com/shinji-kodama/project-quickstart/internal/ui"
)

// newNewCommand creates the "new" subcommand, which scaffolds into a new
// directory named after the project.
//
// Usage:
//
//	quickstart new [name] [flags]
//
// Without a name the user is prompted for one. Unless --yes is given, the
// user confirms the resolved directory before anything is created. With
// --json nothing is prompted, so both the name and --yes are required.
func newNewCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Scaffold the starter kit into a new project directory",
		Long: `Create a new directory for the project, then download the starter kit into
it, commit the initial files and install dependencies.

The name must start with a letter or digit and may contain letters, digits,
'.', '_' and '-'. The directory must not exist yet.`,
		Example: `  # Ask for the project name interactively
  quickstart new

  # Create ./my-app without confirmation
  quickstart new my-app --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return a.runNew(cmd, name, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func (a *app) runNew(cmd *cobra.Command, name string, yes bool) error {
	ctx := cmd.Context()

	// JSON mode is for scripts, so it never prompts: the name and the
	// confirmation must both come from the command line.
	if a.jsonOutput && (name == "" || !yes) {
		return model.NewCLIError(model.KindGeneral, "--json requires a project name and --yes").
			WithHint("Run: quickstart new <name> --yes --json")
	}

	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}

	if name == "" {
		name, err = a.prompter.Ask(ctx, "name", "Project name:", func(answer string) error {
			_, checkErr := s.validator.CheckProjectName(s.cwd, answer)
			return checkErr
		})
		if err != nil {
			return promptError(err)
		}
	}

	path, err := s.validator.CheckProjectName(s.cwd, name)
	if err != nil {
		return err
	}

	if !yes {
		ok, err := a.prompter.Confirm(ctx,
			fmt.Sprintf("Create a new project in %s?", ui.DisplayPath(path, a.home)), true)
		if err != nil {
			return promptError(err)
		}
		if !ok {
			return model.NewCLIError(model.KindUserDeclined, "Aborted; nothing was created.")
		}
	}

	target, err := s.validator.Inspect(s.cwd, path)
	if err != nil {
		return err
	}
	return a.scaffold(cmd, s, target, name)
}

// promptError maps an interrupted prompt to a declined run so Ctrl-C at a
// question exits quietly.
func promptError(err error) error {
	if errors.Is(err, ui.ErrPromptInterrupted) {
		return model.WrapCLIError(model.KindUserDeclined, "Aborted; nothing was created.", err)
	}
	return model.WrapCLIError(model.KindGeneral, "failed to read answer", err)
}
