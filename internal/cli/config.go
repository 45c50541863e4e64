package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/project-quickstart/internal/config"
	"github.com/shinji-kodama/project-quickstart/internal/model"
)

// newConfigCommand creates the "config" subcommand group.
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newConfigShowCommand(a))
	return cmd
}

// newConfigShowCommand prints the configuration after the config file,
// QUICKSTART_* environment variables and flags have been applied.
func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration quickstart would use, after applying the config
file (~/.quickstart.yaml by default), QUICKSTART_* environment variables
and command-line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, a.home, cmd.Flags())
			if err != nil {
				return model.WrapCLIError(model.KindGeneral, "invalid configuration", err)
			}

			var data []byte
			if a.jsonOutput {
				data, err = json.MarshalIndent(cfg, "", "  ")
			} else {
				data, err = cfg.YAML()
			}
			if err != nil {
				return model.WrapCLIError(model.KindGeneral, "failed to render configuration", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			if a.jsonOutput {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
