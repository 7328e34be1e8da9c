// Package configcmder provides the config command for managing persistent
// neat configuration stored in the .neat/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/neat/pkg/cliui"
	"github.com/papercomputeco/neat/pkg/config"
)

const configLongDesc string = `Manage persistent neat configuration.

Configuration is stored as config.toml in the .neat/ directory and provides
default values for command flags. CLI flags and NEAT_* environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.endpoint, client.timeout,
  chat.mode, chat.image_dir, chat.plain,
  log.json, log.file

Use subcommands to get, set, or list configuration values:
  neat config set <key> <value>    Set a configuration value
  neat config get <key>            Get a configuration value
  neat config list                 List all configuration values

Examples:
  neat config set client.endpoint http://localhost:8000
  neat config set chat.mode line
  neat config get client.timeout
  neat config list`

const configShortDesc string = "Manage persistent neat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}
