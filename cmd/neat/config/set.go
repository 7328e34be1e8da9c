package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/neat/pkg/cliui"
	"github.com/papercomputeco/neat/pkg/config"
	"github.com/papercomputeco/neat/pkg/dotdir"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .neat/ directory. When no .neat/ directory exists yet,
~/.neat/ is created. Keys use dotted notation matching the TOML
section structure.

Valid keys:
  client.endpoint, client.timeout,
  chat.mode, chat.image_dir, chat.plain,
  log.json, log.file

Examples:
  neat config set client.endpoint http://localhost:8000
  neat config set client.timeout 2m
  neat config set chat.plain true`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runSet(w io.Writer, key, value, configDir string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfger.GetTarget() == "" {
		home, err := dotdir.NewManager().Home()
		if err != nil {
			return err
		}
		cfger, err = config.NewConfiger(home)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	printTarget(w, cfger.GetTarget())

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	value, err = cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
