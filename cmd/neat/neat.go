// Package neatcmder
package neatcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/neat/cmd/neat/chat"
	configcmder "github.com/papercomputeco/neat/cmd/neat/config"
	versioncmder "github.com/papercomputeco/neat/cmd/version"
	"github.com/papercomputeco/neat/pkg/cliui"
)

const neatLongDesc string = `Neat is a terminal client for a local agent server.

It sends your messages to the server and shows the agent's thoughts, tool
calls, images and answers while they stream in.

Get started with:
  neat chat                     Chat with the agent at http://localhost:8000
  neat config set <key> <val>   Persist a default
  neat version                  Show build information`

const neatShortDesc string = "Neat - streaming agent chat client"

func NewNeatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neat",
		Short: neatShortDesc,
		Long:  neatLongDesc,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				cliui.DisableColor()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .neat/ config directory")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
