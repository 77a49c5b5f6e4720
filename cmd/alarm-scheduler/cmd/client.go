package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/activity-alarms/internal/service/client"
)

// serverAddress overrides the daemon address for client subcommands.
var serverAddress string

// attachClientCommands adds the `list` and `cancel` subcommands.
func attachClientCommands(root *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List alarms held by the running daemon.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.List(cmd.Context(), clientOptions(cmd))
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel <activity-id>",
		Short: "Cancel an alarm held by the running daemon.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Cancel(cmd.Context(), clientOptions(cmd), args[0])
		},
	}

	for _, sub := range []*cobra.Command{listCmd, cancelCmd} {
		sub.Flags().StringVarP(&serverAddress, "address", "a", "", "daemon address, overrides config")
		root.AddCommand(sub)
	}
}

func clientOptions(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
		Output:        cmd.OutOrStdout(),
	}
}
