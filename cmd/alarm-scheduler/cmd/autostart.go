package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oshokin/activity-alarms/internal/platform"
)

// errUnknownAction is returned for an autostart action other than enable, disable or status.
var errUnknownAction = errors.New("unknown autostart action")

// attachAutostartCommand adds the `autostart` subcommand.
func attachAutostartCommand(root *cobra.Command) {
	autostartCmd := &cobra.Command{
		Use:       "autostart <enable|disable|status>",
		Short:     "Manage starting the daemon at login.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"enable", "disable", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			switch args[0] {
			case "status":
				_, err := fmt.Fprintf(out, "autostart enabled: %t\n", platform.AutostartEnabled())

				return err
			case "enable", "disable":
			default:
				return fmt.Errorf("%w: %q", errUnknownAction, args[0])
			}

			enable := args[0] == "enable"

			daemonArgs, err := autostartArgs()
			if err != nil {
				return err
			}

			changed, err := platform.SetAutostart(cmd.Context(), enable, daemonArgs...)
			if err != nil {
				return err
			}

			if !changed {
				_, err = fmt.Fprintf(out, "autostart already %sd\n", args[0])

				return err
			}

			_, err = fmt.Fprintf(out, "autostart %sd\n", args[0])

			return err
		},
	}

	root.AddCommand(autostartCmd)
}

// autostartArgs carries the current flags into the login entry with absolute
// paths, since the session starts the daemon from another directory.
func autostartArgs() ([]string, error) {
	var args []string

	for _, flag := range []struct{ name, value string }{
		{"--config", configPath},
		{"--state-file", stateFile},
	} {
		if flag.value == "" {
			continue
		}

		path, err := filepath.Abs(flag.value)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", flag.name, err)
		}

		args = append(args, flag.name, path)
	}

	return args, nil
}
