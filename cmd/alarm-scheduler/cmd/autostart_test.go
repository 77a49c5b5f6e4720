package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestAutostartCommand_RejectsUnknownAction checks the action is validated
// before the login entry is touched.
func TestAutostartCommand_RejectsUnknownAction(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "alarm-scheduler"}
	attachAutostartCommand(root)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"autostart", "toggle"})

	err := root.Execute()
	require.ErrorIs(t, err, errUnknownAction)
}
