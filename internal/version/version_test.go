package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionCommand prints the binary name and build metadata.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "alarm-engine"}
	AttachCobraVersionCommand(root)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	require.Equal(t, Full("alarm-engine")+"\n", out.String())
	require.Contains(t, out.String(), "alarm-engine "+Short())
	require.Contains(t, out.String(), runtime.Version())
}
