package installer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lurixo/reF1nd-releases/internal/config"
)

// TestCountProcessesByName ensures a name that cannot exist yields zero.
func TestCountProcessesByName(t *testing.T) {
	t.Parallel()

	count, err := countProcessesByName("no-such-process-name-here")
	require.NoError(t, err)
	require.Zero(t, count)
}

// TestReceiptPath places the install record inside the state directory.
func TestReceiptPath(t *testing.T) {
	t.Parallel()

	r := &runner{cfg: config.Default()}
	require.Equal(t,
		filepath.Join(config.DefaultStateDir, "installer-state.json"),
		r.receiptPath())
}
