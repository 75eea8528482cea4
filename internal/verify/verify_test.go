package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseVersionOutput covers the publisher's output format and fallbacks.
func TestParseVersionOutput(t *testing.T) {
	t.Parallel()

	version, err := parseVersionOutput("sing-box version 1.13.0\n\nEnvironment: go1.25 linux/amd64\n")
	require.NoError(t, err)
	require.Equal(t, "1.13.0", version)

	version, err = parseVersionOutput("1.13.0\n")
	require.NoError(t, err)
	require.Equal(t, "1.13.0", version)

	_, err = parseVersionOutput("   \n")
	require.Error(t, err)
}

// TestVerifyMissingBinary reports ErrNotFound for a name that cannot be on
// the search path.
func TestVerifyMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := New("definitely-not-installed-binary-name").Verify(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}
