package release

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lurixo/reF1nd-releases/internal/platform"
)

// TestAssetName verifies byte-exact rendering of the publisher's convention.
func TestAssetName(t *testing.T) {
	t.Parallel()

	linux := platform.Platform{OS: platform.OSLinux, Arch: platform.ArchAMD64v3}
	require.Equal(t, "sing-box-1.13.0-linux-amd64v3", AssetName("sing-box", "1.13.0", linux))

	darwin := platform.Platform{OS: platform.OSDarwin, Arch: platform.ArchARM64}
	require.Equal(t, "sing-box-1.13.0-darwin-arm64", AssetName("sing-box", "1.13.0", darwin))

	windows := platform.Platform{OS: platform.OSWindows, Arch: platform.ArchAMD64v3}
	require.Equal(t, "sing-box-1.13.0-windows-amd64v3.exe", AssetName("sing-box", "1.13.0", windows))
}

// TestDownloadURL verifies the versioned download location.
func TestDownloadURL(t *testing.T) {
	t.Parallel()

	url := DownloadURL("https://github.com", "lurixo", "reF1nd-releases", "1.13.0", "sing-box-1.13.0-linux-amd64v3")
	require.Equal(t,
		"https://github.com/lurixo/reF1nd-releases/releases/download/v1.13.0/sing-box-1.13.0-linux-amd64v3",
		url)
}
