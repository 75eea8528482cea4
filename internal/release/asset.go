package release

import (
	"fmt"

	"github.com/lurixo/reF1nd-releases/internal/platform"
)

// AssetName constructs the published artifact filename for a tool, version
// and platform: {tool}-{version}-{os}-{arch}{suffix}. The rendering must be
// byte-exact to the publisher's convention; a name the store does not know
// is an asset-not-found condition, never a naming bug.
func AssetName(tool, version string, p platform.Platform) string {
	return fmt.Sprintf("%s-%s-%s-%s%s", tool, version, p.OS, p.Arch, p.ExecutableSuffix())
}

// DownloadURL renders the store's asset download location:
// {base}/{owner}/{repo}/releases/download/v{version}/{assetName}.
func DownloadURL(base, owner, repo, version, assetName string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/v%s/%s", base, owner, repo, version, assetName)
}
