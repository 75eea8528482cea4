// Package release resolves the version to install and names its artifact.
//
// The Locator short-circuits on a pinned version, then tries the store's
// "latest stable" endpoint and falls back to the newest release of any kind.
// AssetName and DownloadURL render the publisher's fixed naming convention.
package release
