package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing repository coordinates.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Missing tool name.
	cfg = &Config{
		Owner: "lurixo",
		Repo:  "reF1nd-releases",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Bad store URL.
	cfg = &Config{
		Owner:      "lurixo",
		Repo:       "reF1nd-releases",
		ToolName:   "sing-box",
		InstallDir: "/usr/local/bin",
		APIBaseURL: "not a url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay; binary name defaults to the tool name.
	cfg = &Config{
		Owner:      "lurixo",
		Repo:       "reF1nd-releases",
		ToolName:   "sing-box",
		InstallDir: "/usr/local/bin",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, "sing-box", cfg.BinaryName)
	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "installer.yaml")

	cfg := Default()
	cfg.InstallDir = "/opt/sing-box/bin"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Owner, loaded.Owner)
	require.Equal(t, cfg.InstallDir, loaded.InstallDir)
	require.Equal(t, filepath.Join("/opt/sing-box/bin", "sing-box"), loaded.BinaryPath())

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestDefault ensures defaults target the published release repository.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, "lurixo", cfg.Owner)
	require.Equal(t, filepath.Join(DefaultInstallDir, DefaultToolName), cfg.BinaryPath())
}
