package systemd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lurixo/reF1nd-releases/internal/config"
)

// recordingReloader counts reload requests and optionally fails them.
type recordingReloader struct {
	calls int
	err   error
}

func (r *recordingReloader) Reload(context.Context) error {
	r.calls++

	return r.err
}

func testRegistrar(t *testing.T) (*Registrar, *recordingReloader, *config.Config) {
	t.Helper()

	root := t.TempDir()

	cfg := config.Default()
	cfg.UnitPath = filepath.Join(root, "system", "sing-box.service")
	cfg.StateDir = filepath.Join(root, "var-lib")
	cfg.ConfigDir = filepath.Join(root, "etc")

	reloader := &recordingReloader{}

	return NewRegistrar(cfg).WithReloader(reloader), reloader, cfg
}

// TestRegisterCreatesUnit writes the unit with the binary path substituted
// and creates the runtime directories.
func TestRegisterCreatesUnit(t *testing.T) {
	t.Parallel()

	registrar, reloader, cfg := testRegistrar(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UnitPath), 0o755))

	status, err := registrar.Register(context.Background(), "/usr/local/bin/sing-box")
	require.NoError(t, err)
	require.Equal(t, StatusCreated, status)

	unit, err := os.ReadFile(cfg.UnitPath)
	require.NoError(t, err)
	require.Contains(t, string(unit), "ExecStart=/usr/local/bin/sing-box run")

	for _, dir := range []string{cfg.StateDir, cfg.ConfigDir} {
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		require.True(t, info.IsDir())
	}

	require.Equal(t, 1, reloader.calls)
}

// TestRegisterIsIdempotent ensures a second call leaves the first unit
// content unchanged.
func TestRegisterIsIdempotent(t *testing.T) {
	t.Parallel()

	registrar, _, cfg := testRegistrar(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UnitPath), 0o755))

	status, err := registrar.Register(context.Background(), "/usr/local/bin/sing-box")
	require.NoError(t, err)
	require.Equal(t, StatusCreated, status)

	first, err := os.ReadFile(cfg.UnitPath)
	require.NoError(t, err)

	status, err = registrar.Register(context.Background(), "/opt/other/sing-box")
	require.NoError(t, err)
	require.Equal(t, StatusSkippedExists, status)

	second, err := os.ReadFile(cfg.UnitPath)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestRegisterSkipsWithoutSystemd ensures a host without the unit
// directory is skipped without error.
func TestRegisterSkipsWithoutSystemd(t *testing.T) {
	t.Parallel()

	registrar, reloader, cfg := testRegistrar(t)

	status, err := registrar.Register(context.Background(), "/usr/local/bin/sing-box")
	require.NoError(t, err)
	require.Equal(t, StatusSkippedNoSystemd, status)
	require.Zero(t, reloader.calls)

	_, err = os.Stat(cfg.UnitPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRegisterSurvivesReloadFailure ensures a failing daemon reload does
// not fail registration.
func TestRegisterSurvivesReloadFailure(t *testing.T) {
	t.Parallel()

	registrar, reloader, cfg := testRegistrar(t)
	reloader.err = os.ErrPermission

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UnitPath), 0o755))

	status, err := registrar.Register(context.Background(), "/usr/local/bin/sing-box")
	require.NoError(t, err)
	require.Equal(t, StatusCreated, status)
	require.Equal(t, 1, reloader.calls)
}
