package systemd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/lurixo/reF1nd-releases/internal/config"
	"github.com/lurixo/reF1nd-releases/internal/logger"
)

// Status describes the outcome of a registration attempt.
type Status string

const (
	// StatusCreated means the unit file was written.
	StatusCreated Status = "created"
	// StatusSkippedNoSystemd means the host has no systemd unit directory.
	StatusSkippedNoSystemd Status = "skipped: host has no systemd"
	// StatusSkippedExists means a unit already exists and was left untouched.
	StatusSkippedExists Status = "skipped: unit already exists"
)

// unitFilePermissions matches systemd's expectation for unit files.
const unitFilePermissions = 0o644

// Reloader asks the init system to re-read its unit definitions.
type Reloader interface {
	Reload(ctx context.Context) error
}

// dbusReloader performs the reload over the system D-Bus.
type dbusReloader struct{}

func (dbusReloader) Reload(ctx context.Context) error {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return fmt.Errorf("connect to systemd: %w", err)
	}

	defer conn.Close()

	if err := conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("daemon reload: %w", err)
	}

	return nil
}

// Registrar writes the service unit for the installed binary and prepares
// its runtime directories. Registration is idempotent: an existing unit,
// customized or not, is never clobbered.
type Registrar struct {
	unitPath  string
	stateDir  string
	configDir string
	reloader  Reloader
}

// NewRegistrar builds a registrar from installer configuration.
func NewRegistrar(cfg *config.Config) *Registrar {
	return &Registrar{
		unitPath:  cfg.UnitPath,
		stateDir:  cfg.StateDir,
		configDir: cfg.ConfigDir,
		reloader:  dbusReloader{},
	}
}

// WithReloader replaces the init-system reloader; tests use it to avoid the
// system bus.
func (r *Registrar) WithReloader(reloader Reloader) *Registrar {
	r.reloader = reloader

	return r
}

// Register materializes the unit template with binaryPath substituted,
// creates the state and config directories, and reloads unit definitions.
// A reload failure is logged, not fatal: the unit file is still picked up
// by a later manual reload or reboot.
func (r *Registrar) Register(ctx context.Context, binaryPath string) (Status, error) {
	unitDir := filepath.Dir(r.unitPath)
	if _, err := os.Stat(unitDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "No systemd unit directory, skipping service registration",
				"dir", unitDir)

			return StatusSkippedNoSystemd, nil
		}

		return "", fmt.Errorf("inspect unit directory: %w", err)
	}

	if _, err := os.Stat(r.unitPath); err == nil {
		logger.InfoKV(ctx, "Service unit already exists, leaving it untouched",
			"path", r.unitPath)

		return StatusSkippedExists, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("inspect unit file: %w", err)
	}

	unit := fmt.Sprintf(unitTemplate, binaryPath)
	if err := os.WriteFile(r.unitPath, []byte(unit), unitFilePermissions); err != nil {
		return "", fmt.Errorf("write unit file: %w", err)
	}

	for _, dir := range []string{r.stateDir, r.configDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	logger.InfoKV(ctx, "Service unit created", "path", r.unitPath)

	if err := r.reloader.Reload(ctx); err != nil {
		logger.WarnKV(ctx, "Unit definitions not reloaded, reload manually or reboot",
			"error", err)
	}

	return StatusCreated, nil
}
