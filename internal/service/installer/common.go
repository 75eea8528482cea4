package installer

import (
	"context"
	"errors"
	"os"
	"runtime"

	"github.com/mitchellh/go-ps"

	"github.com/lurixo/reF1nd-releases/internal/logger"
)

// ErrElevationRequired is returned when the installer is started without
// the privileges needed to write the install and unit directories.
var ErrElevationRequired = errors.New("installer must run with elevated privileges")

// ensureElevated gates the pipeline before any network or filesystem
// mutation. Windows has no effective UID; there the install directory
// permissions surface the same failure later.
func ensureElevated() error {
	if runtime.GOOS == "windows" {
		return nil
	}

	if os.Geteuid() != 0 {
		return ErrElevationRequired
	}

	return nil
}

// adviseOnRunningProcesses warns when the replaced binary is still
// executing: a running service keeps the old image mapped until restarted.
func (r *runner) adviseOnRunningProcesses(ctx context.Context) {
	running, err := countProcessesByName(r.cfg.BinaryName)
	if err != nil {
		logger.DebugKV(ctx, "Could not inspect running processes", "error", err)
		return
	}

	if running > 0 {
		logger.WarnKV(ctx, "Binary is currently running and still executes the previous version, restart the service",
			"name", r.cfg.BinaryName, "processes", running)
	}
}

// countProcessesByName counts processes whose executable matches name,
// excluding this process.
func countProcessesByName(name string) (int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return 0, err
	}

	var (
		count         int
		thisProcessID = os.Getpid()
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == name {
			count++
		}
	}

	return count, nil
}
