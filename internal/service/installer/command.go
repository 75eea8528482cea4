package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lurixo/reF1nd-releases/internal/config"
	"github.com/lurixo/reF1nd-releases/internal/fetch"
	"github.com/lurixo/reF1nd-releases/internal/install"
	"github.com/lurixo/reF1nd-releases/internal/logger"
	"github.com/lurixo/reF1nd-releases/internal/platform"
	"github.com/lurixo/reF1nd-releases/internal/release"
	"github.com/lurixo/reF1nd-releases/internal/repository/receipt"
	"github.com/lurixo/reF1nd-releases/internal/systemd"
	"github.com/lurixo/reF1nd-releases/internal/verify"
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// PinnedVersion, when non-empty, skips remote version resolution.
	PinnedVersion string
}

// runner holds the mutable state and helpers for a single install run.
// It is intentionally unexported — call Run(ctx, Options) from callers.
type runner struct {
	cfg                *config.Config    // Installer configuration.
	pinnedVersion      string            // Operator-supplied version, may be empty.
	previous           *receipt.Receipt  // Receipt of the prior install, when readable.
	temporaryDirectory string            // Where the asset is downloaded before apply.
}

// Run executes the install pipeline and is the public entry point for the
// CLI. Each stage is a hard gate up to and including the install
// transition; service registration and verification only warn.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "sing-box-installer")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	defer r.cleanup(ctx)

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Install failed", "error", err)
		return err
	}

	logger.Info(ctx, "Install completed")

	return nil
}

// newRunner loads configuration and checks privileges before any network
// or filesystem mutation happens.
func newRunner(opts *Options) (*runner, error) {
	cfg := config.Default()

	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := ensureElevated(); err != nil {
		return nil, err
	}

	return &runner{
		cfg:           cfg,
		pinnedVersion: opts.PinnedVersion,
	}, nil
}

// run executes the pipeline front to back:
// 1) Resolve the host platform.
// 2) Resolve the release version (pinned or remote).
// 3) Name the asset and download it into a temporary scope.
// 4) Install with a single-generation backup.
// 5) Record the install receipt.
// 6) Register the service unit (warn-only).
// 7) Verify the installed binary (warn-only).
func (r *runner) run(ctx context.Context) error {
	hostPlatform, err := r.resolvePlatform(ctx)
	if err != nil {
		return err
	}

	r.loadPreviousReceipt(ctx)

	version, err := release.NewLocator(r.cfg).Resolve(ctx, r.pinnedVersion)
	if err != nil {
		return err
	}

	assetPath, assetName, err := r.fetchAsset(ctx, version, hostPlatform)
	if err != nil {
		return err
	}

	target := install.Target{Dir: r.cfg.InstallDir, Name: r.cfg.BinaryName}
	if err = (install.Installer{}).Install(ctx, assetPath, target); err != nil {
		return err
	}

	r.saveReceipt(ctx, version, assetName)
	r.registerService(ctx, target.Path())
	r.adviseOnRunningProcesses(ctx)
	r.verifyInstall(ctx)

	return nil
}

// resolvePlatform maps the host to a published build target. An
// unsupported host stops the pipeline before any network access.
func (r *runner) resolvePlatform(ctx context.Context) (platform.Platform, error) {
	hostPlatform, err := platform.Detect(ctx)
	if err != nil {
		return hostPlatform, err
	}

	if !hostPlatform.Supported() {
		return hostPlatform, fmt.Errorf("%w: %s", platform.ErrUnsupported, hostPlatform)
	}

	logger.InfoKV(ctx, "Resolved host platform", "platform", hostPlatform.String())

	return hostPlatform, nil
}

// loadPreviousReceipt reads the prior install record, if any, so the run
// can report what it is replacing. Best effort.
func (r *runner) loadPreviousReceipt(ctx context.Context) {
	repo := receipt.NewFileRepository(r.receiptPath())

	prev, err := repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, receipt.ErrNotFound) {
			logger.WarnKV(ctx, "Could not read previous install receipt", "error", err)
		}

		return
	}

	r.previous = prev
	logger.InfoKV(ctx, "Previous install found",
		"version", prev.Version, "installed_at", prev.InstalledAt)
}

// fetchAsset names the artifact for this version and platform and
// downloads it into a freshly created temporary scope.
func (r *runner) fetchAsset(ctx context.Context, version string, hostPlatform platform.Platform) (string, string, error) {
	assetName := release.AssetName(r.cfg.ToolName, version, hostPlatform)
	url := release.DownloadURL(r.cfg.DownloadBaseURL, r.cfg.Owner, r.cfg.Repo, version, assetName)

	temporaryDirectory, err := os.MkdirTemp("", "sing-box-installer-")
	if err != nil {
		return "", "", fmt.Errorf("create temporary directory: %w", err)
	}

	r.temporaryDirectory = temporaryDirectory
	assetPath := filepath.Join(temporaryDirectory, assetName)

	if err = fetch.New(r.cfg.AuthToken).Fetch(ctx, url, assetPath); err != nil {
		return "", "", err
	}

	return assetPath, assetName, nil
}

// saveReceipt records the completed install. Failure to persist it is a
// warning: the binary is already in place.
func (r *runner) saveReceipt(ctx context.Context, version, assetName string) {
	rec := &receipt.Receipt{
		Version:     version,
		Asset:       assetName,
		InstalledAt: time.Now().UTC(),
	}

	if r.previous != nil {
		rec.PreviousVersion = r.previous.Version
	}

	repo := receipt.NewFileRepository(r.receiptPath())
	if err := repo.Save(ctx, rec); err != nil {
		logger.WarnKV(ctx, "Could not write install receipt", "error", err)
	}
}

// registerService writes the service unit. Registration problems never
// fail the run: a correctly placed binary is the primary deliverable.
func (r *runner) registerService(ctx context.Context, binaryPath string) {
	status, err := systemd.NewRegistrar(r.cfg).Register(ctx, binaryPath)
	if err != nil {
		logger.WarnKV(ctx, "Service registration failed", "error", err)
		return
	}

	logger.InfoKV(ctx, "Service registration finished", "status", string(status))
}

// verifyInstall checks PATH visibility and the self-reported version.
func (r *runner) verifyInstall(ctx context.Context) {
	version, err := verify.New(r.cfg.BinaryName).Verify(ctx)
	if err != nil {
		if errors.Is(err, verify.ErrNotFound) {
			logger.WarnKV(ctx, "Installed binary is not on PATH, add the install directory to PATH",
				"dir", r.cfg.InstallDir)
		} else {
			logger.WarnKV(ctx, "Could not verify installed binary", "error", err)
		}

		return
	}

	logger.InfoKV(ctx, "Verified installed binary", "version", version)
}

// receiptPath is where the install record lives, inside the service state
// directory.
func (r *runner) receiptPath() string {
	return filepath.Join(r.cfg.StateDir, "installer-state.json")
}

// cleanup releases the temporary download scope. It runs via defer on
// every exit path; the signal-aware context in the CLI cancels in-flight
// transfers first, so abnormal termination reaches this too.
func (r *runner) cleanup(ctx context.Context) {
	if r.temporaryDirectory == "" {
		return
	}

	if _, err := os.Stat(r.temporaryDirectory); err == nil {
		if err = os.RemoveAll(r.temporaryDirectory); err != nil {
			logger.WarnKV(ctx, "Could not remove temporary directory",
				"dir", r.temporaryDirectory, "error", err)

			return
		}
	}

	logger.Debug(ctx, "Temporary download scope released")
}
