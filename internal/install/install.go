package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/lurixo/reF1nd-releases/internal/logger"
)

const (
	// BackupSuffix is appended to the binary path to form the backup path.
	BackupSuffix = ".bak"

	// executableMode is applied to the installed binary.
	executableMode os.FileMode = 0o755
)

// ErrReplaceFailed is returned when the install transition cannot complete.
var ErrReplaceFailed = errors.New("install transition failed")

// Target describes where the binary is installed. Exactly one backup
// generation lives next to it: a second install overwrites the first backup.
type Target struct {
	// Dir is the installation directory.
	Dir string
	// Name is the binary filename inside Dir.
	Name string
}

// Path returns the full binary path.
func (t Target) Path() string {
	return filepath.Join(t.Dir, t.Name)
}

// BackupPath returns the path holding the previous binary generation.
func (t Target) BackupPath() string {
	return t.Path() + BackupSuffix
}

// Installer performs the backup-then-replace install transition.
type Installer struct{}

// Install moves sourcePath into the target location. Steps, each a
// precondition for the next:
//
//  1. a pre-existing binary is renamed to the backup path, overwriting any
//     prior backup;
//  2. the new binary replaces it with the executable mode set.
//
// A failure between the two leaves a valid backup and no binary at the
// target — a degraded state operators recover from by renaming the backup
// back by hand; no automatic rollback is attempted.
func (Installer) Install(ctx context.Context, sourcePath string, target Target) error {
	path := target.Path()

	if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create install directory: %w", ErrReplaceFailed, err)
	}

	if err := backupExisting(ctx, target); err != nil {
		return err
	}

	if err := applyBinary(sourcePath, path); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installed binary", "path", path)

	return nil
}

// backupExisting renames the current binary, if any, to the backup path.
// Only the last generation is kept.
func backupExisting(ctx context.Context, target Target) error {
	path := target.Path()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("%w: inspect %s: %w", ErrReplaceFailed, path, err)
	}

	backupPath := target.BackupPath()

	// Rename onto an existing file fails on some platforms; drop the old
	// backup first.
	if _, err := os.Stat(backupPath); err == nil {
		if err := os.Remove(backupPath); err != nil {
			return fmt.Errorf("%w: drop previous backup: %w", ErrReplaceFailed, err)
		}
	}

	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("%w: back up %s: %w", ErrReplaceFailed, path, err)
	}

	logger.InfoKV(ctx, "Backed up previous binary", "path", backupPath)

	return nil
}

// applyBinary writes the new binary at path with the executable mode set.
func applyBinary(sourcePath, path string) error {
	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return fmt.Errorf("%w: open downloaded binary: %w", ErrReplaceFailed, err)
	}

	defer func() {
		_ = source.Close()
	}()

	// go-update replaces an existing target; after the backup rename there
	// is none, so seed an empty file for it to swap out.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		seed, createErr := os.Create(filepath.Clean(path))
		if createErr != nil {
			return fmt.Errorf("%w: seed target: %w", ErrReplaceFailed, createErr)
		}

		if closeErr := seed.Close(); closeErr != nil {
			return fmt.Errorf("%w: seed target: %w", ErrReplaceFailed, closeErr)
		}
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: executableMode,
	}

	if err := goupdate.Apply(source, options); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrReplaceFailed, path, err)
	}

	// The swapped-out seed may linger next to the target; it is not the
	// backup, drop it.
	oldPath := path + ".old"
	if _, err := os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}
