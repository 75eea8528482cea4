package verify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the binary is not resolvable on the
	// execution search path. Installation and PATH visibility are
	// independent concerns, so callers treat this as a warning.
	ErrNotFound = errors.New("binary not found on PATH")

	// errInvalidVersionOutput is returned when the binary's version output
	// cannot be parsed.
	errInvalidVersionOutput = errors.New("invalid version output format")
)

// versionCommandTimeout bounds the version probe so a broken binary cannot
// hang the pipeline.
const versionCommandTimeout = 10 * time.Second

// Verifier checks that the installed binary is reachable and self-reports
// a version.
type Verifier struct {
	binaryName string
}

// New builds a verifier for the named binary.
func New(binaryName string) *Verifier {
	return &Verifier{binaryName: binaryName}
}

// Verify resolves the binary on PATH and returns its self-reported version.
func (v *Verifier) Verify(ctx context.Context) (string, error) {
	path, err := exec.LookPath(v.binaryName)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, v.binaryName)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, versionCommandTimeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, path, "version").Output()
	if err != nil {
		return "", fmt.Errorf("run %s version: %w", path, err)
	}

	return parseVersionOutput(string(output))
}

// parseVersionOutput extracts the version identifier from output such as
// "sing-box version 1.13.0". When no "version" token is present the first
// non-empty line is returned as-is.
func parseVersionOutput(output string) (string, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")

	line = strings.TrimSpace(line)
	if line == "" {
		return "", errInvalidVersionOutput
	}

	fields := strings.Fields(line)
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1], nil
		}
	}

	return line, nil
}
