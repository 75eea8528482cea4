package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// OS is the normalized operating system identifier used in asset names.
type OS string

// Arch is the normalized CPU architecture identifier used in asset names.
type Arch string

// Supported OS values. OSUnknown marks a host the publisher has no builds for.
const (
	OSLinux   OS = "linux"
	OSDarwin  OS = "darwin"
	OSWindows OS = "windows"
	OSUnknown OS = "unknown"
)

// Supported Arch values. The publisher ships x86-64 builds with the v3
// microarchitecture level baked in, hence "amd64v3" rather than "amd64".
const (
	ArchAMD64v3 Arch = "amd64v3"
	ArchARM64   Arch = "arm64"
	ArchARMv7   Arch = "armv7"
	Arch386     Arch = "386"
	ArchUnknown Arch = "unknown"
)

// Platform is a normalized (os, arch) pair describing the running host.
type Platform struct {
	OS   OS
	Arch Arch
}

// ErrUnsupported is returned when the host cannot be mapped to a published
// build. The pipeline must stop before any network access in that case.
var ErrUnsupported = errors.New("unsupported platform")

// windowsMarkers are kernel-name fragments of Windows-compatible
// environments (native, MSYS2, MinGW, Cygwin).
var windowsMarkers = []string{"windows", "msys", "mingw", "cygwin"}

// Resolve maps a kernel name and machine architecture string to a normalized
// Platform. Unrecognized values map to the unknown members; no error is
// returned so callers can report both fields at once.
func Resolve(kernel, machine string) Platform {
	return Platform{
		OS:   resolveOS(kernel),
		Arch: resolveArch(machine),
	}
}

// Detect introspects the running host and resolves its platform.
func Detect(ctx context.Context) (Platform, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Platform{OS: OSUnknown, Arch: ArchUnknown}, fmt.Errorf("introspect host: %w", err)
	}

	return Resolve(info.OS, info.KernelArch), nil
}

// Supported reports whether both fields resolved to a published target.
func (p Platform) Supported() bool {
	return p.OS != OSUnknown && p.Arch != ArchUnknown
}

// ExecutableSuffix returns the native executable suffix for the platform:
// ".exe" on Windows, empty elsewhere.
func (p Platform) ExecutableSuffix() string {
	if p.OS == OSWindows {
		return ".exe"
	}

	return ""
}

// String renders the platform in the publisher's {os}-{arch} form.
func (p Platform) String() string {
	return string(p.OS) + "-" + string(p.Arch)
}

func resolveOS(kernel string) OS {
	kernel = strings.ToLower(strings.TrimSpace(kernel))

	switch {
	case strings.HasPrefix(kernel, "linux"):
		return OSLinux
	case strings.HasPrefix(kernel, "darwin"):
		return OSDarwin
	}

	for _, marker := range windowsMarkers {
		if strings.Contains(kernel, marker) {
			return OSWindows
		}
	}

	return OSUnknown
}

func resolveArch(machine string) Arch {
	switch strings.ToLower(strings.TrimSpace(machine)) {
	case "x86_64", "amd64":
		return ArchAMD64v3
	case "aarch64", "arm64":
		return ArchARM64
	case "armv7l":
		return ArchARMv7
	case "i386", "i686":
		return Arch386
	default:
		return ArchUnknown
	}
}
