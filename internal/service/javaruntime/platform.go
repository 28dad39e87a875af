package javaruntime

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Operating system names as the runtime index understands them.
const (
	OSWindows = "windows"
	OSMacOS   = "osx"
	OSLinux   = "linux"
)

// Architecture names as the runtime index understands them.
const (
	ArchX64 = "x64"
	ArchX86 = "x86"
	ArchX32 = "x32"
)

// ErrUnresolvablePlatform is returned when an OS and architecture
// combination matches no bucket of the runtime index.
var ErrUnresolvablePlatform = errors.New("unresolvable platform")

// platformBuckets maps a platform onto its index bucket. macOS is
// handled separately because its bucket ignores the architecture.
var platformBuckets = map[Platform]string{
	{OS: OSWindows, Arch: ArchX64}: "windows-x64",
	{OS: OSWindows, Arch: ArchX86}: "windows-x86",
	{OS: OSWindows, Arch: ArchX32}: "windows-x86",
	{OS: OSLinux, Arch: ArchX64}:   "linux",
	{OS: OSLinux, Arch: ArchX86}:   "linux-i386",
	{OS: OSLinux, Arch: ArchX32}:   "linux-i386",
}

// Platform identifies an operating system and processor word size the
// way the runtime index buckets them.
type Platform struct {
	// OS is "windows", "osx" or "linux".
	OS string `json:"os" yaml:"os"`
	// Arch is "x64", "x86" or "x32".
	Arch string `json:"arch" yaml:"arch"`
}

// CurrentPlatform detects the platform of the running process.
func CurrentPlatform() Platform {
	platform := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}

	if runtime.GOOS == "darwin" {
		platform.OS = OSMacOS
	}

	switch runtime.GOARCH {
	case "amd64":
		platform.Arch = ArchX64
	case "386":
		platform.Arch = ArchX86
	}

	return platform
}

// String renders the platform as "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// Bucket returns the runtime index bucket for the platform, or
// ErrUnresolvablePlatform when the index has no runtime for it.
func (p Platform) Bucket() (string, error) {
	normalized := Platform{
		OS:   strings.ToLower(p.OS),
		Arch: strings.ToLower(p.Arch),
	}

	if normalized.OS == OSMacOS {
		return "mac-os", nil
	}

	if bucket, ok := platformBuckets[normalized]; ok {
		return bucket, nil
	}

	return "", fmt.Errorf("%s: %w", p, ErrUnresolvablePlatform)
}
