// Package tex orchestrates LaTeX compiles: it probes the installed
// texi2dvi toolchain, composes the TeX search-path environment, builds the
// invocation, and supervises the compile process.
package tex

import "runtime"

// Platform selects the platform-dependent toolchain behaviors. It is a
// runtime value rather than a build-time branch so both behaviors are
// testable from one binary.
type Platform string

const (
	// PlatformUnix covers Linux, macOS and the BSDs.
	PlatformUnix Platform = "unix"
	// PlatformWindows enables the Windows-only texi2dvi emulation quirks.
	PlatformWindows Platform = "windows"
)

// HostPlatform returns the Platform of the running process.
func HostPlatform() Platform {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}
	return PlatformUnix
}

// IsWindows reports whether p selects Windows behaviors.
func (p Platform) IsWindows() bool { return p == PlatformWindows }

// listSeparator is the path-list separator used in search-path variables.
func (p Platform) listSeparator() string {
	if p.IsWindows() {
		return ";"
	}
	return ":"
}

// scriptExt is the extension of generated wrapper scripts.
func (p Platform) scriptExt() string {
	if p.IsWindows() {
		return ".cmd"
	}
	return ".sh"
}
