package tex

import (
	"fmt"
	"strings"
)

// Distro classifies the toolchain distribution from probe output.
type Distro string

const (
	// DistroDefault is any distribution without special handling (TeX Live etc.).
	DistroDefault Distro = "default"
	// DistroMiKTeX is the MiKTeX distribution, which does not consult the
	// composed search-path variables and needs them injected as arguments.
	DistroMiKTeX Distro = "miktex"
)

// miktexMarker is the substring texi2dvi --version prints under MiKTeX.
const miktexMarker = "MiKTeX"

// ClassifyDistro derives the distribution from raw probe output. Unmatched
// output, including empty output, is the default distribution; absence of
// the marker is a normal case, never an error.
func ClassifyDistro(output string) Distro {
	if strings.Contains(output, miktexMarker) {
		return DistroMiKTeX
	}
	return DistroDefault
}

// ToolchainInfo is the immutable result of one version probe.
type ToolchainInfo struct {
	Path       string // resolved executable path
	RawVersion string // captured --version output
	Distro     Distro
}

// ProbeError is a probe that spawned but exited non-zero. Its message is
// the toolchain's own error output when there is any.
type ProbeError struct {
	Path     string
	ExitCode int
	Stderr   string
}

func (e *ProbeError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s --version exited with status %d", e.Path, e.ExitCode)
}
