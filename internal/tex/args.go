package tex

import "strings"

// BuildArgs produces the texi2dvi argument list for a compile. The target
// filename is not included; the runner appends it last.
//
// MiKTeX's texi2dvi does not read TEXINPUTS or BSTINPUTS from the
// environment, so on Windows those two paths are injected with -I flags
// (slash-normalized). BIBINPUTS has no -I equivalent and is deliberately
// left out, matching tools::texi2dvi.
func BuildArgs(info *ToolchainInfo, platform Platform, paths TexmfPaths, extra []string) []string {
	args := []string{"--pdf", "--quiet"}

	if platform.IsWindows() && info.Distro == DistroMiKTeX && !paths.Empty() {
		args = append(args, "-I", forwardSlashes(paths.TexInputs))
		args = append(args, "-I", forwardSlashes(paths.BstInputs))
	}

	return append(args, extra...)
}

// forwardSlashes normalizes Windows path separators. Applied independently
// of the environment composer's normalization: the -I arguments and the
// variables are read by different layers of the toolchain.
func forwardSlashes(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
