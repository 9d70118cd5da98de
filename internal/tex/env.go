package tex

import (
	"os"
	"path/filepath"
	"strings"
)

// Snapshot is an immutable view of the process environment taken at
// composition time. Composing from a snapshot rather than live getenv
// calls keeps the composers pure and testable.
type Snapshot map[string]string

// EnvironSnapshot captures the current process environment.
func EnvironSnapshot() Snapshot {
	environ := os.Environ()
	s := make(Snapshot, len(environ))
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok {
			s[name] = value
		}
	}
	return s
}

// Get returns the snapshot value for name, or "" when unset.
func (s Snapshot) Get(name string) string { return s[name] }

// EnvVar is one environment variable of an invocation overlay.
type EnvVar struct {
	Name  string
	Value string
}

// Overlay converts a variable list into the map form consumed by the runner.
func Overlay(vars []EnvVar) map[string]string {
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		m[v.Name] = v.Value
	}
	return m
}

// InputsEnv builds the TEXINPUTS, BIBINPUTS and BSTINPUTS search-path
// variables by appending the texmf input directories to any ambient values.
// When paths is empty the result is empty: the compile then proceeds on the
// ambient environment alone rather than with partially-populated paths.
func InputsEnv(snap Snapshot, platform Platform, paths TexmfPaths) []EnvVar {
	if paths.Empty() {
		return nil
	}
	return []EnvVar{
		inputsVar(snap, platform, "TEXINPUTS", paths.TexInputs, true),
		inputsVar(snap, platform, "BIBINPUTS", paths.BibInputs, false),
		inputsVar(snap, platform, "BSTINPUTS", paths.BstInputs, false),
	}
}

// inputsVar composes a single search-path variable the way tools::texi2dvi
// does: the ambient value (or ".") first, then the extra directory, then a
// trailing empty segment. TeX stops scanning the list without the trailing
// empty segment, so it is always appended.
//
// On Windows texi2dvi replaces \ with / when defining TEXINPUTS, but not
// BIBINPUTS or BSTINPUTS; ensureForwardSlashes mirrors that.
func inputsVar(snap Snapshot, platform Platform, name, dir string, ensureForwardSlashes bool) EnvVar {
	value := snap.Get(name)
	if value == "" {
		value = "."
	}

	if platform.IsWindows() && ensureForwardSlashes {
		value = strings.ReplaceAll(value, `\`, "/")
	}

	sep := platform.listSeparator()
	value += sep + dir
	value += sep // trailing empty segment required by tex

	return EnvVar{Name: name, Value: value}
}

// CompileEnv builds the full environment overlay for a compile run: the
// search-path variables plus the texi2dvi workarounds and the PDFLATEX
// wrapper variable.
func CompileEnv(snap Snapshot, platform Platform, paths TexmfPaths, scriptsDir string) []EnvVar {
	vars := InputsEnv(snap, platform, paths)

	// tools::texi2dvi sets these on posix; texindy breaks under texi2dvi's
	// index handling and a C collation order keeps sort output stable.
	if !platform.IsWindows() {
		vars = append(vars,
			EnvVar{Name: "TEXINDY", Value: "false"},
			EnvVar{Name: "LC_COLLATE", Value: "C"},
		)
	}

	if scriptsDir != "" {
		script := filepath.Join(scriptsDir, "texkit-pdflatex"+platform.scriptExt())
		vars = append(vars, EnvVar{Name: "PDFLATEX", Value: script})
	}

	return vars
}
