package tex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// TexmfPaths holds the three texmf input directories appended to the TeX
// search paths. The zero value means no texmf tree was found.
type TexmfPaths struct {
	TexInputs string // <root>/tex/latex
	BibInputs string // <root>/bibtex/bib
	BstInputs string // <root>/bibtex/bst
}

// Empty reports whether no texmf tree was located.
func (p TexmfPaths) Empty() bool { return p.TexInputs == "" }

// TexmfAt returns the input directories under root, or the empty struct
// when root does not exist. Callers must treat an empty result as "skip
// path augmentation", never as an error.
func TexmfAt(root string) TexmfPaths {
	if root == "" {
		return TexmfPaths{}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return TexmfPaths{}
	}
	fi, err := os.Stat(abs)
	if err != nil || !fi.IsDir() {
		return TexmfPaths{}
	}
	return TexmfPaths{
		TexInputs: filepath.Join(abs, "tex", "latex"),
		BibInputs: filepath.Join(abs, "bibtex", "bib"),
		BstInputs: filepath.Join(abs, "bibtex", "bst"),
	}
}

// DiscoverTexmf locates the texmf tree. An explicit root wins; otherwise the
// R installation is asked for its home directory and <RHOME>/share/texmf is
// used, matching where R ships its Sweave styles. Every failure degrades to
// the empty struct.
func DiscoverTexmf(ctx context.Context, run CommandRunner, root string) TexmfPaths {
	if root != "" {
		return TexmfAt(root)
	}
	return TexmfAt(rShareTexmf(ctx, run))
}

// rShareTexmf resolves <RHOME>/share/texmf via `R RHOME`, or "" when R is
// not installed or misbehaves.
func rShareTexmf(ctx context.Context, run CommandRunner) string {
	res, err := run.Run(ctx, []string{"R", "RHOME"}, "")
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	home := strings.TrimSpace(string(res.Stdout))
	if home == "" {
		return ""
	}
	return filepath.Join(home, "share", "texmf")
}
