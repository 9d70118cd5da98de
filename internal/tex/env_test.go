package tex

import (
	"path/filepath"
	"strings"
	"testing"
)

func testPaths() TexmfPaths {
	return TexmfPaths{
		TexInputs: "/opt/R/share/texmf/tex/latex",
		BibInputs: "/opt/R/share/texmf/bibtex/bib",
		BstInputs: "/opt/R/share/texmf/bibtex/bst",
	}
}

func TestInputsEnv_EmptyAmbientDefaultsToDot(t *testing.T) {
	vars := InputsEnv(Snapshot{}, PlatformUnix, testPaths())
	if len(vars) != 3 {
		t.Fatalf("got %d variables, want 3", len(vars))
	}

	wantDirs := map[string]string{
		"TEXINPUTS": "/opt/R/share/texmf/tex/latex",
		"BIBINPUTS": "/opt/R/share/texmf/bibtex/bib",
		"BSTINPUTS": "/opt/R/share/texmf/bibtex/bst",
	}
	for _, v := range vars {
		want := "." + ":" + wantDirs[v.Name] + ":"
		if v.Value != want {
			t.Errorf("%s = %q, want %q", v.Name, v.Value, want)
		}
	}
}

func TestInputsEnv_AmbientValueIsPrefix(t *testing.T) {
	snap := Snapshot{"TEXINPUTS": "/home/u/tex:."}
	vars := InputsEnv(snap, PlatformUnix, testPaths())

	got := vars[0]
	if got.Name != "TEXINPUTS" {
		t.Fatalf("first variable = %s, want TEXINPUTS", got.Name)
	}
	if !strings.HasPrefix(got.Value, "/home/u/tex:.:") {
		t.Errorf("TEXINPUTS = %q, want ambient value as prefix", got.Value)
	}
	if !strings.HasSuffix(got.Value, ":") {
		t.Errorf("TEXINPUTS = %q, want trailing empty segment", got.Value)
	}
}

func TestInputsEnv_WindowsForwardSlashesOnlyForTexinputs(t *testing.T) {
	snap := Snapshot{
		"TEXINPUTS": `C:\Users\u\tex`,
		"BIBINPUTS": `C:\Users\u\bib`,
		"BSTINPUTS": `C:\Users\u\bst`,
	}
	vars := InputsEnv(snap, PlatformWindows, testPaths())

	byName := make(map[string]string, len(vars))
	for _, v := range vars {
		byName[v.Name] = v.Value
	}

	if strings.Contains(byName["TEXINPUTS"], `\`) {
		t.Errorf("TEXINPUTS kept backslashes: %q", byName["TEXINPUTS"])
	}
	if !strings.HasPrefix(byName["TEXINPUTS"], "C:/Users/u/tex;") {
		t.Errorf("TEXINPUTS = %q, want normalized ambient prefix", byName["TEXINPUTS"])
	}
	if !strings.HasPrefix(byName["BIBINPUTS"], `C:\Users\u\bib;`) {
		t.Errorf("BIBINPUTS = %q, want unnormalized ambient prefix", byName["BIBINPUTS"])
	}
	if !strings.HasPrefix(byName["BSTINPUTS"], `C:\Users\u\bst;`) {
		t.Errorf("BSTINPUTS = %q, want unnormalized ambient prefix", byName["BSTINPUTS"])
	}
}

func TestInputsEnv_UnixNeverNormalizes(t *testing.T) {
	snap := Snapshot{"TEXINPUTS": `weird\but\legal`}
	vars := InputsEnv(snap, PlatformUnix, testPaths())
	if !strings.HasPrefix(vars[0].Value, `weird\but\legal:`) {
		t.Errorf("TEXINPUTS = %q, want backslashes preserved on unix", vars[0].Value)
	}
}

func TestInputsEnv_EmptyPathsYieldsNoVariables(t *testing.T) {
	vars := InputsEnv(Snapshot{"TEXINPUTS": "/x"}, PlatformUnix, TexmfPaths{})
	if len(vars) != 0 {
		t.Errorf("got %d variables for empty texmf paths, want 0", len(vars))
	}
}

func TestCompileEnv_PosixWorkarounds(t *testing.T) {
	vars := CompileEnv(Snapshot{}, PlatformUnix, testPaths(), "")

	byName := make(map[string]string, len(vars))
	for _, v := range vars {
		byName[v.Name] = v.Value
	}
	if byName["TEXINDY"] != "false" {
		t.Errorf("TEXINDY = %q, want false", byName["TEXINDY"])
	}
	if byName["LC_COLLATE"] != "C" {
		t.Errorf("LC_COLLATE = %q, want C", byName["LC_COLLATE"])
	}
}

func TestCompileEnv_WindowsSkipsPosixWorkarounds(t *testing.T) {
	vars := CompileEnv(Snapshot{}, PlatformWindows, testPaths(), "")
	for _, v := range vars {
		if v.Name == "TEXINDY" || v.Name == "LC_COLLATE" {
			t.Errorf("%s set on windows", v.Name)
		}
	}
}

func TestCompileEnv_PdflatexWrapper(t *testing.T) {
	vars := CompileEnv(Snapshot{}, PlatformUnix, TexmfPaths{}, "/opt/texkit/scripts")

	var pdflatex string
	for _, v := range vars {
		if v.Name == "PDFLATEX" {
			pdflatex = v.Value
		}
	}
	want := filepath.Join("/opt/texkit/scripts", "texkit-pdflatex.sh")
	if pdflatex != want {
		t.Errorf("PDFLATEX = %q, want %q", pdflatex, want)
	}
}

func TestCompileEnv_NoScriptsDirNoPdflatex(t *testing.T) {
	for _, v := range CompileEnv(Snapshot{}, PlatformUnix, TexmfPaths{}, "") {
		if v.Name == "PDFLATEX" {
			t.Errorf("PDFLATEX set without a scripts dir: %q", v.Value)
		}
	}
}

func TestOverlay(t *testing.T) {
	m := Overlay([]EnvVar{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}})
	if m["A"] != "1" || m["B"] != "2" || len(m) != 2 {
		t.Errorf("Overlay = %v", m)
	}
}
