package mcp

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/texkit/texkit/internal/config"
	"github.com/texkit/texkit/internal/report"
	"github.com/texkit/texkit/internal/runner"
)

// setup creates a full texkit MCP server + client over in-memory transports.
func setup(t *testing.T, cfg *config.Config, store report.Store) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	if cfg == nil {
		cfg = &config.Config{}
	}
	if store == nil {
		store = report.NewLRUStore(5, report.NewDiskStoreAt(t.TempDir()))
	}

	r := &runner.Runner{
		Timeout:   30 * time.Second,
		MaxOutput: cfg.MaxOutputBytes(),
	}

	server := NewServer(cfg, r, store)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestToolsRegistered(t *testing.T) {
	cs := setup(t, nil, nil)

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"tex_compile": false,
		"tex_probe":   false,
		"tex_runs":    false,
		"tex_inspect": false,
	}
	for _, tool := range res.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestTexCompile_MissingFileParam(t *testing.T) {
	cs := setup(t, nil, nil)

	res := callTool(t, cs, "tex_compile", map[string]any{})
	if !res.IsError {
		t.Fatal("expected IsError for missing file param")
	}
	if !strings.Contains(resultText(res), "file is required") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestTexCompile_ToolchainMissing(t *testing.T) {
	// Point the engine at a binary that cannot exist.
	cfg := &config.Config{RawEngine: "texkit-test-no-such-texi2dvi"}
	cs := setup(t, cfg, nil)

	res := callTool(t, cs, "tex_compile", map[string]any{"file": "/tmp/doc.tex"})
	text := resultText(res)
	if !strings.Contains(text, "Status: FAIL") {
		t.Errorf("result = %q, want a FAIL status", text)
	}
}

func TestTexProbe_ToolchainMissing(t *testing.T) {
	cfg := &config.Config{RawEngine: "texkit-test-no-such-texi2dvi"}
	cs := setup(t, cfg, nil)

	res := callTool(t, cs, "tex_probe", map[string]any{})
	if !res.IsError {
		t.Fatal("expected IsError when the toolchain is missing")
	}
	if !strings.Contains(resultText(res), "can't find") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestTexRuns_EmptyStore(t *testing.T) {
	cs := setup(t, nil, nil)

	res := callTool(t, cs, "tex_runs", map[string]any{})
	if !strings.Contains(resultText(res), "No runs recorded yet.") {
		t.Errorf("result = %q", resultText(res))
	}
}

func TestTexRuns_ListsSavedRuns(t *testing.T) {
	store := report.NewLRUStore(5, report.NewDiskStoreAt(t.TempDir()))
	rec := &report.RunRecord{
		ID:      "run-42",
		Kind:    report.Compile,
		Started: time.Now().UTC(),
		File:    "/docs/paper.tex",
	}
	if err := store.Save(rec); err != nil {
		t.Fatal(err)
	}
	cs := setup(t, nil, store)

	res := callTool(t, cs, "tex_runs", map[string]any{})
	text := resultText(res)
	if !strings.Contains(text, "/docs/paper.tex") || !strings.Contains(text, "compile") {
		t.Errorf("result = %q", text)
	}
}

func TestTexInspect_RoundTrip(t *testing.T) {
	store := report.NewLRUStore(5, report.NewDiskStoreAt(t.TempDir()))
	rec := &report.RunRecord{
		ID:       "run-7",
		Kind:     report.Compile,
		Started:  time.Now().UTC(),
		File:     "/docs/paper.tex",
		Engine:   "/usr/bin/texi2dvi",
		Distro:   "default",
		ExitCode: 1,
		Issues: []report.Issue{
			{File: "paper.tex", Line: 12, Message: "Undefined control sequence."},
		},
		Log: "! Undefined control sequence.\nl.12 \\badmacro\n",
	}
	if err := store.Save(rec); err != nil {
		t.Fatal(err)
	}
	cs := setup(t, nil, store)

	res := callTool(t, cs, "tex_inspect", map[string]any{"run_id": "run-7"})
	text := resultText(res)
	for _, want := range []string{
		"Run: run-7 (compile)",
		"paper.tex:12: Undefined control sequence.",
		"Transcript:",
		"l.12",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
}

func TestTexInspect_MissingRun(t *testing.T) {
	cs := setup(t, nil, nil)

	res := callTool(t, cs, "tex_inspect", map[string]any{"run_id": "ghost"})
	if !res.IsError {
		t.Fatal("expected IsError for an unknown run")
	}
}

func TestFormatCompile_TerminalFailure(t *testing.T) {
	rec := &report.RunRecord{ID: "x", Kind: report.Compile, Error: "can't find texi2dvi"}
	text := formatCompile(rec)
	if !strings.Contains(text, "Status: FAIL") || !strings.Contains(text, "can't find texi2dvi") {
		t.Errorf("formatCompile = %q", text)
	}
}

func TestCompileResult_FailureCarriesTranscriptTail(t *testing.T) {
	rec := &report.RunRecord{ID: "x", Kind: report.Compile, ExitCode: 1}
	transcript := "This is pdfTeX\n! Undefined control sequence.\nl.12 \\badmacro\n"

	text := compileResult(rec, transcript)
	if !strings.Contains(text, "Transcript tail:") {
		t.Fatalf("compileResult missing transcript tail:\n%s", text)
	}
	if !strings.Contains(text, "  l.12 \\badmacro") {
		t.Errorf("compileResult missing transcript lines:\n%s", text)
	}
}

func TestCompileResult_SuccessOmitsTranscript(t *testing.T) {
	rec := &report.RunRecord{ID: "x", Kind: report.Compile}
	if text := compileResult(rec, "This is pdfTeX\nOutput written on p.pdf\n"); strings.Contains(text, "Transcript tail:") {
		t.Errorf("successful compile should not inline the transcript:\n%s", text)
	}
}

func TestLastLines_Bounded(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	tail := lastLines(b.String(), 20)
	if strings.Contains(tail, "line 29\n") || !strings.Contains(tail, "line 30") || !strings.Contains(tail, "line 49") {
		t.Errorf("lastLines = %q, want exactly the final 20 lines", tail)
	}
	if lastLines("", 20) != "" {
		t.Error("lastLines of empty transcript should be empty")
	}
}

func TestFormatCompile_Success(t *testing.T) {
	rec := &report.RunRecord{ID: "x", Kind: report.Compile, File: "/d/p.tex", Distro: "default", TexmfFound: true}
	text := formatCompile(rec)
	if !strings.Contains(text, "Status: PASS") || !strings.Contains(text, "Compile succeeded.") {
		t.Errorf("formatCompile = %q", text)
	}
}
