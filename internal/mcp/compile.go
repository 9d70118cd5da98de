package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/texkit/texkit/internal/report"
)

type compileParams struct {
	File string `json:"file" jsonschema:"absolute path of the .tex document to compile"`
}

func (h *handler) compileHandler(ctx context.Context, req *mcp.CallToolRequest, params compileParams) (*mcp.CallToolResult, any, error) {
	if params.File == "" {
		return errorResult("file is required")
	}

	var sink collectSink
	rec := h.engine.Compile(ctx, params.File, &sink)

	return textResult(compileResult(rec, sink.String()))
}

// transcriptTailLines bounds how much raw toolchain output a failed
// compile carries inline; the full transcript stays behind tex_inspect.
const transcriptTailLines = 20

// compileResult renders the tool result for a finished compile. When the
// toolchain exited non-zero the tail of the streamed transcript is appended
// so the caller sees the raw diagnostics without a second tool call.
func compileResult(rec *report.RunRecord, transcript string) string {
	text := formatCompile(rec)
	if rec.Error == "" && rec.ExitCode != 0 {
		if tail := lastLines(transcript, transcriptTailLines); tail != "" {
			text += "\nTranscript tail:\n" + tail
		}
	}
	return text
}

// lastLines returns the last n lines of s, each indented two spaces.
func lastLines(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return b.String()
}

func formatCompile(rec *report.RunRecord) string {
	var b strings.Builder

	if rec.Failed() {
		fmt.Fprintln(&b, "Status: FAIL")
	} else {
		fmt.Fprintln(&b, "Status: PASS")
	}
	fmt.Fprintf(&b, "Run: %s\n", rec.ID)
	if rec.File != "" {
		fmt.Fprintf(&b, "File: %s\n", rec.File)
	}
	if rec.Distro != "" {
		fmt.Fprintf(&b, "Distribution: %s\n", rec.Distro)
	}
	fmt.Fprintln(&b)

	if rec.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", rec.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "Exit code: %d\n", rec.ExitCode)
	if !rec.TexmfFound {
		fmt.Fprintln(&b, "Note: no texmf tree found; compiled with ambient search paths only.")
	}

	if len(rec.Issues) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Issues (%d):\n", len(rec.Issues))
		for _, issue := range rec.Issues {
			fmt.Fprintf(&b, "  %s\n", formatIssue(issue))
		}
	}

	fmt.Fprintln(&b)
	if rec.ExitCode == 0 {
		fmt.Fprintln(&b, "Compile succeeded.")
	} else {
		fmt.Fprintf(&b, "Compile failed. Inspect the transcript with tex_inspect(run_id=%q).\n", rec.ID)
	}
	return b.String()
}

func formatIssue(issue report.Issue) string {
	var b strings.Builder
	if issue.File != "" {
		fmt.Fprintf(&b, "%s:", issue.File)
	}
	if issue.Line > 0 {
		fmt.Fprintf(&b, "%d:", issue.Line)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(issue.Message)
	if issue.Context != "" {
		fmt.Fprintf(&b, " (near %q)", issue.Context)
	}
	return b.String()
}

// collectSink accumulates the streamed compile output so a failed run can
// surface its transcript tail in the tool result. Both methods are called
// from the stream pump goroutines.
type collectSink struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *collectSink) WriteOutput(text string) {
	s.mu.Lock()
	s.b.WriteString(text)
	s.mu.Unlock()
}

func (s *collectSink) WriteError(text string) {
	s.mu.Lock()
	s.b.WriteString(text)
	s.mu.Unlock()
}

func (s *collectSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
