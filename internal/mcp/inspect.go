package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/texkit/texkit/internal/report"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID from a tex_compile or tex_probe result"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	rec, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	return textResult(FormatRecord(rec))
}

type runsParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to list; default 10"`
}

func (h *handler) runsHandler(ctx context.Context, req *mcp.CallToolRequest, params runsParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	recs, err := h.store.List()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list runs: %v", err))
	}
	if len(recs) == 0 {
		return textResult("No runs recorded yet.")
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}

	var b strings.Builder
	for _, rec := range recs {
		fmt.Fprintf(&b, "%s\n", SummarizeRecord(rec))
	}
	return textResult(b.String())
}

// SummarizeRecord renders a one-line summary for run listings.
func SummarizeRecord(rec *report.RunRecord) string {
	status := "ok"
	if rec.Failed() {
		status = "FAIL"
	}
	target := rec.File
	if target == "" {
		target = rec.Engine
	}
	return fmt.Sprintf("%s  %-7s %-4s %s",
		rec.Started.Format("2006-01-02 15:04:05"), rec.Kind, status, target)
}

// FormatRecord renders a full run record: facts, issues, then the transcript.
func FormatRecord(rec *report.RunRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (%s)\n", rec.ID, rec.Kind)
	if rec.File != "" {
		fmt.Fprintf(&b, "File: %s\n", rec.File)
	}
	if rec.Engine != "" {
		fmt.Fprintf(&b, "Engine: %s\n", rec.Engine)
	}
	if rec.Distro != "" {
		fmt.Fprintf(&b, "Distribution: %s\n", rec.Distro)
	}
	fmt.Fprintf(&b, "Exit code: %d\n", rec.ExitCode)
	if rec.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", rec.Error)
	}

	if len(rec.Issues) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Issues (%d):\n", len(rec.Issues))
		for _, issue := range rec.Issues {
			fmt.Fprintf(&b, "  %s\n", formatIssue(issue))
		}
	}

	if rec.Log != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Transcript:")
		for _, line := range strings.Split(strings.TrimRight(rec.Log, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	return b.String()
}
