// Package mcp provides the texkit MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	texkit "github.com/texkit/texkit"
	"github.com/texkit/texkit/internal/config"
	"github.com/texkit/texkit/internal/report"
	"github.com/texkit/texkit/internal/runner"
	"github.com/texkit/texkit/internal/tex"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	engine *tex.Engine
	runner *runner.Runner // retained for updateWorkspaceFromRoots
	store  report.Store
}

// NewServer creates an MCP server with all texkit tools registered.
func NewServer(cfg *config.Config, r *runner.Runner, store report.Store) *mcp.Server {
	h := &handler{
		engine: &tex.Engine{
			Config: cfg,
			Runner: r,
			Store:  store,
		},
		runner: r,
		store:  store,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "texkit", Version: texkit.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "tex_compile",
		Description: `Compile a LaTeX document to PDF with texi2dvi.

Probes the installed toolchain, composes the TeX search-path environment,
and runs the compile. Returns the outcome with parsed diagnostics; the full
transcript is available via tex_inspect.`,
	}, h.compileHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "tex_probe",
		Description: `Report the installed TeX toolchain: executable path, version output,
and distribution (TeX Live vs MiKTeX).`,
	}, h.probeHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "tex_runs",
		Description: `List recent compile and probe runs, most recent first.`,
	}, h.runsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "tex_inspect",
		Description: `Drill into one run from tex_compile or tex_probe.

Use the run_id from the tool output. Returns the structured issues and the
captured toolchain transcript.`,
	}, h.inspectHandler)

	return s
}

// updateWorkspaceFromRoots queries the client for MCP roots and rebinds the
// runner and engine to the first valid file root, reloading its .texkit.
// This is called during session initialization, before any tool calls.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil {
		return
	}
	if len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	workspace := u.Path

	loaded, err := config.Load(workspace)
	if err != nil {
		return
	}

	h.runner.Workspace = workspace
	h.runner.Timeout = loaded.Config.Timeout()
	h.runner.MaxOutput = loaded.Config.MaxOutputBytes()

	h.engine.Config = loaded.Config
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
