package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type probeParams struct{}

func (h *handler) probeHandler(ctx context.Context, req *mcp.CallToolRequest, params probeParams) (*mcp.CallToolResult, any, error) {
	info, err := h.engine.Probe(ctx)
	if err != nil {
		return errorResult(err.Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Executable: %s\n", info.Path)
	fmt.Fprintf(&b, "Distribution: %s\n", info.Distro)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Version output:")
	for _, line := range strings.Split(strings.TrimRight(info.RawVersion, "\n"), "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return textResult(b.String())
}
