// Package tools defines the tool handler contract and the string-keyed
// registry the orchestrator dispatches through, plus the built-in tools the
// bot ships with. Tool schemas are described as MCP tool definitions and
// converted to each backend's wire format by the functions in convert.go,
// so a new tool needs no orchestrator or provider changes.
package tools

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"fogmoe/model"
)

// Tool is one callable function exposed to the model.
//
// Execute receives the per-request context and the parsed JSON arguments
// and returns a JSON-serializable result. A returned error (or a panic) is
// converted by the orchestrator into an {"error": ...} result fed back to
// the model; it never aborts the orchestration loop.
type Tool interface {
	// Definition returns the tool's name, description, and JSON-schema
	// parameters.
	Definition() mcptypes.Tool

	Execute(ctx context.Context, rc *model.RequestContext, args map[string]any) (any, error)
}
