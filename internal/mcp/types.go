package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"cemcp/internal/audit"
	"cemcp/internal/codeengine"
	"cemcp/internal/config"
	"cemcp/internal/redact"
)

type ToolSafety string

const (
	SafetyReadOnly ToolSafety = "read_only"
	SafetyWrite    ToolSafety = "write"
)

type ToolHandler func(ctx context.Context, req ToolRequest) (ToolResult, error)

// ToolSpec describes one tool. Specs are immutable once registered.
type ToolSpec struct {
	Name        string
	Description string
	ToolsetID   string
	Params      []Param
	Safety      ToolSafety
	// Sensitive results have their secret data masked before serialization.
	Sensitive bool
	Handler   ToolHandler
}

type ToolInfo struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	InputSchema map[string]any `json:"inputSchema" yaml:"inputSchema"`
}

// ToolRequest carries arguments that already passed validation, with
// defaults filled in.
type ToolRequest struct {
	Name      string
	Arguments map[string]any
	Context   ToolContext
}

// Decode copies the validated arguments into a typed struct using its json
// tags. Values that do not fit the target field are argument errors.
func (r ToolRequest) Decode(dst any) error {
	data, err := json.Marshal(r.Arguments)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &ArgumentError{Invalid: []string{"decode arguments: " + err.Error()}}
	}
	return nil
}

// ToolResult is what a handler produces: a human summary plus the raw data
// serialized after it.
type ToolResult struct {
	Summary string
	Data    any
}

// ToolCallResult is the single text block returned to the caller. Failed is
// set for every soft error.
type ToolCallResult struct {
	Text   string
	Failed bool
	CallID string
}

type ToolContext struct {
	Config   *config.Config
	Client   codeengine.API
	Redactor *redact.Redactor
	Audit    *audit.Logger
	Tracer   trace.Tracer
	Registry Registry
}

type ToolsetContext = ToolContext

// Handle adapts a handler taking a typed argument struct.
func Handle[T any](fn func(ctx context.Context, req ToolRequest, args T) (ToolResult, error)) ToolHandler {
	return func(ctx context.Context, req ToolRequest) (ToolResult, error) {
		var args T
		if err := req.Decode(&args); err != nil {
			return ToolResult{}, err
		}
		return fn(ctx, req, args)
	}
}
