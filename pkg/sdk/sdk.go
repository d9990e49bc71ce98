// Package sdk exposes what an out-of-tree toolset needs to add tools to the
// server: the toolset contract, tool specs, argument schemas and the Code
// Engine client interface.
package sdk

import (
	"cemcp/internal/codeengine"
	"cemcp/internal/mcp"
	"cemcp/internal/redact"
	"cemcp/internal/render"
)

// Core toolset interfaces and types.
type Toolset = mcp.Toolset

type ToolsetContext = mcp.ToolsetContext

type ToolSpec = mcp.ToolSpec

type ToolHandler = mcp.ToolHandler

type ToolSafety = mcp.ToolSafety

type ToolRequest = mcp.ToolRequest

type ToolResult = mcp.ToolResult

type Registry = mcp.Registry

type Param = mcp.Param

const (
	SafetyReadOnly = mcp.SafetyReadOnly
	SafetyWrite    = mcp.SafetyWrite

	TypeString  = mcp.TypeString
	TypeInteger = mcp.TypeInteger
)

// Toolset registration for plugin discovery.
func RegisterToolset(id string, factory mcp.ToolsetFactory) error {
	return mcp.RegisterToolset(id, factory)
}

func MustRegisterToolset(id string, factory mcp.ToolsetFactory) {
	mcp.MustRegisterToolset(id, factory)
}

func RegisteredToolsets() []string {
	return mcp.RegisteredToolsets()
}

func Int(v int) *int {
	return mcp.Int(v)
}

// Code Engine access.
type API = codeengine.API

type Resource = codeengine.Resource

type APIError = codeengine.Error

func IsNotFound(err error) bool {
	return codeengine.IsNotFound(err)
}

// Output helpers.
type Redactor = redact.Redactor

func MaskSecretData(record map[string]any) map[string]any {
	return redact.MaskSecretData(record)
}

func Field(record map[string]any, path ...string) string {
	return render.Field(record, path...)
}
