package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterSDKTools exposes every catalog tool on server, routing calls
// through the gateway.
func RegisterSDKTools(server *sdkmcp.Server, gateway *Gateway) ([]string, error) {
	if server == nil || gateway == nil {
		return nil, fmt.Errorf("server and gateway are required")
	}
	tools := gateway.ListTools()
	names := make([]string, 0, len(tools))
	for _, info := range tools {
		server.AddTool(&sdkmcp.Tool{
			Name:        info.Name,
			Description: info.Description,
			InputSchema: info.InputSchema,
		}, toolHandler(info.Name, gateway))
		names = append(names, info.Name)
	}
	return names, nil
}

func toolHandler(name string, gateway *Gateway) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				text := (&ArgumentError{Invalid: []string{err.Error()}}).Error()
				return buildCallToolResult(ToolCallResult{Text: text, Failed: true}), nil
			}
		}
		return buildCallToolResult(gateway.CallTool(ctx, name, args)), nil
	}
}

func buildCallToolResult(result ToolCallResult) *sdkmcp.CallToolResult {
	res := &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: result.Text}},
		IsError: result.Failed,
	}
	if result.CallID != "" {
		res.Meta = sdkmcp.Meta{"callId": result.CallID}
	}
	return res
}
