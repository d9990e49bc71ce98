package codeengine

import (
	"context"

	"cemcp/internal/mcp"
	"cemcp/internal/render"
)

type listProjectsArgs struct {
	Limit           int    `json:"limit"`
	ResourceGroupID string `json:"resource_group_id"`
}

type findProjectArgs struct {
	ProjectName     string `json:"project_name"`
	ResourceGroupID string `json:"resource_group_id"`
}

// projectList is embedded by the list tools scoped to one project.
type projectList struct {
	ProjectID string `json:"project_id"`
	Limit     int    `json:"limit"`
}

func (t *Toolset) handleListProjects(ctx context.Context, req mcp.ToolRequest, args listProjectsArgs) (mcp.ToolResult, error) {
	projects, err := req.Context.Client.ListProjects(ctx, args.Limit, args.ResourceGroupID)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Projects(projects), Data: projects}, nil
}

func (t *Toolset) handleFindProject(ctx context.Context, req mcp.ToolRequest, args findProjectArgs) (mcp.ToolResult, error) {
	project, found, err := req.Context.Client.FindProjectByName(ctx, args.ProjectName, args.ResourceGroupID)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if !found {
		return mcp.ToolResult{Summary: render.ProjectNotFound(args.ProjectName)}, nil
	}
	return mcp.ToolResult{Summary: render.ProjectMatch(project), Data: project}, nil
}
