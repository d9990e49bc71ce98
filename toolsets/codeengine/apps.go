package codeengine

import (
	"context"

	ce "cemcp/internal/codeengine"
	"cemcp/internal/mcp"
	"cemcp/internal/render"
)

type appArgs struct {
	ProjectID string `json:"project_id"`
	AppName   string `json:"app_name"`
}

type createApplicationArgs struct {
	ProjectID             string `json:"project_id"`
	AppName               string `json:"app_name"`
	ImageReference        string `json:"image_reference"`
	ImagePort             int    `json:"image_port"`
	ScaleMinInstances     int    `json:"scale_min_instances"`
	ScaleMaxInstances     int    `json:"scale_max_instances"`
	ScaleCPULimit         string `json:"scale_cpu_limit"`
	ScaleMemoryLimit      string `json:"scale_memory_limit"`
	ManagedDomainMappings string `json:"managed_domain_mappings"`
}

type updateApplicationArgs struct {
	ProjectID         string  `json:"project_id"`
	AppName           string  `json:"app_name"`
	ImageReference    *string `json:"image_reference"`
	ScaleMinInstances *int    `json:"scale_min_instances"`
	ScaleMaxInstances *int    `json:"scale_max_instances"`
	ScaleCPULimit     *string `json:"scale_cpu_limit"`
	ScaleMemoryLimit  *string `json:"scale_memory_limit"`
}

type createAppFromSourceArgs struct {
	ProjectID   string `json:"project_id"`
	AppName     string `json:"app_name"`
	SourcePath  string `json:"source_path"`
	Port        int    `json:"port"`
	ImageName   string `json:"image_name"`
	MinScale    int    `json:"min_scale"`
	MaxScale    int    `json:"max_scale"`
	CPULimit    string `json:"cpu_limit"`
	MemoryLimit string `json:"memory_limit"`
}

type listRevisionsArgs struct {
	ProjectID string `json:"project_id"`
	AppName   string `json:"app_name"`
	Limit     int    `json:"limit"`
}

type revisionArgs struct {
	ProjectID    string `json:"project_id"`
	AppName      string `json:"app_name"`
	RevisionName string `json:"revision_name"`
}

type domainMappingArgs struct {
	ProjectID  string `json:"project_id"`
	DomainName string `json:"domain_name"`
}

func (t *Toolset) handleListApplications(ctx context.Context, req mcp.ToolRequest, args projectList) (mcp.ToolResult, error) {
	apps, err := req.Context.Client.ListApps(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Applications(apps, args.ProjectID), Data: apps}, nil
}

func (t *Toolset) handleGetApplication(ctx context.Context, req mcp.ToolRequest, args appArgs) (mcp.ToolResult, error) {
	app, err := req.Context.Client.GetApp(ctx, args.ProjectID, args.AppName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Application(app), Data: app}, nil
}

func (t *Toolset) handleCreateApplication(ctx context.Context, req mcp.ToolRequest, args createApplicationArgs) (mcp.ToolResult, error) {
	app, err := req.Context.Client.CreateApp(ctx, args.ProjectID, ce.AppPrototype{
		Name:                  args.AppName,
		ImageReference:        args.ImageReference,
		ImagePort:             args.ImagePort,
		ScaleMinInstances:     args.ScaleMinInstances,
		ScaleMaxInstances:     args.ScaleMaxInstances,
		ScaleCPULimit:         args.ScaleCPULimit,
		ScaleMemoryLimit:      args.ScaleMemoryLimit,
		ManagedDomainMappings: args.ManagedDomainMappings,
	})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Created("application", app), Data: app}, nil
}

func (t *Toolset) handleUpdateApplication(ctx context.Context, req mcp.ToolRequest, args updateApplicationArgs) (mcp.ToolResult, error) {
	app, err := req.Context.Client.UpdateApp(ctx, args.ProjectID, args.AppName, ce.AppPatch{
		ImageReference:    args.ImageReference,
		ScaleMinInstances: args.ScaleMinInstances,
		ScaleMaxInstances: args.ScaleMaxInstances,
		ScaleCPULimit:     args.ScaleCPULimit,
		ScaleMemoryLimit:  args.ScaleMemoryLimit,
	})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Updated("application", app), Data: app}, nil
}

func (t *Toolset) handleCreateAppFromSource(ctx context.Context, req mcp.ToolRequest, args createAppFromSourceArgs) (mcp.ToolResult, error) {
	result, err := req.Context.Client.CreateAppFromSource(ctx, ce.SourceDeployment{
		ProjectID:   args.ProjectID,
		AppName:     args.AppName,
		SourcePath:  args.SourcePath,
		Port:        args.Port,
		ImageName:   args.ImageName,
		MinScale:    args.MinScale,
		MaxScale:    args.MaxScale,
		CPULimit:    args.CPULimit,
		MemoryLimit: args.MemoryLimit,
	})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.SourceDeployment(result), Data: result}, nil
}

func (t *Toolset) handleListAppRevisions(ctx context.Context, req mcp.ToolRequest, args listRevisionsArgs) (mcp.ToolResult, error) {
	revisions, err := req.Context.Client.ListAppRevisions(ctx, args.ProjectID, args.AppName, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.AppRevisions(revisions, args.AppName), Data: revisions}, nil
}

func (t *Toolset) handleGetAppRevision(ctx context.Context, req mcp.ToolRequest, args revisionArgs) (mcp.ToolResult, error) {
	revision, err := req.Context.Client.GetAppRevision(ctx, args.ProjectID, args.AppName, args.RevisionName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.AppRevision(revision, args.AppName), Data: revision}, nil
}

func (t *Toolset) handleListDomainMappings(ctx context.Context, req mcp.ToolRequest, args projectList) (mcp.ToolResult, error) {
	mappings, err := req.Context.Client.ListDomainMappings(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.DomainMappings(mappings, args.ProjectID), Data: mappings}, nil
}

func (t *Toolset) handleGetDomainMapping(ctx context.Context, req mcp.ToolRequest, args domainMappingArgs) (mcp.ToolResult, error) {
	mapping, err := req.Context.Client.GetDomainMapping(ctx, args.ProjectID, args.DomainName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.DomainMapping(mapping), Data: mapping}, nil
}
