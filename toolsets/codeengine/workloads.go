package codeengine

import (
	"context"

	ce "cemcp/internal/codeengine"
	"cemcp/internal/mcp"
	"cemcp/internal/render"
)

type jobArgs struct {
	ProjectID string `json:"project_id"`
	JobName   string `json:"job_name"`
}

type listJobRunsArgs struct {
	ProjectID string `json:"project_id"`
	JobName   string `json:"job_name"`
	Limit     int    `json:"limit"`
}

type jobRunArgs struct {
	ProjectID  string `json:"project_id"`
	JobRunName string `json:"job_run_name"`
}

type createBuildArgs struct {
	ProjectID        string `json:"project_id"`
	BuildName        string `json:"build_name"`
	OutputImage      string `json:"output_image"`
	OutputSecret     string `json:"output_secret"`
	SourceURL        string `json:"source_url"`
	SourceRevision   string `json:"source_revision"`
	SourceContextDir string `json:"source_context_dir"`
	StrategyType     string `json:"strategy_type"`
	StrategySpecFile string `json:"strategy_spec_file"`
	StrategySize     string `json:"strategy_size"`
}

type createBuildRunArgs struct {
	ProjectID string `json:"project_id"`
	BuildName string `json:"build_name"`
	Name      string `json:"name"`
}

type listBuildRunsArgs struct {
	ProjectID string `json:"project_id"`
	BuildName string `json:"build_name"`
	Limit     int    `json:"limit"`
}

type buildRunArgs struct {
	ProjectID    string `json:"project_id"`
	BuildRunName string `json:"build_run_name"`
}

type secretArgs struct {
	ProjectID  string `json:"project_id"`
	SecretName string `json:"secret_name"`
}

func (t *Toolset) handleListJobs(ctx context.Context, req mcp.ToolRequest, args projectList) (mcp.ToolResult, error) {
	jobs, err := req.Context.Client.ListJobs(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Jobs(jobs, args.ProjectID), Data: jobs}, nil
}

func (t *Toolset) handleGetJob(ctx context.Context, req mcp.ToolRequest, args jobArgs) (mcp.ToolResult, error) {
	job, err := req.Context.Client.GetJob(ctx, args.ProjectID, args.JobName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Job(job), Data: job}, nil
}

func (t *Toolset) handleListJobRuns(ctx context.Context, req mcp.ToolRequest, args listJobRunsArgs) (mcp.ToolResult, error) {
	runs, err := req.Context.Client.ListJobRuns(ctx, args.ProjectID, args.JobName, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.JobRuns(runs, args.ProjectID, args.JobName), Data: runs}, nil
}

func (t *Toolset) handleGetJobRun(ctx context.Context, req mcp.ToolRequest, args jobRunArgs) (mcp.ToolResult, error) {
	run, err := req.Context.Client.GetJobRun(ctx, args.ProjectID, args.JobRunName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.JobRun(run), Data: run}, nil
}

func (t *Toolset) handleListBuilds(ctx context.Context, req mcp.ToolRequest, args projectList) (mcp.ToolResult, error) {
	builds, err := req.Context.Client.ListBuilds(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Builds(builds, args.ProjectID), Data: builds}, nil
}

func (t *Toolset) handleCreateBuild(ctx context.Context, req mcp.ToolRequest, args createBuildArgs) (mcp.ToolResult, error) {
	build, err := req.Context.Client.CreateBuild(ctx, args.ProjectID, ce.BuildPrototype{
		Name:             args.BuildName,
		OutputImage:      args.OutputImage,
		OutputSecret:     args.OutputSecret,
		SourceURL:        args.SourceURL,
		SourceRevision:   args.SourceRevision,
		SourceContextDir: args.SourceContextDir,
		StrategyType:     args.StrategyType,
		StrategySpecFile: args.StrategySpecFile,
		StrategySize:     args.StrategySize,
	})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Created("build", build), Data: build}, nil
}

func (t *Toolset) handleListBuildRuns(ctx context.Context, req mcp.ToolRequest, args listBuildRunsArgs) (mcp.ToolResult, error) {
	runs, err := req.Context.Client.ListBuildRuns(ctx, args.ProjectID, args.BuildName, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.BuildRuns(runs, args.ProjectID, args.BuildName), Data: runs}, nil
}

func (t *Toolset) handleGetBuildRun(ctx context.Context, req mcp.ToolRequest, args buildRunArgs) (mcp.ToolResult, error) {
	run, err := req.Context.Client.GetBuildRun(ctx, args.ProjectID, args.BuildRunName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.BuildRun(run), Data: run}, nil
}

func (t *Toolset) handleCreateBuildRun(ctx context.Context, req mcp.ToolRequest, args createBuildRunArgs) (mcp.ToolResult, error) {
	run, err := req.Context.Client.CreateBuildRun(ctx, args.ProjectID, ce.BuildRunPrototype{BuildName: args.BuildName, Name: args.Name})
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Created("build run", run), Data: run}, nil
}

func (t *Toolset) handleListSecrets(ctx context.Context, req mcp.ToolRequest, args projectList) (mcp.ToolResult, error) {
	secrets, err := req.Context.Client.ListSecrets(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Secrets(secrets, args.ProjectID), Data: secrets}, nil
}

func (t *Toolset) handleGetSecret(ctx context.Context, req mcp.ToolRequest, args secretArgs) (mcp.ToolResult, error) {
	secret, err := req.Context.Client.GetSecret(ctx, args.ProjectID, args.SecretName)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	return mcp.ToolResult{Summary: render.Secret(secret), Data: secret}, nil
}
