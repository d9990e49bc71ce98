package codeengine

import (
	"context"

	"github.com/IBM/code-engine-go-sdk/codeenginev2"
	"github.com/IBM/go-sdk-core/v5/core"
)

func (c *Client) ListJobs(ctx context.Context, projectID string, limit int) ([]Resource, error) {
	p, err := c.service.NewJobsPager(&codeenginev2.ListJobsOptions{
		ProjectID: &projectID,
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.Job](ctx, c, "list_jobs", p, err)
}

func (c *Client) GetJob(ctx context.Context, projectID, name string) (Resource, error) {
	return fetch(ctx, c, "get_job", func(ctx context.Context) (*codeenginev2.Job, *core.DetailedResponse, error) {
		return c.service.GetJobWithContext(ctx, &codeenginev2.GetJobOptions{ProjectID: &projectID, Name: &name})
	})
}

func (c *Client) ListJobRuns(ctx context.Context, projectID, jobName string, limit int) ([]Resource, error) {
	p, err := c.service.NewJobRunsPager(&codeenginev2.ListJobRunsOptions{
		ProjectID: &projectID,
		JobName:   optString(jobName),
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.JobRun](ctx, c, "list_job_runs", p, err)
}

func (c *Client) GetJobRun(ctx context.Context, projectID, name string) (Resource, error) {
	return fetch(ctx, c, "get_job_run", func(ctx context.Context) (*codeenginev2.JobRun, *core.DetailedResponse, error) {
		return c.service.GetJobRunWithContext(ctx, &codeenginev2.GetJobRunOptions{ProjectID: &projectID, Name: &name})
	})
}

func (c *Client) ListBuilds(ctx context.Context, projectID string, limit int) ([]Resource, error) {
	p, err := c.service.NewBuildsPager(&codeenginev2.ListBuildsOptions{
		ProjectID: &projectID,
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.Build](ctx, c, "list_builds", p, err)
}

func (c *Client) CreateBuild(ctx context.Context, projectID string, build BuildPrototype) (Resource, error) {
	if build.SourceType == "" {
		build.SourceType = "git"
	}
	opts := &codeenginev2.CreateBuildOptions{
		ProjectID:        &projectID,
		Name:             &build.Name,
		OutputImage:      &build.OutputImage,
		OutputSecret:     &build.OutputSecret,
		SourceURL:        &build.SourceURL,
		StrategyType:     &build.StrategyType,
		SourceRevision:   optString(build.SourceRevision),
		SourceContextDir: optString(build.SourceContextDir),
		SourceType:       &build.SourceType,
		StrategySpecFile: optString(build.StrategySpecFile),
		StrategySize:     optString(build.StrategySize),
	}
	return fetch(ctx, c, "create_build", func(ctx context.Context) (*codeenginev2.Build, *core.DetailedResponse, error) {
		return c.service.CreateBuildWithContext(ctx, opts)
	})
}

func (c *Client) ListBuildRuns(ctx context.Context, projectID, buildName string, limit int) ([]Resource, error) {
	p, err := c.service.NewBuildRunsPager(&codeenginev2.ListBuildRunsOptions{
		ProjectID: &projectID,
		BuildName: optString(buildName),
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.BuildRun](ctx, c, "list_build_runs", p, err)
}

func (c *Client) GetBuildRun(ctx context.Context, projectID, name string) (Resource, error) {
	return fetch(ctx, c, "get_build_run", func(ctx context.Context) (*codeenginev2.BuildRun, *core.DetailedResponse, error) {
		return c.service.GetBuildRunWithContext(ctx, &codeenginev2.GetBuildRunOptions{ProjectID: &projectID, Name: &name})
	})
}

func (c *Client) CreateBuildRun(ctx context.Context, projectID string, run BuildRunPrototype) (Resource, error) {
	opts := &codeenginev2.CreateBuildRunOptions{
		ProjectID: &projectID,
		BuildName: optString(run.BuildName),
		Name:      optString(run.Name),
	}
	return fetch(ctx, c, "create_build_run", func(ctx context.Context) (*codeenginev2.BuildRun, *core.DetailedResponse, error) {
		return c.service.CreateBuildRunWithContext(ctx, opts)
	})
}

func (c *Client) ListSecrets(ctx context.Context, projectID string, limit int) ([]Resource, error) {
	p, err := c.service.NewSecretsPager(&codeenginev2.ListSecretsOptions{
		ProjectID: &projectID,
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.Secret](ctx, c, "list_secrets", p, err)
}

func (c *Client) GetSecret(ctx context.Context, projectID, name string) (Resource, error) {
	return fetch(ctx, c, "get_secret", func(ctx context.Context) (*codeenginev2.Secret, *core.DetailedResponse, error) {
		return c.service.GetSecretWithContext(ctx, &codeenginev2.GetSecretOptions{ProjectID: &projectID, Name: &name})
	})
}
