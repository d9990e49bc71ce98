package codeengine

import "context"

// API is the set of Code Engine operations exposed as tools.
type API interface {
	ListProjects(ctx context.Context, limit int, resourceGroupID string) ([]Resource, error)
	FindProjectByName(ctx context.Context, name, resourceGroupID string) (Resource, bool, error)

	ListApps(ctx context.Context, projectID string, limit int) ([]Resource, error)
	GetApp(ctx context.Context, projectID, name string) (Resource, error)
	CreateApp(ctx context.Context, projectID string, app AppPrototype) (Resource, error)
	UpdateApp(ctx context.Context, projectID, name string, patch AppPatch) (Resource, error)
	CreateAppFromSource(ctx context.Context, deployment SourceDeployment) (Resource, error)
	ListAppRevisions(ctx context.Context, projectID, appName string, limit int) ([]Resource, error)
	GetAppRevision(ctx context.Context, projectID, appName, revisionName string) (Resource, error)

	ListDomainMappings(ctx context.Context, projectID string, limit int) ([]Resource, error)
	GetDomainMapping(ctx context.Context, projectID, name string) (Resource, error)

	ListJobs(ctx context.Context, projectID string, limit int) ([]Resource, error)
	GetJob(ctx context.Context, projectID, name string) (Resource, error)
	ListJobRuns(ctx context.Context, projectID, jobName string, limit int) ([]Resource, error)
	GetJobRun(ctx context.Context, projectID, name string) (Resource, error)

	ListBuilds(ctx context.Context, projectID string, limit int) ([]Resource, error)
	CreateBuild(ctx context.Context, projectID string, build BuildPrototype) (Resource, error)
	ListBuildRuns(ctx context.Context, projectID, buildName string, limit int) ([]Resource, error)
	GetBuildRun(ctx context.Context, projectID, name string) (Resource, error)
	CreateBuildRun(ctx context.Context, projectID string, run BuildRunPrototype) (Resource, error)

	ListSecrets(ctx context.Context, projectID string, limit int) ([]Resource, error)
	GetSecret(ctx context.Context, projectID, name string) (Resource, error)
}

type AppPrototype struct {
	Name                  string `json:"name"`
	ImageReference        string `json:"image_reference"`
	ImagePort             int    `json:"image_port,omitempty"`
	ScaleMinInstances     int    `json:"scale_min_instances"`
	ScaleMaxInstances     int    `json:"scale_max_instances,omitempty"`
	ScaleCPULimit         string `json:"scale_cpu_limit,omitempty"`
	ScaleMemoryLimit      string `json:"scale_memory_limit,omitempty"`
	ManagedDomainMappings string `json:"managed_domain_mappings,omitempty"`
}

// AppPatch holds the fields of an application update. Nil fields are left
// untouched on the server.
type AppPatch struct {
	ImageReference    *string `json:"image_reference,omitempty"`
	ScaleMinInstances *int    `json:"scale_min_instances,omitempty"`
	ScaleMaxInstances *int    `json:"scale_max_instances,omitempty"`
	ScaleCPULimit     *string `json:"scale_cpu_limit,omitempty"`
	ScaleMemoryLimit  *string `json:"scale_memory_limit,omitempty"`
}

func (p AppPatch) Empty() bool {
	return p.ImageReference == nil && p.ScaleMinInstances == nil && p.ScaleMaxInstances == nil &&
		p.ScaleCPULimit == nil && p.ScaleMemoryLimit == nil
}

type BuildPrototype struct {
	Name             string `json:"name"`
	OutputImage      string `json:"output_image"`
	OutputSecret     string `json:"output_secret"`
	SourceURL        string `json:"source_url"`
	SourceRevision   string `json:"source_revision,omitempty"`
	SourceContextDir string `json:"source_context_dir,omitempty"`
	SourceType       string `json:"source_type,omitempty"`
	StrategyType     string `json:"strategy_type"`
	StrategySpecFile string `json:"strategy_spec_file,omitempty"`
	StrategySize     string `json:"strategy_size,omitempty"`
}

type BuildRunPrototype struct {
	BuildName string `json:"build_name"`
	Name      string `json:"name,omitempty"`
}

// SourceDeployment describes an application built from a local directory.
type SourceDeployment struct {
	ProjectID   string
	AppName     string
	SourcePath  string
	Port        int
	ImageName   string
	MinScale    int
	MaxScale    int
	CPULimit    string
	MemoryLimit string
}
