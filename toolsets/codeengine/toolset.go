package codeengine

import (
	"cemcp/internal/mcp"
)

const toolsetID = "codeengine"

// Toolset holds no state. Handlers read the client from each request.
type Toolset struct{}

func New() *Toolset {
	return &Toolset{}
}

func init() {
	mcp.MustRegisterToolset(toolsetID, func() mcp.Toolset {
		return New()
	})
}

func (t *Toolset) ID() string {
	return toolsetID
}

func (t *Toolset) Version() string {
	return "0.1.0"
}

// Init accepts any context. A missing client is reported per call by the
// gateway, so the catalog is still listed without credentials.
func (t *Toolset) Init(mcp.ToolsetContext) error {
	return nil
}

func (t *Toolset) Register(reg mcp.Registry) error {
	for _, tool := range t.tools() {
		tool.ToolsetID = t.ID()
		if err := reg.Add(tool); err != nil {
			return err
		}
	}
	return nil
}

func (t *Toolset) tools() []mcp.ToolSpec {
	return []mcp.ToolSpec{
		{
			Name:        "list_projects",
			Description: "List all IBM Code Engine projects in your account",
			Params:      paramsListProjects(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListProjects),
		},
		{
			Name:        "find_project_by_name",
			Description: "Find a Code Engine project by its exact name and return its ID",
			Params:      paramsFindProject(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleFindProject),
		},
		{
			Name:        "list_applications",
			Description: "List applications in a specific Code Engine project",
			Params:      paramsProjectList("applications"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListApplications),
		},
		{
			Name:        "get_application",
			Description: "Get detailed information about a specific application",
			Params:      paramsProjectGet("app_name", "Name of the application"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleGetApplication),
		},
		{
			Name:        "create_application",
			Description: "Create an application from a container image",
			Params:      paramsCreateApplication(),
			Safety:      mcp.SafetyWrite,
			Handler:     mcp.Handle(t.handleCreateApplication),
		},
		{
			Name:        "update_application",
			Description: "Update the image or scaling of an existing application",
			Params:      paramsUpdateApplication(),
			Safety:      mcp.SafetyWrite,
			Handler:     mcp.Handle(t.handleUpdateApplication),
		},
		{
			Name:        "create_app_from_source",
			Description: "Build a local directory with its Dockerfile and deploy it as an application",
			Params:      paramsCreateAppFromSource(),
			Safety:      mcp.SafetyWrite,
			Handler:     mcp.Handle(t.handleCreateAppFromSource),
		},
		{
			Name:        "list_app_revisions",
			Description: "List revisions for a specific application",
			Params:      paramsListAppRevisions(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListAppRevisions),
		},
		{
			Name:        "get_app_revision",
			Description: "Get detailed information about a specific application revision",
			Params:      paramsGetAppRevision(),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleGetAppRevision),
		},
		{
			Name:        "create_build",
			Description: "Create a build configuration that turns a git repository into a container image",
			Params:      paramsCreateBuild(),
			Safety:      mcp.SafetyWrite,
			Handler:     mcp.Handle(t.handleCreateBuild),
		},
		{
			Name:        "create_build_run",
			Description: "Start a run of an existing build",
			Params:      paramsCreateBuildRun(),
			Safety:      mcp.SafetyWrite,
			Handler:     mcp.Handle(t.handleCreateBuildRun),
		},
		{
			Name:        "get_build_run",
			Description: "Get detailed information about a specific build run",
			Params:      paramsProjectGet("build_run_name", "Name of the build run"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleGetBuildRun),
		},
		{
			Name:        "list_builds",
			Description: "List builds in a specific Code Engine project",
			Params:      paramsProjectList("builds"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListBuilds),
		},
		{
			Name:        "list_build_runs",
			Description: "List build runs in a project, optionally for one build",
			Params:      paramsFilteredList("build_name", "Only return runs of this build", "build runs"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListBuildRuns),
		},
		{
			Name:        "list_jobs",
			Description: "List jobs in a specific Code Engine project",
			Params:      paramsProjectList("jobs"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListJobs),
		},
		{
			Name:        "get_job",
			Description: "Get detailed information about a specific job",
			Params:      paramsProjectGet("job_name", "Name of the job"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleGetJob),
		},
		{
			Name:        "list_job_runs",
			Description: "List job runs in a project, optionally for one job",
			Params:      paramsFilteredList("job_name", "Only return runs of this job", "job runs"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListJobRuns),
		},
		{
			Name:        "get_job_run",
			Description: "Get detailed information about a specific job run",
			Params:      paramsProjectGet("job_run_name", "Name of the job run"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleGetJobRun),
		},
		{
			Name:        "list_domain_mappings",
			Description: "List domain mappings in a specific Code Engine project",
			Params:      paramsProjectList("domain mappings"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleListDomainMappings),
		},
		{
			Name:        "get_domain_mapping",
			Description: "Get detailed information about a specific domain mapping",
			Params:      paramsProjectGet("domain_name", "Name of the domain mapping"),
			Safety:      mcp.SafetyReadOnly,
			Handler:     mcp.Handle(t.handleGetDomainMapping),
		},
		{
			Name:        "list_secrets",
			Description: "List secrets in a specific Code Engine project",
			Params:      paramsProjectList("secrets"),
			Safety:      mcp.SafetyReadOnly,
			Sensitive:   true,
			Handler:     mcp.Handle(t.handleListSecrets),
		},
		{
			Name:        "get_secret",
			Description: "Get detailed information about a specific secret. Secret values are masked.",
			Params:      paramsProjectGet("secret_name", "Name of the secret"),
			Safety:      mcp.SafetyReadOnly,
			Sensitive:   true,
			Handler:     mcp.Handle(t.handleGetSecret),
		},
	}
}
