package codeengine

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ce "cemcp/internal/codeengine"
	"cemcp/internal/config"
	"cemcp/internal/mcp"
	"cemcp/internal/redact"
)

var catalog = []string{
	"list_projects",
	"find_project_by_name",
	"list_applications",
	"get_application",
	"create_application",
	"update_application",
	"create_app_from_source",
	"list_app_revisions",
	"get_app_revision",
	"create_build",
	"create_build_run",
	"get_build_run",
	"list_builds",
	"list_build_runs",
	"list_jobs",
	"get_job",
	"list_job_runs",
	"get_job_run",
	"list_domain_mappings",
	"get_domain_mapping",
	"list_secrets",
	"get_secret",
}

type harness struct {
	gateway *mcp.Gateway
	fake    *ce.Fake
	reg     *mcp.ToolRegistry
}

func newHarness(t *testing.T, readOnly bool) harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ReadOnly = readOnly
	fake := ce.NewFake()
	ctx := mcp.ToolsetContext{Config: &cfg, Client: fake, Redactor: redact.New()}
	reg := mcp.NewRegistry(&cfg)
	toolset := New()
	require.NoError(t, toolset.Init(ctx))
	require.NoError(t, toolset.Register(reg))
	return harness{gateway: mcp.NewGateway(reg, ctx), fake: fake, reg: reg}
}

func (h harness) call(t *testing.T, name string, args map[string]any) mcp.ToolCallResult {
	t.Helper()
	return h.gateway.CallTool(context.Background(), name, args)
}

// splitOutput separates the rendered summary from the trailing JSON. Summaries
// contain blank lines; the indented JSON never does.
func splitOutput(t *testing.T, text string) (string, string) {
	t.Helper()
	idx := strings.LastIndex(text, "\n\n")
	require.True(t, idx >= 0, "expected summary and payload in %q", text)
	return text[:idx], text[idx+2:]
}

func TestToolsetMetadata(t *testing.T) {
	toolset := New()
	assert.Equal(t, "codeengine", toolset.ID())
	assert.NotEmpty(t, toolset.Version())
	factory, ok := mcp.ToolsetFactoryFor("codeengine")
	require.True(t, ok, "toolset registers itself on import")
	assert.Equal(t, "codeengine", factory().ID())
}

func TestHandlersUseRequestClient(t *testing.T) {
	cfg := config.DefaultConfig()
	reg := mcp.NewRegistry(&cfg)
	toolset := New()
	require.NoError(t, toolset.Init(mcp.ToolsetContext{Config: &cfg}))
	require.NoError(t, toolset.Register(reg))

	fake := ce.NewFake()
	fake.Projects = []ce.Resource{{"id": "p1", "name": "alpha"}}
	gateway := mcp.NewGateway(reg, mcp.ToolsetContext{Config: &cfg, Client: fake, Redactor: redact.New()})
	res := gateway.CallTool(context.Background(), "list_projects", map[string]any{})
	require.False(t, res.Failed, res.Text)
	assert.Equal(t, []string{"list_projects"}, fake.Calls)
}

func TestCatalogOrderAndUniqueness(t *testing.T) {
	h := newHarness(t, false)
	tools := h.gateway.ListTools()
	names := make([]string, 0, len(tools))
	seen := map[string]bool{}
	for _, tool := range tools {
		require.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)
	}
	assert.Equal(t, catalog, names)
	again := h.gateway.ListTools()
	for i := range tools {
		assert.Equal(t, tools[i].Name, again[i].Name)
	}
	for _, spec := range h.reg.Specs() {
		assert.Equal(t, "codeengine", spec.ToolsetID)
	}
}

func TestLimitParameterBounds(t *testing.T) {
	h := newHarness(t, false)
	for _, tool := range h.gateway.ListTools() {
		props := tool.InputSchema["properties"].(map[string]any)
		raw, ok := props["limit"]
		if !ok {
			continue
		}
		limit := raw.(map[string]any)
		assert.Equal(t, "integer", limit["type"], tool.Name)
		assert.Equal(t, 100, limit["default"], tool.Name)
		assert.Equal(t, 1, limit["minimum"], tool.Name)
		assert.Equal(t, 200, limit["maximum"], tool.Name)
	}
}

func TestReadOnlyCatalog(t *testing.T) {
	h := newHarness(t, true)
	names := h.reg.Names()
	assert.Len(t, names, 17)
	for _, name := range []string{"create_application", "update_application", "create_app_from_source", "create_build", "create_build_run"} {
		assert.NotContains(t, names, name)
	}
	res := h.call(t, "create_application", map[string]any{"project_id": "p", "app_name": "a", "image_reference": "img"})
	assert.True(t, res.Failed)
	assert.Equal(t, "Unknown tool: create_application", res.Text)
}

func TestListProjects(t *testing.T) {
	h := newHarness(t, false)
	h.fake.Projects = []ce.Resource{{"id": "project1", "name": "test-project"}}
	res := h.call(t, "list_projects", map[string]any{})
	require.False(t, res.Failed, res.Text)
	summary, payload := splitOutput(t, res.Text)
	assert.Contains(t, summary, "Found 1")
	assert.Contains(t, summary, "test-project")
	var data []map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &data))
	assert.Len(t, data, 1)
	assert.Equal(t, 100, h.fake.LastLimit)
}

func TestListProjectsEmptyAndFiltered(t *testing.T) {
	h := newHarness(t, false)
	res := h.call(t, "list_projects", map[string]any{"limit": 5})
	require.False(t, res.Failed, res.Text)
	summary, payload := splitOutput(t, res.Text)
	assert.Equal(t, "No projects found.", summary)
	assert.Equal(t, "[]", payload)
	assert.Equal(t, 5, h.fake.LastLimit)

	h.fake.Projects = []ce.Resource{
		{"id": "p1", "name": "a", "resource_group_id": "rg1"},
		{"id": "p2", "name": "b", "resource_group_id": "rg2"},
	}
	res = h.call(t, "list_projects", map[string]any{"resource_group_id": "rg2"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "Found 1")
	assert.Contains(t, res.Text, "**b** (p2)")
}

func TestFindProjectByName(t *testing.T) {
	h := newHarness(t, false)
	h.fake.Projects = []ce.Resource{{"id": "p1", "name": "alpha"}, {"id": "p2", "name": "beta"}}
	res := h.call(t, "find_project_by_name", map[string]any{"project_name": "beta"})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Found project **beta** (p2)"), res.Text)

	res = h.call(t, "find_project_by_name", map[string]any{"project_name": "gamma"})
	assert.False(t, res.Failed)
	assert.Equal(t, "No project found with name 'gamma'.", res.Text)
}

func TestValidationPrecedesDispatch(t *testing.T) {
	h := newHarness(t, false)
	res := h.call(t, "get_application", map[string]any{"project_id": "p1"})
	assert.True(t, res.Failed)
	assert.Equal(t, "Error: missing required parameter(s): app_name", res.Text)

	res = h.call(t, "list_applications", map[string]any{"project_id": "p1", "limit": 500})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "Error: invalid arguments")
	assert.Empty(t, h.fake.Calls)
}

func TestScaleBoundsRejectedBeforeDispatch(t *testing.T) {
	h := newHarness(t, false)
	res := h.call(t, "update_application", map[string]any{"project_id": "p1", "app_name": "web", "scale_max_instances": 1e20})
	assert.True(t, res.Failed)
	assert.True(t, strings.HasPrefix(res.Text, "Error: invalid arguments"), res.Text)

	res = h.call(t, "create_application", map[string]any{
		"project_id": "p1", "app_name": "web", "image_reference": "icr.io/codeengine/helloworld",
		"scale_min_instances": 251,
	})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "scale_min_instances")
	assert.Empty(t, h.fake.Calls)
}

func TestApplicationTools(t *testing.T) {
	h := newHarness(t, false)
	res := h.call(t, "list_applications", map[string]any{"project_id": "p1"})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "No applications found in project p1."), res.Text)

	res = h.call(t, "create_application", map[string]any{"project_id": "p1", "app_name": "web", "image_reference": "icr.io/codeengine/helloworld"})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Created application **web**"), res.Text)
	created := h.fake.Apps["p1"][0]
	assert.Equal(t, float64(8080), created["image_port"])
	assert.Equal(t, float64(0), created["scale_min_instances"])
	assert.Equal(t, float64(10), created["scale_max_instances"])
	assert.Equal(t, "1", created["scale_cpu_limit"])
	assert.Equal(t, "4G", created["scale_memory_limit"])
	assert.Equal(t, "local_public", created["managed_domain_mappings"])

	res = h.call(t, "update_application", map[string]any{"project_id": "p1", "app_name": "web", "scale_max_instances": 3})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Updated application **web**"), res.Text)
	require.NotNil(t, h.fake.LastPatch.ScaleMaxInstances)
	assert.Equal(t, 3, *h.fake.LastPatch.ScaleMaxInstances)
	assert.Nil(t, h.fake.LastPatch.ImageReference)
	assert.Nil(t, h.fake.LastPatch.ScaleMinInstances)

	res = h.call(t, "update_application", map[string]any{"project_id": "p1", "app_name": "web"})
	assert.True(t, res.Failed)
	assert.True(t, strings.HasPrefix(res.Text, "API error: update_application: no fields to update"), res.Text)

	res = h.call(t, "get_application", map[string]any{"project_id": "p1", "app_name": "web"})
	require.False(t, res.Failed, res.Text)
	_, payload := splitOutput(t, res.Text)
	var app map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &app))
	assert.Equal(t, "web", app["name"])

	res = h.call(t, "get_application", map[string]any{"project_id": "p1", "app_name": "nope"})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "API error: get_application: application 'nope' not found")
}

func TestCreateAppFromSourceDefaults(t *testing.T) {
	h := newHarness(t, false)
	res := h.call(t, "create_app_from_source", map[string]any{"project_id": "p1", "app_name": "svc", "image_name": "team/svc"})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Deployed application **svc** from source"), res.Text)
	d := h.fake.LastDeployment
	assert.Equal(t, ".", d.SourcePath)
	assert.Equal(t, 8080, d.Port)
	assert.Equal(t, 1, d.MinScale)
	assert.Equal(t, 10, d.MaxScale)
	assert.Equal(t, "0.5", d.CPULimit)
	assert.Equal(t, "4G", d.MemoryLimit)
	assert.Equal(t, "team/svc", d.ImageName)

	res = h.call(t, "create_app_from_source", map[string]any{"project_id": "p1", "app_name": "svc", "max_scale": 101})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "max_scale")
}

func TestRevisionsAndDomainMappings(t *testing.T) {
	h := newHarness(t, false)
	h.fake.Revisions["p1/web"] = []ce.Resource{{"name": "web-00001", "status": "ready"}}
	h.fake.DomainMappings["p1"] = []ce.Resource{{"name": "www.example.com", "component": map[string]any{"name": "web"}}}

	res := h.call(t, "list_app_revisions", map[string]any{"project_id": "p1", "app_name": "web"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "web-00001")

	res = h.call(t, "get_app_revision", map[string]any{"project_id": "p1", "app_name": "web", "revision_name": "web-00001"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "web-00001")

	res = h.call(t, "list_app_revisions", map[string]any{"project_id": "p1", "app_name": "other"})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "No revisions found for application other"), res.Text)

	res = h.call(t, "list_domain_mappings", map[string]any{"project_id": "p1"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "Component: web")

	res = h.call(t, "get_domain_mapping", map[string]any{"project_id": "p1", "domain_name": "www.example.com"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "www.example.com")
}

func TestJobTools(t *testing.T) {
	h := newHarness(t, false)
	h.fake.Jobs["p1"] = []ce.Resource{{"name": "nightly", "image_reference": "icr.io/jobs/nightly"}}
	h.fake.JobRuns["p1"] = []ce.Resource{
		{"name": "nightly-1", "job_name": "nightly", "status": "completed"},
		{"name": "adhoc-1", "job_name": "adhoc", "status": "failed"},
	}

	res := h.call(t, "list_jobs", map[string]any{"project_id": "p1"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "nightly")

	res = h.call(t, "get_job", map[string]any{"project_id": "p1", "job_name": "nightly"})
	require.False(t, res.Failed, res.Text)

	res = h.call(t, "list_job_runs", map[string]any{"project_id": "p1", "job_name": "nightly"})
	require.False(t, res.Failed, res.Text)
	_, payload := splitOutput(t, res.Text)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "nightly-1", runs[0]["name"])

	res = h.call(t, "get_job_run", map[string]any{"project_id": "p1", "job_run_name": "adhoc-1"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "adhoc-1")
}

func TestBuildTools(t *testing.T) {
	h := newHarness(t, false)
	res := h.call(t, "create_build_run", map[string]any{"project_id": "p1", "build_name": "api"})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "build 'api' not found")

	res = h.call(t, "create_build", map[string]any{
		"project_id":    "p1",
		"build_name":    "api",
		"output_image":  "private.us.icr.io/team/api",
		"output_secret": "icr-push",
		"source_url":    "https://github.com/example/api",
	})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Created build **api**"), res.Text)
	build := h.fake.Builds["p1"][0]
	assert.Equal(t, "main", build["source_revision"])
	assert.Equal(t, "dockerfile", build["strategy_type"])
	assert.Equal(t, "./Dockerfile", build["strategy_spec_file"])
	assert.Equal(t, "medium", build["strategy_size"])

	res = h.call(t, "create_build_run", map[string]any{"project_id": "p1", "build_name": "api", "name": "api-run-a"})
	require.False(t, res.Failed, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, "Created build run **api-run-a**"), res.Text)

	res = h.call(t, "list_builds", map[string]any{"project_id": "p1"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "Found 1")

	res = h.call(t, "list_build_runs", map[string]any{"project_id": "p1", "build_name": "api"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "api-run-a")

	res = h.call(t, "get_build_run", map[string]any{"project_id": "p1", "build_run_name": "api-run-a"})
	require.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "api-run-a")
}

func TestSecretToolsMaskValues(t *testing.T) {
	h := newHarness(t, false)
	h.fake.Secrets["p1"] = []ce.Resource{{
		"name":   "db-creds",
		"format": "generic",
		"data":   map[string]any{"username": "admin", "password": "hunter2"},
	}}

	res := h.call(t, "get_secret", map[string]any{"project_id": "p1", "secret_name": "db-creds"})
	require.False(t, res.Failed, res.Text)
	summary, payload := splitOutput(t, res.Text)
	assert.Contains(t, summary, "password")
	assert.Contains(t, summary, "username")
	var secret map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &secret))
	data := secret["data"].(map[string]any)
	assert.Equal(t, redact.MaskToken, data["username"])
	assert.Equal(t, redact.MaskToken, data["password"])
	assert.Equal(t, "generic", secret["format"])
	assert.NotContains(t, res.Text, "hunter2")

	res = h.call(t, "list_secrets", map[string]any{"project_id": "p1"})
	require.False(t, res.Failed, res.Text)
	assert.NotContains(t, res.Text, "hunter2")
	assert.Contains(t, res.Text, redact.MaskToken)
}

func TestAPIErrorThenRecovery(t *testing.T) {
	h := newHarness(t, false)
	h.fake.Jobs["p1"] = []ce.Resource{{"name": "nightly"}}
	h.fake.FailNext("list_jobs", &ce.Error{Kind: ce.KindRateLimited, Op: "list_jobs", StatusCode: 429, Message: "too many requests"})

	res := h.call(t, "list_jobs", map[string]any{"project_id": "p1"})
	assert.True(t, res.Failed)
	assert.True(t, strings.HasPrefix(res.Text, "API error: list_jobs: too many requests\nHint: "), res.Text)

	res = h.call(t, "list_jobs", map[string]any{"project_id": "p1"})
	assert.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "nightly")
}

func TestNotInitialized(t *testing.T) {
	cfg := config.DefaultConfig()
	reg := mcp.NewRegistry(&cfg)
	toolset := New()
	require.NoError(t, toolset.Init(mcp.ToolsetContext{Config: &cfg}))
	require.NoError(t, toolset.Register(reg))
	gw := mcp.NewGateway(reg, mcp.ToolContext{Config: &cfg})
	assert.Len(t, gw.ListTools(), len(catalog))
	res := gw.CallTool(context.Background(), "list_projects", nil)
	assert.True(t, res.Failed)
	assert.Equal(t, mcp.NotInitializedMessage, res.Text)
}
