package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cemcp/internal/audit"
	"cemcp/internal/codeengine"
	"cemcp/internal/config"
	"cemcp/internal/redact"
)

type gatewayFixture struct {
	gateway *Gateway
	fake    *codeengine.Fake
	audit   *bytes.Buffer
}

func newGatewayFixture(t *testing.T, cfg *config.Config, specs ...ToolSpec) gatewayFixture {
	t.Helper()
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	reg := NewRegistry(cfg)
	for _, spec := range specs {
		require.NoError(t, reg.Add(spec))
	}
	fake := codeengine.NewFake()
	buf := &bytes.Buffer{}
	gw := NewGateway(reg, ToolContext{
		Config:   cfg,
		Client:   fake,
		Redactor: redact.New("super-secret-key"),
		Audit:    audit.NewLogger(buf),
	})
	return gatewayFixture{gateway: gw, fake: fake, audit: buf}
}

var projectParam = Param{Name: "project_id", Type: TypeString, Required: true}

func listProjectsSpec() ToolSpec {
	return ToolSpec{
		Name:   "list_projects",
		Safety: SafetyReadOnly,
		Params: []Param{{Name: "limit", Type: TypeInteger, Default: 100, Minimum: Int(1)}},
		Handler: Handle(func(ctx context.Context, req ToolRequest, args struct {
			Limit int `json:"limit"`
		}) (ToolResult, error) {
			projects, err := req.Context.Client.ListProjects(ctx, args.Limit, "")
			if err != nil {
				return ToolResult{}, err
			}
			names := make([]string, 0, len(projects))
			for _, p := range projects {
				names = append(names, p["name"].(string))
			}
			return ToolResult{Summary: "Projects: " + strings.Join(names, ", "), Data: projects}, nil
		}),
	}
}

func getSecretSpec() ToolSpec {
	return ToolSpec{
		Name:      "get_secret",
		Safety:    SafetyReadOnly,
		Sensitive: true,
		Params:    []Param{projectParam, {Name: "secret_name", Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, req ToolRequest) (ToolResult, error) {
			secret, err := req.Context.Client.GetSecret(ctx, req.Arguments["project_id"].(string), req.Arguments["secret_name"].(string))
			if err != nil {
				return ToolResult{}, err
			}
			return ToolResult{Summary: "Secret", Data: secret}, nil
		},
	}
}

func auditEvents(t *testing.T, buf *bytes.Buffer) []audit.Event {
	t.Helper()
	var events []audit.Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var event audit.Event
		require.NoError(t, json.Unmarshal([]byte(line), &event))
		events = append(events, event)
	}
	return events
}

func TestGatewayNotInitialized(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Add(listProjectsSpec()))
	gw := NewGateway(reg, ToolContext{})
	res := gw.CallTool(context.Background(), "list_projects", nil)
	assert.True(t, res.Failed)
	assert.Equal(t, NotInitializedMessage, res.Text)
	assert.NotEmpty(t, res.CallID)
}

func TestGatewayUnknownTool(t *testing.T) {
	fx := newGatewayFixture(t, nil, listProjectsSpec())
	res := fx.gateway.CallTool(context.Background(), "delete_everything", map[string]any{})
	assert.True(t, res.Failed)
	assert.Equal(t, "Unknown tool: delete_everything", res.Text)
	assert.Empty(t, fx.fake.Calls)
}

func TestGatewayValidatesBeforeDispatch(t *testing.T) {
	fx := newGatewayFixture(t, nil, getSecretSpec())
	res := fx.gateway.CallTool(context.Background(), "get_secret", map[string]any{"project_id": "p1"})
	assert.True(t, res.Failed)
	assert.Equal(t, "Error: missing required parameter(s): secret_name", res.Text)
	assert.Equal(t, 0, fx.fake.CallCount("get_secret"))

	res = fx.gateway.CallTool(context.Background(), "get_secret", map[string]any{"project_id": "p1", "secret_name": "s", "extra": 1})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "Error: invalid arguments: ")
	assert.Equal(t, 0, fx.fake.CallCount("get_secret"))
}

func TestGatewayFormatsSummaryAndData(t *testing.T) {
	fx := newGatewayFixture(t, nil, listProjectsSpec())
	fx.fake.Projects = []codeengine.Resource{{"id": "project1", "name": "test-project"}}
	res := fx.gateway.CallTool(context.Background(), "list_projects", nil)
	require.False(t, res.Failed, res.Text)
	summary, payload, ok := strings.Cut(res.Text, "\n\n")
	require.True(t, ok)
	assert.Equal(t, "Projects: test-project", summary)
	var data []map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &data))
	require.Len(t, data, 1)
	assert.Equal(t, "project1", data[0]["id"])
	assert.Equal(t, 100, fx.fake.LastLimit)
}

func TestGatewayMasksSensitiveData(t *testing.T) {
	fx := newGatewayFixture(t, nil, getSecretSpec())
	fx.fake.Secrets["p1"] = []codeengine.Resource{{
		"name":   "db-creds",
		"format": "generic",
		"data":   map[string]any{"username": "admin", "password": "hunter2"},
	}}
	res := fx.gateway.CallTool(context.Background(), "get_secret", map[string]any{"project_id": "p1", "secret_name": "db-creds"})
	require.False(t, res.Failed, res.Text)
	assert.NotContains(t, res.Text, "hunter2")
	assert.NotContains(t, res.Text, "admin\"")
	assert.Contains(t, res.Text, "username")
	assert.Contains(t, res.Text, redact.MaskToken)
	stored := fx.fake.Secrets["p1"][0]["data"].(map[string]any)
	assert.Equal(t, "hunter2", stored["password"], "source record must stay untouched")
}

func TestGatewayAPIErrorThenRecovery(t *testing.T) {
	fx := newGatewayFixture(t, nil, listProjectsSpec())
	fx.fake.Projects = []codeengine.Resource{{"id": "p1", "name": "alpha"}}
	fx.fake.FailNext("list_projects", &codeengine.Error{
		Kind:       codeengine.KindUnauthenticated,
		Op:         "list_projects",
		StatusCode: 401,
		Message:    "token super-secret-key rejected",
	})
	res := fx.gateway.CallTool(context.Background(), "list_projects", nil)
	assert.True(t, res.Failed)
	assert.True(t, strings.HasPrefix(res.Text, "API error: list_projects: token "), res.Text)
	assert.NotContains(t, res.Text, "super-secret-key")

	res = fx.gateway.CallTool(context.Background(), "list_projects", nil)
	assert.False(t, res.Failed, res.Text)
	assert.Contains(t, res.Text, "alpha")

	events := auditEvents(t, fx.audit)
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[0].Outcome)
	assert.Equal(t, "unauthenticated", events[0].ErrorKind)
	assert.NotContains(t, events[0].Error, "super-secret-key")
	assert.Equal(t, "success", events[1].Outcome)
	assert.NotEqual(t, events[0].CallID, events[1].CallID)
}

func TestGatewayRecoversPanics(t *testing.T) {
	spec := ToolSpec{Name: "explode", Safety: SafetyReadOnly, Handler: func(context.Context, ToolRequest) (ToolResult, error) {
		panic("kaboom")
	}}
	fx := newGatewayFixture(t, nil, spec)
	res := fx.gateway.CallTool(context.Background(), "explode", nil)
	assert.True(t, res.Failed)
	assert.Equal(t, "Unexpected error: tool panicked: kaboom", res.Text)

	events := auditEvents(t, fx.audit)
	require.Len(t, events, 1)
	assert.Equal(t, "internal", events[0].ErrorKind)
}

func TestGatewayAppliesToolTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timeouts.DefaultSeconds = 1
	spec := ToolSpec{Name: "slow", Safety: SafetyReadOnly, Handler: func(ctx context.Context, _ ToolRequest) (ToolResult, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Errorf("expected a deadline")
		}
		if time.Until(deadline) > time.Second {
			t.Errorf("deadline too far: %v", deadline)
		}
		return ToolResult{}, context.DeadlineExceeded
	}}
	fx := newGatewayFixture(t, &cfg, spec)
	res := fx.gateway.CallTool(context.Background(), "slow", nil)
	assert.True(t, res.Failed)
	assert.Equal(t, "Unexpected error: context deadline exceeded", res.Text)
	events := auditEvents(t, fx.audit)
	require.Len(t, events, 1)
	assert.Equal(t, "timeout", events[0].ErrorKind)
}

func TestGatewayAuditRecordsProject(t *testing.T) {
	fx := newGatewayFixture(t, nil, getSecretSpec())
	res := fx.gateway.CallTool(context.Background(), "get_secret", map[string]any{"project_id": "p9", "secret_name": "missing"})
	assert.True(t, res.Failed)
	assert.Contains(t, res.Text, "secret 'missing' not found")

	events := auditEvents(t, fx.audit)
	require.Len(t, events, 1)
	assert.Equal(t, "get_secret", events[0].Tool)
	assert.Equal(t, "p9", events[0].ProjectID)
	assert.Equal(t, "not_found", events[0].ErrorKind)
	assert.Equal(t, res.CallID, events[0].CallID)
}

func TestGatewaySummaryOnly(t *testing.T) {
	spec := ToolSpec{Name: "hello", Safety: SafetyReadOnly, Handler: func(context.Context, ToolRequest) (ToolResult, error) {
		return ToolResult{Summary: "No projects found."}, nil
	}}
	fx := newGatewayFixture(t, nil, spec)
	res := fx.gateway.CallTool(context.Background(), "hello", nil)
	assert.False(t, res.Failed)
	assert.Equal(t, "No projects found.", res.Text)
}

func TestGatewayListTools(t *testing.T) {
	fx := newGatewayFixture(t, nil, listProjectsSpec(), getSecretSpec())
	tools := fx.gateway.ListTools()
	require.Len(t, tools, 2)
	assert.Equal(t, "list_projects", tools[0].Name)
	assert.Equal(t, "get_secret", tools[1].Name)
	var nilGateway *Gateway
	assert.Nil(t, nilGateway.ListTools())
}

func TestGatewayMetricsTolerateMissingInstruments(t *testing.T) {
	var m gatewayMetrics
	m.record(context.Background(), "list_projects", audit.OutcomeSuccess, time.Millisecond)
	m = newGatewayMetrics()
	m.record(context.Background(), "list_projects", audit.OutcomeError, 2*time.Millisecond)
}
