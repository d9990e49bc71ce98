package mcp

import (
	"context"
	"testing"
	"time"

	"cemcp/internal/config"
)

func TestToolTimeout(t *testing.T) {
	cfg := &config.Config{Timeouts: config.TimeoutConfig{
		DefaultSeconds: 30,
		MaxSeconds:     120,
		PerTool:        map[string]int{"create_app_from_source": 600, "list_projects": 5},
	}}
	tests := []struct {
		tool string
		want time.Duration
	}{
		{"get_application", 30 * time.Second},
		{"list_projects", 5 * time.Second},
		{"create_app_from_source", 120 * time.Second},
	}
	for _, tc := range tests {
		if got := toolTimeout(cfg, tc.tool); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.tool, tc.want, got)
		}
	}
	if got := toolTimeout(nil, "list_projects"); got != 0 {
		t.Fatalf("expected no timeout without config, got %v", got)
	}
	onlyMax := &config.Config{Timeouts: config.TimeoutConfig{MaxSeconds: 10}}
	if got := toolTimeout(onlyMax, "list_projects"); got != 10*time.Second {
		t.Fatalf("expected max to apply, got %v", got)
	}
	if got := toolTimeout(&config.Config{}, "list_projects"); got != 0 {
		t.Fatalf("expected zero timeout, got %v", got)
	}
}

func TestWithToolTimeout(t *testing.T) {
	ctx, cancel := withToolTimeout(context.Background(), &config.Config{}, "list_projects")
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("expected no deadline")
	}
	cfg := &config.Config{Timeouts: config.TimeoutConfig{DefaultSeconds: 3}}
	ctx, cancel = withToolTimeout(context.Background(), cfg, "list_projects")
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > 3*time.Second {
		t.Fatalf("expected a deadline within 3s, got %v %v", deadline, ok)
	}
}
