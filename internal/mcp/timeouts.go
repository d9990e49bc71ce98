package mcp

import (
	"context"
	"time"

	"cemcp/internal/config"
)

func withToolTimeout(ctx context.Context, cfg *config.Config, toolName string) (context.Context, context.CancelFunc) {
	timeout := toolTimeout(cfg, toolName)
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// toolTimeout picks the per-tool override, then the default, capped by the
// maximum. Zero means no deadline.
func toolTimeout(cfg *config.Config, toolName string) time.Duration {
	if cfg == nil {
		return 0
	}
	limits := cfg.Timeouts
	timeout := time.Duration(limits.DefaultSeconds) * time.Second
	if override, ok := limits.PerTool[toolName]; ok && override > 0 {
		timeout = time.Duration(override) * time.Second
	}
	max := time.Duration(limits.MaxSeconds) * time.Second
	if max > 0 && (timeout <= 0 || timeout > max) {
		timeout = max
	}
	if timeout < 0 {
		return 0
	}
	return timeout
}
