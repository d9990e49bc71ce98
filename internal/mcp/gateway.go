package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"cemcp/internal/audit"
	"cemcp/internal/codeengine"
	"cemcp/internal/redact"
)

const tracerName = "cemcp/internal/mcp"

// Gateway validates tool calls, dispatches them and turns every outcome into
// a single text result. It never returns a protocol error.
type Gateway struct {
	reg     *ToolRegistry
	ctx     ToolContext
	tracer  trace.Tracer
	metrics gatewayMetrics
}

type gatewayMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// newGatewayMetrics uses the global meter provider, a no-op unless the host
// installs one.
func newGatewayMetrics() gatewayMetrics {
	meter := otel.Meter(tracerName)
	calls, err := meter.Int64Counter("cemcp.tool.calls",
		metric.WithDescription("Tool calls by tool and outcome"))
	if err != nil {
		otel.Handle(err)
	}
	duration, err := meter.Float64Histogram("cemcp.tool.duration",
		metric.WithDescription("Tool call latency"), metric.WithUnit("ms"))
	if err != nil {
		otel.Handle(err)
	}
	return gatewayMetrics{calls: calls, duration: duration}
}

func (m gatewayMetrics) record(ctx context.Context, tool, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("tool.name", tool), attribute.String("outcome", outcome))
	if m.calls != nil {
		m.calls.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
}

func NewGateway(reg *ToolRegistry, ctx ToolContext) *Gateway {
	tracer := ctx.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	if ctx.Registry == nil && reg != nil {
		ctx.Registry = reg
	}
	return &Gateway{reg: reg, ctx: ctx, tracer: tracer, metrics: newGatewayMetrics()}
}

func (g *Gateway) ListTools() []ToolInfo {
	if g == nil || g.reg == nil {
		return nil
	}
	return g.reg.List()
}

func (g *Gateway) CallTool(ctx context.Context, name string, args map[string]any) ToolCallResult {
	callID := uuid.NewString()
	start := time.Now()
	ctx, span := g.tracer.Start(ctx, "tool "+name, trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.call_id", callID),
	))
	defer span.End()

	spec, text, err := g.call(ctx, name, args)
	result := ToolCallResult{Text: text, Failed: err != nil, CallID: callID}
	outcome := audit.OutcomeSuccess
	if err != nil {
		outcome = audit.OutcomeError
		result.Text = g.ctx.Redactor.RedactString(errorText(err))
		span.SetStatus(codes.Error, classifyError(err).Code)
		log.Warn(ctx, log.KV{K: "msg", V: "tool call failed"}, log.KV{K: "tool", V: name},
			log.KV{K: "call_id", V: callID}, log.KV{K: "error", V: g.ctx.Redactor.RedactString(err.Error())})
	}
	g.metrics.record(ctx, name, outcome, time.Since(start))
	g.audit(spec, name, args, callID, start, err)
	return result
}

func (g *Gateway) call(ctx context.Context, name string, args map[string]any) (spec ToolSpec, text string, err error) {
	if g == nil || g.ctx.Client == nil {
		return spec, "", errNotInitialized
	}
	tool, ok := g.reg.lookup(name)
	if !ok {
		return spec, "", unknownToolError(name)
	}
	spec = tool.spec
	prepared, err := tool.validator.prepare(args)
	if err != nil {
		return spec, "", err
	}

	execCtx, cancel := withToolTimeout(ctx, g.ctx.Config, spec.Name)
	defer cancel()
	res, err := runHandler(execCtx, spec, ToolRequest{Name: spec.Name, Arguments: prepared, Context: g.ctx})
	if err != nil {
		return spec, "", err
	}
	if spec.Sensitive {
		res.Data = maskData(res.Data)
	}
	text, err = formatOutput(res)
	return spec, text, err
}

func runHandler(ctx context.Context, spec ToolSpec, req ToolRequest) (res ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return spec.Handler(ctx, req)
}

func formatOutput(res ToolResult) (string, error) {
	if res.Data == nil {
		return res.Summary, nil
	}
	data, err := json.MarshalIndent(res.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return res.Summary + "\n\n" + string(data), nil
}

func maskData(data any) any {
	switch v := data.(type) {
	case map[string]any:
		return redact.MaskSecretData(v)
	case []map[string]any:
		return redact.MaskSecretList(v)
	default:
		return data
	}
}

var errNotInitialized = errors.New(NotInitializedMessage)

type unknownToolError string

func (e unknownToolError) Error() string {
	return fmt.Sprintf(unknownToolFormat, string(e))
}

func (g *Gateway) audit(spec ToolSpec, name string, args map[string]any, callID string, start time.Time, err error) {
	if g == nil || g.ctx.Audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:  start.UTC(),
		CallID:     callID,
		Tool:       name,
		Toolset:    spec.ToolsetID,
		Outcome:    audit.OutcomeSuccess,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if projectID, ok := args["project_id"].(string); ok {
		event.ProjectID = projectID
	}
	if err != nil {
		event.Outcome = audit.OutcomeError
		event.ErrorKind = classifyError(err).Code
		event.Error = g.ctx.Redactor.RedactString(err.Error())
		var apiErr *codeengine.Error
		if errors.As(err, &apiErr) {
			event.ErrorKind = string(apiErr.Kind)
		}
	}
	g.ctx.Audit.Log(event)
}
