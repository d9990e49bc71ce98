package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"goa.design/clue/log"

	"cemcp/internal/audit"
	"cemcp/internal/codeengine"
	"cemcp/internal/config"
	cemcp "cemcp/internal/mcp"
	"cemcp/internal/redact"
	"cemcp/internal/runner"
)

const configEnv = "CEMCP_CONFIG"

type Options struct {
	ConfigPath string
	DropInDir  string
	EnvFile    string
	Region     string
	Endpoint   string
	Toolsets   []string
	ReadOnly   bool
	LogLevel   string
	Version    string
	Stderr     io.Writer
	// Transport defaults to stdio.
	Transport sdkmcp.Transport
}

type runtime struct {
	toolCtx cemcp.ToolContext
	reg     *cemcp.ToolRegistry
	gateway *cemcp.Gateway
}

// Run loads configuration, builds the tool catalog and serves it until ctx is
// done or the transport closes. A missing API key is fatal.
func Run(ctx context.Context, opts Options) error {
	errOut := opts.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	ctx = logContext(ctx, cfg, errOut)

	rt, err := buildRuntime(ctx, cfg, errOut)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "cemcp", Version: opts.Version}, nil)
	toolNames, err := cemcp.RegisterSDKTools(server, rt.gateway)
	if err != nil {
		return fmt.Errorf("tool registration failed: %w", err)
	}
	log.Print(ctx, log.KV{K: "msg", V: "serving tools"}, log.KV{K: "count", V: len(toolNames)},
		log.KV{K: "region", V: cfg.Region}, log.KV{K: "read_only", V: cfg.ReadOnly})

	reloadCh := make(chan os.Signal, 1)
	notifyReload(reloadCh)
	defer signal.Stop(reloadCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-reloadCh:
				toolNames = reload(ctx, opts, server, toolNames, errOut)
			}
		}
	}()

	transport := opts.Transport
	if transport == nil {
		transport = &sdkmcp.StdioTransport{}
	}
	if err := server.Run(ctx, transport); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// reload swaps the registered tools for a freshly built catalog. On failure
// the current tools stay in place.
func reload(ctx context.Context, opts Options, server *sdkmcp.Server, current []string, errOut io.Writer) []string {
	cfg, err := loadConfig(opts)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "config reload failed"})
		return current
	}
	rt, err := buildRuntime(ctx, cfg, errOut)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "reload init failed"})
		return current
	}
	if len(current) > 0 {
		server.RemoveTools(current...)
	}
	names, err := cemcp.RegisterSDKTools(server, rt.gateway)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "tool registration failed"})
		return nil
	}
	log.Print(ctx, log.KV{K: "msg", V: "configuration reloaded"}, log.KV{K: "count", V: len(names)})
	return names
}

// Tools returns the catalog the server would expose, without requiring
// credentials.
func Tools(opts Options) ([]cemcp.ToolInfo, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = ""
	reg := cemcp.NewRegistry(&cfg)
	if err := cemcp.LoadToolsets(cfg.Toolsets, cemcp.ToolsetContext{Config: &cfg, Registry: reg}, reg); err != nil {
		return nil, err
	}
	return reg.List(), nil
}

func loadConfig(opts Options) (config.Config, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return config.Config{}, fmt.Errorf("env file load failed: %w", err)
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = os.Getenv(configEnv)
	}
	overrides := config.Overrides{}
	if opts.Region != "" {
		overrides.Region = &opts.Region
	}
	if opts.Endpoint != "" {
		overrides.Endpoint = &opts.Endpoint
	}
	if len(opts.Toolsets) > 0 {
		overrides.Toolsets = &opts.Toolsets
	}
	if opts.ReadOnly {
		overrides.ReadOnly = &opts.ReadOnly
	}
	if opts.LogLevel != "" {
		overrides.LogLevel = &opts.LogLevel
	}
	cfg, err := config.Load(configPath, opts.DropInDir, overrides)
	if err != nil {
		return cfg, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func logContext(ctx context.Context, cfg config.Config, out io.Writer) context.Context {
	format := log.FormatJSON
	if strings.EqualFold(cfg.LogFormat, "terminal") {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithOutput(out), log.WithFormat(format))
	if strings.EqualFold(cfg.LogLevel, "debug") {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	return ctx
}

func buildRuntime(ctx context.Context, cfg config.Config, errOut io.Writer) (*runtime, error) {
	reg := cemcp.NewRegistry(&cfg)
	toolCtx := cemcp.ToolContext{
		Config:   &cfg,
		Redactor: redact.New(cfg.APIKey),
		Audit:    audit.NewLogger(errOut),
		Registry: reg,
	}
	client, err := codeengine.NewClient(codeengine.Options{
		APIKey:            cfg.APIKey,
		Region:            cfg.Region,
		Endpoint:          cfg.Endpoint,
		MaxResults:        cfg.MaxResults,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Runner:            runner.ExecRunner{},
		Deploy: codeengine.DeployOptions{
			CLIPath:  cfg.Deploy.CLIPath,
			Registry: cfg.Deploy.Registry,
			Timeout:  time.Duration(cfg.Deploy.TimeoutSeconds) * time.Second,
		},
	})
	if err != nil {
		// Tool calls report the missing client.
		log.Error(ctx, err, log.KV{K: "msg", V: "code engine client unavailable"})
	} else {
		toolCtx.Client = client
		log.Debug(ctx, log.KV{K: "msg", V: "code engine client ready"}, log.KV{K: "endpoint", V: client.Endpoint()})
	}

	if err := cemcp.LoadToolsets(cfg.Toolsets, toolCtx, reg); err != nil {
		return nil, err
	}
	return &runtime{toolCtx: toolCtx, reg: reg, gateway: cemcp.NewGateway(reg, toolCtx)}, nil
}
