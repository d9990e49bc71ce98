package mcp

import (
	"errors"
	"fmt"

	"cemcp/internal/config"
)

type Registry interface {
	Add(spec ToolSpec) error
	List() []ToolInfo
	Get(name string) (ToolSpec, bool)
}

type registeredTool struct {
	spec      ToolSpec
	schema    map[string]any
	validator *argValidator
}

// ToolRegistry keeps tools in registration order.
type ToolRegistry struct {
	cfg   *config.Config
	order []string
	tools map[string]registeredTool
}

func NewRegistry(cfg *config.Config) *ToolRegistry {
	return &ToolRegistry{cfg: cfg, tools: map[string]registeredTool{}}
}

func (r *ToolRegistry) Add(spec ToolSpec) error {
	if spec.Name == "" {
		return errors.New("tool name required")
	}
	if spec.Handler == nil {
		return fmt.Errorf("tool %s: handler required", spec.Name)
	}
	if _, exists := r.tools[spec.Name]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	if err := checkParams(spec.Name, spec.Params); err != nil {
		return err
	}
	if !r.allowedBySafety(spec) {
		return nil
	}
	validator, err := newArgValidator(spec.Name, spec.Params)
	if err != nil {
		return err
	}
	spec.Params = append([]Param(nil), spec.Params...)
	r.tools[spec.Name] = registeredTool{spec: spec, schema: BuildSchema(spec.Params), validator: validator}
	r.order = append(r.order, spec.Name)
	return nil
}

func (r *ToolRegistry) List() []ToolInfo {
	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		infos = append(infos, ToolInfo{Name: name, Description: tool.spec.Description, InputSchema: tool.schema})
	}
	return infos
}

func (r *ToolRegistry) Get(name string) (ToolSpec, bool) {
	tool, ok := r.tools[name]
	return tool.spec, ok
}

func (r *ToolRegistry) lookup(name string) (registeredTool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *ToolRegistry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].spec)
	}
	return specs
}

func (r *ToolRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *ToolRegistry) allowedBySafety(spec ToolSpec) bool {
	if r.cfg == nil || !r.cfg.ReadOnly {
		return true
	}
	return spec.Safety == SafetyReadOnly
}
