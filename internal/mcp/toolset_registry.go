package mcp

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Toolset contributes a group of tools to the registry.
type Toolset interface {
	ID() string
	Version() string
	Init(ctx ToolsetContext) error
	Register(reg Registry) error
}

type ToolsetFactory func() Toolset

type toolsetRegistry struct {
	mu        sync.RWMutex
	factories map[string]ToolsetFactory
}

var registry = toolsetRegistry{factories: map[string]ToolsetFactory{}}

func RegisterToolset(id string, factory ToolsetFactory) error {
	if id == "" {
		return errors.New("toolset id required")
	}
	if factory == nil {
		return errors.New("toolset factory required")
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.factories[id]; exists {
		return fmt.Errorf("toolset %s already registered", id)
	}
	registry.factories[id] = factory
	return nil
}

// MustRegisterToolset is meant for package init functions.
func MustRegisterToolset(id string, factory ToolsetFactory) {
	if err := RegisterToolset(id, factory); err != nil {
		panic(err)
	}
}

func ToolsetFactoryFor(id string) (ToolsetFactory, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	factory, ok := registry.factories[id]
	return factory, ok
}

func RegisteredToolsets() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	ids := make([]string, 0, len(registry.factories))
	for id := range registry.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadToolsets initialises the named toolsets in order and registers their
// tools.
func LoadToolsets(ids []string, ctx ToolsetContext, reg Registry) error {
	for _, id := range ids {
		factory, ok := ToolsetFactoryFor(id)
		if !ok {
			return fmt.Errorf("unknown toolset: %s", id)
		}
		toolset := factory()
		if toolset == nil {
			return fmt.Errorf("toolset %s: factory returned nil", id)
		}
		if err := toolset.Init(ctx); err != nil {
			return fmt.Errorf("toolset %s: %w", id, err)
		}
		if err := toolset.Register(reg); err != nil {
			return fmt.Errorf("toolset %s: %w", id, err)
		}
	}
	return nil
}
