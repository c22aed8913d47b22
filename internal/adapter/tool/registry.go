// Package tool holds the tool registry, the built-in tools, and wrappers
// that add schema validation and rate limiting around any tool.
package tool

import (
	"log/slog"
	"sync"

	"devforge/internal/domain"
)

// Registry holds named tools. Lookup is exact byte-wise name match.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]domain.Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]domain.Tool),
		logger: logger,
	}
}

// Register adds a tool. A tool with the same name replaces the existing
// entry and keeps its original position in the listing order.
func (r *Registry) Register(t domain.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Definition().Name
	if _, exists := r.tools[name]; exists {
		r.logger.Info("tool replaced", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrToolNotFound, name)
	}
	return t, nil
}

// List returns the definitions of all registered tools in registration
// order. The order is stable for the life of the registry.
func (r *Registry) List() []domain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
