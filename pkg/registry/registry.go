// Package registry manages the tools available to the reasoning loop.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Registry manages the available tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ports.Tool
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		tools: make(map[string]ports.Tool),
	}
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten.
func (r *Registry) Register(tool ports.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (ports.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	return tool, nil
}

// List returns the name/description pairs of all registered tools,
// sorted by name for a stable selection view.
func (r *Registry) List() []domain.ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.ToolInfo, 0, len(r.tools))
	for _, tool := range r.tools {
		infos = append(infos, domain.ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Invoke looks up a tool by name and invokes it.
// Returns domain.ErrToolNotFound if the tool is not registered.
func (r *Registry) Invoke(ctx context.Context, name, query string) (string, error) {
	tool, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return tool.Invoke(ctx, query)
}
