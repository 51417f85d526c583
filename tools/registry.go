package tools

import (
	"sort"
	"sync"

	"github.com/hartwell/jobpilot/core"
)

// Registry holds the tools exposed to the model for one assistant
// configuration. Registration rejects duplicate names so a typo in wiring
// surfaces at startup rather than as silently shadowed behavior.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return core.NewAssistantError("registry.register", t.Name(), core.ErrDuplicateTool)
	}
	r.tools[t.Name()] = t
	return nil
}

// MustRegister panics on duplicate registration. Intended for wiring code
// where a duplicate is a programming error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, core.NewAssistantError("registry.get", name, core.ErrUnknownTool)
	}
	return t, nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schemas returns the schema for every registered tool in name order, so
// the tool list presented to the model is stable across calls.
func (r *Registry) Schemas() []core.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]core.ToolSchema, 0, len(names))
	for _, name := range names {
		schemas = append(schemas, ToSchema(r.tools[name]))
	}
	return schemas
}
