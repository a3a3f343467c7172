package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tutorgraph/pkg/graph"
)

// ErrGraphNotFound is returned when no graph is registered under a name.
var ErrGraphNotFound = errors.New("graph not found")

// Registry holds the compiled graphs available to callers.
type Registry struct {
	mu     sync.RWMutex
	graphs map[string]*graph.Definition
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		graphs: make(map[string]*graph.Definition),
	}
}

// Register adds a graph under its own name.
// If a graph with the same name exists, it is overwritten.
func (r *Registry) Register(def *graph.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs[def.Name()] = def
}

// Get looks up a graph by name.
func (r *Registry) Get(name string) (*graph.Definition, error) {
	r.mu.RLock()
	def, ok := r.graphs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return def, nil
}

// Names lists the registered graphs in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.graphs))
	for name := range r.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
