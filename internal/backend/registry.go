package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/projarc/internal/shared"
)

// Loader resolves a backend binding from its configuration.
type Loader interface {
	Load(cfg shared.BackendConfig) (Factory, error)
}

// Constructor builds a [Factory] from explicit configuration.
type Constructor func(cfg shared.BackendConfig) (Factory, error)

// Registry is a [Loader] over named constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry creates a registry with the built-in backends registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(BridgeName, func(cfg shared.BackendConfig) (Factory, error) {
		f, err := NewBridgeFactory(cfg)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
	return r
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// Names lists registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load implements [Loader].
func (r *Registry) Load(cfg shared.BackendConfig) (Factory, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[cfg.Name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", shared.ErrUnknownBackend, cfg.Name, r.Names())
	}

	factory, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load backend %q: %w", cfg.Name, err)
	}
	return factory, nil
}
