package modules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dop251/goja"
)

// ErrModuleNotFound is returned by a Loader that does not provide a module
var ErrModuleNotFound = errors.New("module not found")

// NativeModule populates the exports object of a Go-implemented module
type NativeModule func(vm *goja.Runtime, exports *goja.Object) error

// Module is a resolvable unit: JavaScript source or a native module
type Module struct {
	Name   string
	Source string
	Native NativeModule
}

// Loader resolves shared modules by name. Implementations must be safe for
// concurrent use; each invocation instantiates modules in its own runtime.
type Loader interface {
	Load(name string) (*Module, error)
	// Names lists the modules the loader provides
	Names() []string
}

// Registry is a Loader populated by installed extensions
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// RegisterSource contributes a JavaScript module
func (r *Registry) RegisterSource(name, source string) error {
	return r.register(&Module{Name: name, Source: source})
}

// RegisterNative contributes a Go-implemented module
func (r *Registry) RegisterNative(name string, fn NativeModule) error {
	if fn == nil {
		return fmt.Errorf("native module %s has no loader", name)
	}
	return r.register(&Module{Name: name, Native: fn})
}

func (r *Registry) register(m *Module) error {
	if m.Name == "" {
		return fmt.Errorf("module name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[m.Name]; exists {
		return fmt.Errorf("module %s is already registered", m.Name)
	}
	r.modules[m.Name] = m
	return nil
}

// Load implements Loader
func (r *Registry) Load(name string) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return m, nil
}

// Names implements Loader. Names are sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ambient returns the loader used when no platform loader is injected.
// It provides no shared modules; only the code-search path is consulted.
func Ambient() Loader {
	return NewRegistry()
}
