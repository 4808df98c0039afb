package plugins

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
)

// Plugin is a build step type executed as an activity
type Plugin interface {
	GetType() string
	Activity(ctx context.Context, p map[string]interface{}) (interface{}, error)
}

// Registry holds plugins by type
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds a plugin. Registering a type twice is an error.
func (r *Registry) Register(plugin Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pluginType := plugin.GetType()
	if _, exists := r.plugins[pluginType]; exists {
		return fmt.Errorf("plugin %s is already registered", pluginType)
	}
	r.plugins[pluginType] = plugin
	return nil
}

// Get retrieves a plugin by type
func (r *Registry) Get(pluginType string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, exists := r.plugins[pluginType]
	return plugin, exists
}

// All returns the registered plugins ordered by type
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, 0, len(r.plugins))
	for _, plugin := range r.plugins {
		out = append(out, plugin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetType() < out[j].GetType() })
	return out
}

// Global plugin registry, filled by plugin packages in init
var global = NewRegistry()

// RegisterPlugin registers a plugin in the global registry
func RegisterPlugin(plugin Plugin) {
	if err := global.Register(plugin); err != nil {
		panic(err)
	}
}

// GetPlugin retrieves a plugin by type from the global registry
func GetPlugin(pluginType string) (Plugin, bool) {
	return global.Get(pluginType)
}

// GetRegisteredPlugins returns all globally registered plugins
func GetRegisteredPlugins() []Plugin {
	return global.All()
}

// RegisterWithTemporal registers a plugin's activity under its type name
func RegisterWithTemporal(w worker.Worker, p Plugin) {
	w.RegisterActivityWithOptions(
		p.Activity,
		activity.RegisterOptions{Name: p.GetType()},
	)
}

// RegisterAllWithTemporal registers every global plugin with a Temporal worker
func RegisterAllWithTemporal(w worker.Worker) {
	for _, plugin := range GetRegisteredPlugins() {
		RegisterWithTemporal(w, plugin)
	}
}
