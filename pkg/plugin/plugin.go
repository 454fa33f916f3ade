// Package plugin provides a static registry of named capabilities that can be
// invoked by function name from chat.
package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/naughty-assistant/pkg/errors"
)

// Capability is a statically linked plugin.
type Capability interface {
	// Name returns the identifier used to look the plugin up.
	Name() string
	// Functions lists the callable function names.
	Functions() []string
	// Call invokes fn. Unknown names must return ErrUnknownFunction.
	Call(ctx context.Context, fn string, args []string) (string, error)
}

// ErrUnknownFunction is returned by Capability.Call for an unknown function.
var ErrUnknownFunction = fmt.Errorf("unknown plugin function")

// Info describes a registered plugin.
type Info struct {
	Name      string   `json:"name"`
	Functions []string `json:"functions"`
}

// Registry maps plugin names to capabilities.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Capability)}
}

// Register adds p, replacing any plugin of the same name.
func (r *Registry) Register(p Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name()] = p
}

// Execute looks up name and calls fn on it.
//
// Failures are ErrPluginNotFound or ErrCapabilityNotFound whose message is
// the user facing text.
func (r *Registry) Execute(ctx context.Context, name, fn string, args []string) (string, error) {
	r.mu.RLock()
	p, ok := r.plugins[name]
	r.mu.RUnlock()
	if !ok {
		return "", errors.ErrPluginNotFound.WithMessagef("Plugin %s not found.", name)
	}

	out, err := p.Call(ctx, fn, args)
	if errors.Is(err, ErrUnknownFunction) {
		return "", errors.ErrCapabilityNotFound.WithMessagef("Function %s not found in plugin %s.", fn, name)
	}
	if err != nil {
		return "", fmt.Errorf("plugin %s: %w", name, err)
	}
	return out, nil
}

// List returns the registered plugins sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.plugins))
	for name, p := range r.plugins {
		infos = append(infos, Info{Name: name, Functions: p.Functions()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
