package catalog

import (
	"fmt"
	"slices"
)

// Module is the interface that all node libraries must implement to be registered.
type Module interface {
	Name() string
	Register(r *Registry)
}

// Registry holds all the registered nodes for a single application instance.
type Registry struct {
	nodes   map[string]*NodeDescriptor
	names   []string
	modules map[string][]string
	current string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		nodes:   make(map[string]*NodeDescriptor),
		modules: make(map[string][]string),
	}
}

// Load registers every module in order.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		r.current = m.Name()
		if _, ok := r.modules[r.current]; !ok {
			r.modules[r.current] = nil
		}
		m.Register(r)
	}
	r.current = ""
}

// RegisterNode adds a node. Duplicate names are a programming error and panic.
func (r *Registry) RegisterNode(desc NodeDescriptor) {
	if desc.Name == "" {
		panic("catalog: node registered without a name")
	}
	if _, exists := r.nodes[desc.Name]; exists {
		panic(fmt.Sprintf("catalog: node '%s' is already registered", desc.Name))
	}
	desc.Dependencies = slices.Clone(desc.Dependencies)
	desc.Module = r.current
	r.nodes[desc.Name] = &desc
	r.names = append(r.names, desc.Name)
	r.modules[r.current] = append(r.modules[r.current], desc.Name)
}

// Lookup implements Catalog.
func (r *Registry) Lookup(name string) (*NodeDescriptor, bool) {
	desc, ok := r.nodes[name]
	return desc, ok
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// Names returns the nodes registered by the given modules in registration
// order. Without arguments it returns every node.
func (r *Registry) Names(modules ...string) []string {
	if len(modules) == 0 {
		return slices.Clone(r.names)
	}
	var names []string
	for _, m := range modules {
		names = append(names, r.modules[m]...)
	}
	return names
}

// Modules returns the names of the loaded modules, sorted.
func (r *Registry) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for m := range r.modules {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// HasModule reports whether a module with the given name was loaded.
func (r *Registry) HasModule(name string) bool {
	_, ok := r.modules[name]
	return ok
}
