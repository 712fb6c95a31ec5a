package loader

import (
	"sort"
	"sync"
)

// Registry is the process-wide table of live namespaces keyed by logical
// module name. Other host components look scripts up here; the loader keeps
// its own reference and never depends on the registry for correctness.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Namespace
}

// DefaultRegistry is shared by loaders that are not given their own
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Namespace)}
}

// Register binds ns under name, replacing any previous entry
func (r *Registry) Register(name string, ns *Namespace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = ns
}

// Evict removes the entry for name and returns it, or nil when absent
func (r *Registry) Evict(name string) *Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()
	ns := r.modules[name]
	delete(r.modules, name)
	return ns
}

// Restore puts ns back under name, or removes the entry when ns is nil
func (r *Registry) Restore(name string, ns *Namespace) {
	if ns == nil {
		r.Evict(name)
		return
	}
	r.Register(name, ns)
}

// Lookup returns the namespace registered under name
func (r *Registry) Lookup(name string) (*Namespace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.modules[name]
	return ns, ok
}

// Names lists the registered module names in sorted order
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
