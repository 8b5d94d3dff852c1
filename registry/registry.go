// Package registry tracks the suite definitions a process has
// registered, in registration order. Suites self-register against
// Default from init funcs, usually one file per suite.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/treetop-labs/selftest/suite"
)

// Registry holds suite definitions in registration order. Safe for
// concurrent use: registration happens in init funcs across files while
// lookups may come from serving goroutines.
type Registry struct {
	mu     sync.RWMutex
	suites []suite.Definition
	names  map[string]struct{}
}

// Default is the registry that init()-time registrations target and
// the one the run-policy entry point executes when none is configured.
var Default = New()

// New returns an empty registry.
func New() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds a suite definition. The name must be non-empty and not
// already registered, and the Run body must be set.
func (r *Registry) Register(def suite.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if def.Run == nil {
		return fmt.Errorf("suite %q has no Run body", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[def.Name]; ok {
		return fmt.Errorf("suite %q already registered", def.Name)
	}
	r.names[def.Name] = struct{}{}
	r.suites = append(r.suites, def)
	return nil
}

// MustRegister adds definitions and panics on the first error. This is
// the form generated suite files call from init.
func (r *Registry) MustRegister(defs ...suite.Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Suites returns a copy of the registered definitions in registration
// order.
func (r *Registry) Suites() []suite.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]suite.Definition, len(r.suites))
	copy(out, r.suites)
	return out
}

// InCategory returns the definitions carrying the given category, in
// registration order.
func (r *Registry) InCategory(category string) []suite.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []suite.Definition
	for _, def := range r.suites {
		if def.Category == category {
			out = append(out, def)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories, sorted.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, def := range r.suites {
		if def.Category == "" {
			continue
		}
		if _, ok := seen[def.Category]; ok {
			continue
		}
		seen[def.Category] = struct{}{}
		out = append(out, def.Category)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of registered suites.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.suites)
}

// Register adds a definition to the default registry.
func Register(def suite.Definition) error { return Default.Register(def) }

// MustRegister adds definitions to the default registry, panicking on
// error.
func MustRegister(defs ...suite.Definition) { Default.MustRegister(defs...) }
