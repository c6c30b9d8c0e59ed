package checks

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrCheckNotFound is returned when a check name is not registered
	ErrCheckNotFound = errors.New("check not found")

	// ErrCheckAlreadyRegistered is returned when trying to register a duplicate check
	ErrCheckAlreadyRegistered = errors.New("check already registered")
)

// Registry maps check names from rule configuration to plugin instances.
// Rule resolution produces (name, args) pairs; the caller dereferences the
// names here before execution.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewRegistry creates an empty check registry
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]Check),
	}
}

// NewDefaultRegistry creates a registry with all built-in checks registered
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []Check{
		NewAllow(),
		NewDeny(),
		NewReadOnly(),
		NewContainerName(),
	} {
		// Built-in names are unique; a collision here is a programming error.
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a check to the registry
func (r *Registry) Register(c Check) error {
	if c == nil {
		return errors.New("check cannot be nil")
	}
	name := c.Name()
	if name == "" {
		return errors.New("check name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checks[name]; exists {
		return ErrCheckAlreadyRegistered
	}
	r.checks[name] = c
	return nil
}

// Get returns the check registered under name
func (r *Registry) Get(name string) (Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.checks[name]
	if !exists {
		return nil, ErrCheckNotFound
	}
	return c, nil
}

// Names returns the sorted names of all registered checks
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
