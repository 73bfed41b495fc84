// Package resource provides a name-keyed registry of shared resources.
//
// The command manager resolves handler factories through a [Registry], and the
// engine registers its shared collaborators (particle pool, codec, store) in
// the same registry so handlers can look them up by name.
//
//	reg := resource.NewRegistry()
//	_ = reg.AddResource("particles", particlePool)
//	p, err := resource.Get[*pool.Pool[*blocks.Particle]](reg, "particles")
//
// Names are unique: registering a name twice fails with
// [ErrDuplicateResource] instead of silently replacing the first entry. Use
// [Registry.Remove] during teardown to free a name.
//
// A Registry is safe for concurrent use.
package resource

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

var (
	// ErrResourceNotFound is returned when no resource is registered under a name.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrDuplicateResource is returned by [Registry.AddResource] when the name
	// is already taken.
	ErrDuplicateResource = errors.New("duplicate resource")

	// ErrInvalidName is returned by [Registry.AddResource] for an empty name.
	ErrInvalidName = errors.New("resource name must not be empty")

	// ErrResourceType is returned by [Get] when the stored resource has a
	// different type than requested.
	ErrResourceType = errors.New("resource has unexpected type")
)

// Registry maps names to resources.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]any)}
}

// AddResource registers r under name.
func (r *Registry) AddResource(name string, res any) error {
	if name == "" {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidName, "add resource")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[name]; ok {
		return errs.Wrap(errs.ErrCodeDuplicate, ErrDuplicateResource, "resource %q already registered", name)
	}
	r.resources[name] = res
	return nil
}

// GetResource returns the resource registered under name.
func (r *Registry) GetResource(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[name]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeResourceNotFound, ErrResourceNotFound, "resource %q", name)
	}
	return res, nil
}

// Has reports whether a resource is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resources[name]
	return ok
}

// Remove unregisters name and reports whether it was present.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.resources[name]
	delete(r.resources, name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// Get looks up name and asserts the resource to T.
func Get[T any](r *Registry, name string) (T, error) {
	var zero T
	res, err := r.GetResource(name)
	if err != nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, errs.Wrap(errs.ErrCodeInternal, ErrResourceType,
			"resource %q is %T, want %s", name, res, fmt.Sprintf("%T", zero))
	}
	return v, nil
}
