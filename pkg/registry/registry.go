// Package registry provides a static name-to-constructor table.
//
// A Registry is built once from a fixed list of entries and never changes
// afterwards, so it is safe for concurrent readers without locking. Keys are
// typed so each registry exposes a closed set of names.
package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/logger"
)

// Factory creates an instance from options
type Factory[T, O any] func(opts O) (T, error)

// Entry binds a key to a factory
type Entry[K ~string, T, O any] struct {
	Key     K
	Factory Factory[T, O]
}

// Registry is an ordered, immutable table of factories
type Registry[K ~string, T, O any] struct {
	name      string
	keys      []K
	factories map[K]Factory[T, O]
}

// New builds a registry. Later entries with a repeated key are ignored.
func New[K ~string, T, O any](name string, entries ...Entry[K, T, O]) *Registry[K, T, O] {
	r := &Registry[K, T, O]{
		name:      name,
		keys:      make([]K, 0, len(entries)),
		factories: make(map[K]Factory[T, O], len(entries)),
	}
	for _, e := range entries {
		if _, exists := r.factories[e.Key]; exists {
			continue
		}
		r.keys = append(r.keys, e.Key)
		r.factories[e.Key] = e.Factory
	}
	return r
}

// Name returns the registry name used in errors and logs
func (r *Registry[K, T, O]) Name() string {
	return r.name
}

// List returns registered keys in declaration order
func (r *Registry[K, T, O]) List() []K {
	out := make([]K, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has checks if a key is registered
func (r *Registry[K, T, O]) Has(key string) bool {
	_, exists := r.factories[K(key)]
	return exists
}

// Create builds the instance registered under key, forwarding opts unchanged
func (r *Registry[K, T, O]) Create(key string, opts O) (T, error) {
	var zero T

	factory, exists := r.factories[K(key)]
	if !exists {
		return zero, errors.Wrap(errors.ErrUnknownKey, errors.ErrorTypeNotFound,
			fmt.Sprintf("%s %q not found", r.name, key)).
			WithDetail("registry", r.name).
			WithDetail("available", r.keyStrings())
	}

	instance, err := factory(opts)
	if err != nil {
		return zero, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create %s %q", r.name, key))
	}

	logger.With(zap.String("component", r.name+"_registry")).
		Debug("instance created", zap.String("key", key))
	return instance, nil
}

func (r *Registry[K, T, O]) keyStrings() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = string(k)
	}
	return out
}
