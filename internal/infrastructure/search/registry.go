// Package search holds the discovery backends that turn a query into citations.
package search

import (
	"fmt"
	"sort"

	"IdeaScout/internal/ports"
)

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]ports.SearchProvider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]ports.SearchProvider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider ports.SearchProvider) {
	if r.providers == nil {
		r.providers = map[string]ports.SearchProvider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.SearchProvider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("search provider %s is not registered", name)
}

// Select resolves names in order; an empty list selects every provider by name.
func (r *Registry) Select(names []string) ([]ports.SearchProvider, error) {
	if len(names) == 0 {
		for name := range r.providers {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	out := make([]ports.SearchProvider, 0, len(names))
	for _, name := range names {
		provider, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, provider)
	}
	return out, nil
}
