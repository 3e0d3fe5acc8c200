package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taskmind/taskmind/internal/types"
)

// Registry manages provider registration, discovery, and health monitoring.
// All operations are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new empty provider Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
// Returns ErrProviderAlreadyExists if a provider with the same name is registered.
func (r *Registry) Register(provider Provider) error {
	if provider == nil {
		return types.NewError(ErrProviderInvalidInput, "provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return types.NewError(ErrProviderInvalidInput, "provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return types.NewError(ErrProviderAlreadyExists, fmt.Sprintf("provider %q already registered", name))
	}

	r.providers[name] = provider

	return nil
}

// Unregister removes a provider from the registry by name.
// Returns ErrProviderNotFound if the provider doesn't exist.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return types.NewError(ErrProviderNotFound, fmt.Sprintf("provider %q not found", name))
	}

	delete(r.providers, name)

	return nil
}

// Get retrieves a provider by name.
// Returns ErrProviderNotFound if the provider doesn't exist.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, types.NewError(ErrProviderNotFound, fmt.Sprintf("provider %q not found", name))
	}

	return provider, nil
}

// List returns the names of all registered providers, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Health aggregates provider health:
// healthy if all providers are healthy, degraded if some are unhealthy,
// unhealthy if all are unhealthy or none are registered.
func (r *Registry) Health(ctx context.Context) types.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.providers) == 0 {
		return types.Unhealthy("no providers registered")
	}

	healthyCount := 0
	unhealthyCount := 0
	total := len(r.providers)

	for _, provider := range r.providers {
		if provider.Health(ctx).IsHealthy() {
			healthyCount++
		} else {
			unhealthyCount++
		}
	}

	switch {
	case unhealthyCount == 0:
		return types.Healthy(fmt.Sprintf("all %d providers healthy", total))
	case healthyCount == 0:
		return types.Unhealthy(fmt.Sprintf("all %d providers unhealthy", total))
	default:
		return types.Degraded(fmt.Sprintf("%d/%d providers healthy", healthyCount, total))
	}
}
