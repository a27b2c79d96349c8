package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProviderNotSupported is returned when resolving a provider name that was
// never registered. Resolution happens once at startup, so hitting this error
// is a configuration failure.
var ErrProviderNotSupported = errors.New("provider not supported")

// Registry resolves logical source names to RateProvider instances.
// It is populated during startup and read-only afterwards.
type Registry struct {
	providers map[string]RateProvider
}

// NewRegistry creates a Registry with no providers registered.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]RateProvider)}
}

// Register adds a provider under the given logical name. Names are
// case-insensitive; registering the same name twice overwrites.
func (r *Registry) Register(name string, p RateProvider) {
	r.providers[strings.ToLower(name)] = p
}

// Resolve returns the provider registered under name (case-insensitive).
func (r *Registry) Resolve(name string) (RateProvider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotSupported, name)
	}
	return p, nil
}
