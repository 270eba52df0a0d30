// Package llm — provider router.
// Router selects a Provider per request by routing key (the request's
// hostProvider field). Selection happens once per request; there is no
// conditional dispatch at individual call sites.
package llm

import (
	"fmt"
	"sort"
)

// Router selects a Provider for each request.
type Router struct {
	providers  map[string]Provider
	defaultKey string
}

// NewRouter creates a Router with an initial set of providers and a default key.
func NewRouter(providers map[string]Provider, defaultKey string) *Router {
	// defensive copy so the caller cannot mutate the internal map.
	ps := make(map[string]Provider, len(providers))
	for k, v := range providers {
		ps[k] = v
	}
	return &Router{providers: ps, defaultKey: defaultKey}
}

// Register adds (or replaces) a provider under the given key.
// Useful for dynamic reconfiguration or tests.
func (r *Router) Register(key string, p Provider) {
	r.providers[key] = p
}

// Resolve maps an incoming routing key to the effective one: an empty or
// unknown key falls back to the configured default.
func (r *Router) Resolve(key string) string {
	if _, ok := r.providers[key]; ok {
		return key
	}
	return r.defaultKey
}

// Route returns the provider for the given routing key, falling back to the
// default when the key is empty. Returns an error if neither is registered.
func (r *Router) Route(key string) (Provider, error) {
	k := r.Resolve(key)
	p, ok := r.providers[k]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", k, r.keys())
	}
	return p, nil
}

// keys returns the registered provider names (for error messages).
func (r *Router) keys() []string {
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
