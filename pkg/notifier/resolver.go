package notifier

import (
	"fmt"
	"sync"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
	"github.com/macielcr7/exa-chat-notifier/internal/ports"
)

// mapResolver resolves destination names against a static name→URL map
// with a default fallback.
type mapResolver struct {
	defaultURL string
	named      map[string]string
}

func newMapResolver(defaultURL string, named map[string]string) *mapResolver {
	return &mapResolver{defaultURL: defaultURL, named: named}
}

// Resolve returns the URL for the named destination. A name that is absent
// from the map falls back to the default destination; resolution fails only
// when no default exists either.
func (r *mapResolver) Resolve(name string) (string, error) {
	if name != "" {
		if u, ok := r.named[name]; ok {
			return u, nil
		}
	}
	if r.defaultURL != "" {
		return r.defaultURL, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: no default destination configured", domain.ErrNoDestination)
	}
	return "", fmt.Errorf("%w: destination %q not configured and no default exists", domain.ErrNoDestination, name)
}

var _ ports.DestinationResolver = (*mapResolver)(nil)

// DynamicResolver is a destination resolver whose destination map can be
// swapped at runtime, for callers that hot-reload configuration. Pass it
// to New via WithResolver.
type DynamicResolver struct {
	mu      sync.RWMutex
	current *mapResolver
}

// NewDynamicResolver creates a resolver with the given initial destinations.
func NewDynamicResolver(defaultURL string, named map[string]string) *DynamicResolver {
	return &DynamicResolver{current: newMapResolver(defaultURL, cloneDestinations(named))}
}

// Resolve implements destination resolution against the current map.
func (r *DynamicResolver) Resolve(name string) (string, error) {
	r.mu.RLock()
	cur := r.current
	r.mu.RUnlock()
	return cur.Resolve(name)
}

// Update atomically replaces the destination map. In-flight resolutions
// keep the map they started with.
func (r *DynamicResolver) Update(defaultURL string, named map[string]string) {
	next := newMapResolver(defaultURL, cloneDestinations(named))
	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
}

func cloneDestinations(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ ports.DestinationResolver = (*DynamicResolver)(nil)
