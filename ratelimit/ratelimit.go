// Package ratelimit throttles individual node producers independently: one
// token-bucket limiter per node display name, so an external-API node can
// be throttled far below an in-memory transform node in the same graph.
//
// Unlike ordr.WithRateLimit, which throttles every dispatch in a run
// uniformly, a Registry lets each node carry its own rate. Call Wait as the
// first line of a node's producer body, before making the call the limiter
// guards.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Registry holds one token-bucket limiter per node name.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRegistry returns an empty registry. Nodes with no configured limiter
// are never throttled by Wait.
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*rate.Limiter)}
}

// Set installs, or replaces, the limiter for a node name.
func (r *Registry) Set(nodeName string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters[nodeName] = rate.NewLimiter(limit, burst)
}

// Wait blocks until nodeName's limiter admits one event, or ctx is done. It
// returns nil immediately if nodeName has no configured limiter.
func (r *Registry) Wait(ctx context.Context, nodeName string) error {
	r.mu.Lock()
	limiter, ok := r.limiters[nodeName]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ratelimit: %s: %w", nodeName, err)
	}
	return nil
}
