// Package gate provides a Gate/Policy authorization system.
//
// A HybridGate first checks that the subject's profile grants the
// "resource:action" permission, then runs the resource policy registered
// for that resource type (typically an ownership check). The package has
// no dependency on domain models; U is whatever subject type the caller
// resolves requests to.
package gate

import (
	"context"
	"fmt"
	"sync"
)

// HybridGate combines profile-based global permissions with resource-specific policies.
type HybridGate[U comparable] struct {
	resolver ProfileResolver[U]

	mu       sync.RWMutex
	policies map[string]Policy[U]
}

// NewHybridGate creates a hybrid gate with the given profile resolver.
func NewHybridGate[U comparable](resolver ProfileResolver[U]) *HybridGate[U] {
	return &HybridGate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a resource-specific policy. It replaces any previous one.
func (g *HybridGate[U]) Register(resourceType string, p Policy[U]) {
	g.mu.Lock()
	g.policies[resourceType] = p
	g.mu.Unlock()
}

func (g *HybridGate[U]) policy(resourceType string) (Policy[U], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.policies[resourceType]
	return p, ok
}

// Authorize checks:
//  1. user is valid (non-zero), else ErrUnauthorized
//  2. user's profile has permission for resource:action, else ErrForbidden
//  3. if a resource policy exists and resource is provided, the policy allows it
func (g *HybridGate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}

	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: resolve profile: %v", ErrUnauthorized, err)
	}
	if profile == nil {
		return ErrUnauthorized
	}

	perm := NewPermission(resourceType, action)
	if !profile.HasPermission(perm) {
		return fmt.Errorf("%w: missing %s", ErrForbidden, perm)
	}

	if resource != nil {
		if p, ok := g.policy(resourceType); ok && !p.Can(ctx, user, action, resource) {
			return fmt.Errorf("%w: %s denied by policy", ErrForbidden, perm)
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *HybridGate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, without the policy check.
func (g *HybridGate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
