// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package policy

import (
	"context"
	"strings"
	"sync"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

// Registry maps resource types to policies.
//
// # Lookup order
//  1. A policy bound to the resource's URI key with [Registry.Bind].
//  2. When guessing is enabled, a policy registered under the resource name
//     with its "Resource" suffix replaced by "Policy" (ProductResource → ProductPolicy).
//  3. The fallback decision.
//
// A nil user is always denied, before any policy runs.
type Registry struct {
	mu       sync.RWMutex
	bound    map[string]Policy
	named    map[string]Policy
	guess    bool
	fallback Decision
}

// Option configures a [Registry].
type Option func(*Registry)

// WithFallback sets the decision used when no policy applies or the policy
// abstains. Only [Allow] and [Deny] are meaningful.
func WithFallback(decision Decision) Option {
	return func(registry *Registry) {
		if decision == Allow || decision == Deny {
			registry.fallback = decision
		}
	}
}

// WithGuessing enables name-based policy discovery.
func WithGuessing() Option {
	return func(registry *Registry) { registry.guess = true }
}

// NewRegistry creates a registry that denies by default.
func NewRegistry(options ...Option) *Registry {
	registry := &Registry{
		bound:    make(map[string]Policy),
		named:    make(map[string]Policy),
		fallback: Deny,
	}
	for _, option := range options {
		option(registry)
	}
	return registry
}

// Bind attaches a policy to a resource URI key.
func (registry *Registry) Bind(uriKey string, policy Policy) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.bound[uriKey] = policy
}

// Register makes a policy discoverable by name ("ProductPolicy").
func (registry *Registry) Register(name string, policy Policy) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.named[name] = policy
}

// Lookup returns the policy for a resource, or nil.
func (registry *Registry) Lookup(uriKey, resourceName string) Policy {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if policy, ok := registry.bound[uriKey]; ok {
		return policy
	}
	if registry.guess {
		if policy, ok := registry.named[GuessName(resourceName)]; ok {
			return policy
		}
	}
	return nil
}

// Fallback returns the decision applied when no policy decides.
func (registry *Registry) Fallback() Decision { return registry.fallback }

// Authorize resolves the final answer for one check.
func (registry *Registry) Authorize(ctx context.Context, uriKey, resourceName string, user *sec.AuthClaims, ability Ability, subject *entity.Record) bool {
	if user == nil {
		return false
	}

	decision := Abstain
	if policy := registry.Lookup(uriKey, resourceName); policy != nil {
		decision = policy.Decide(ctx, user, ability, subject)
	}
	if decision == Abstain {
		decision = registry.fallback
	}
	return decision == Allow
}

// GuessName derives a policy name from a resource name.
func GuessName(resourceName string) string {
	return strings.TrimSuffix(resourceName, "Resource") + "Policy"
}
