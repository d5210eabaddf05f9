// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
)

// Registry holds the registered resource types by URI key.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]*Type
	order    []string
	policies *policy.Registry
}

// NewRegistry creates an empty registry checking abilities against policies.
func NewRegistry(policies *policy.Registry) *Registry {
	if policies == nil {
		policies = policy.NewRegistry()
	}
	return &Registry{
		types:    make(map[string]*Type),
		policies: policies,
	}
}

// Policies returns the policy registry.
func (registry *Registry) Policies() *policy.Registry { return registry.policies }

// Register derives the runtime type of r and stores it.
//
// It fails when the URI key is taken, the model has no table, or a field
// maps an attribute the model does not persist.
func (registry *Registry) Register(r Resource) (*Type, error) {
	t, err := registry.build(r)
	if err != nil {
		return nil, err
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.types[t.URIKey()]; exists {
		return nil, fmt.Errorf("resource: uri key %q already registered", t.URIKey())
	}
	registry.types[t.URIKey()] = t
	registry.order = append(registry.order, t.URIKey())
	return t, nil
}

// MustRegister is [Registry.Register] for static wiring at startup.
func (registry *Registry) MustRegister(resources ...Resource) {
	for _, r := range resources {
		if _, err := registry.Register(r); err != nil {
			panic(err)
		}
	}
}

func (registry *Registry) build(r Resource) (*Type, error) {
	model := r.Model()
	if model.Table == "" {
		return nil, fmt.Errorf("resource: %s has no table", TypeName(r))
	}

	names := DeriveNames(TypeName(r))
	if labeled, ok := r.(Labeled); ok {
		names.Label = labeled.Label()
		names.SingularLabel = labeled.SingularLabel()
	}
	if keyed, ok := r.(URIKeyed); ok {
		names.URIKey = keyed.URIKey()
	}

	t := &Type{resource: r, names: names, model: model, policies: registry.policies}
	if grouped, ok := r.(Grouped); ok {
		t.group = grouped.Group()
	}

	probe := request.New(context.Background(), nil, nil, nil)
	for _, f := range r.Fields(probe) {
		if !model.HasColumn(f.Attribute()) {
			return nil, fmt.Errorf("resource: %s field %q maps unknown attribute", names.Name, f.Attribute())
		}
	}
	return t, nil
}

// Get returns the type registered under uriKey.
func (registry *Registry) Get(uriKey string) (*Type, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	t, ok := registry.types[uriKey]
	return t, ok
}

// All returns every type in registration order.
func (registry *Registry) All() []*Type {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	types := make([]*Type, len(registry.order))
	for i, key := range registry.order {
		types[i] = registry.types[key]
	}
	return types
}
