// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin declares the resources served by the panel: the product
catalogue, the panel accounts and the blog.

Architecture:

  - Each resource lives in its own file with its policy and observer.
  - Products bind their policy explicitly. Users and blog posts rely on
    name-based discovery ("UserResource" finds "UserPolicy").
  - [Register] is the only entry point used by cmd/api and cmd/panelctl.
*/
package admin

import (
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/store"
)

// Resources returns every resource of the panel in navigation order.
func Resources(st store.Store) []resource.Resource {
	return []resource.Resource{
		ProductResource{store: st},
		BlogPostResource{},
		UserResource{},
	}
}

// Policies builds the policy registry with the given fallback decision.
func Policies(fallback policy.Decision) *policy.Registry {
	policies := policy.NewRegistry(policy.WithFallback(fallback), policy.WithGuessing())
	policies.Bind(ProductsKey, policy.RolePolicy())
	policies.Register("UserPolicy", UserPolicy())
	policies.Register("BlogPostPolicy", BlogPostPolicy())
	return policies
}

/*
Register adds every resource to registry and attaches its observers.

Declared observers ([observer.Observable]) are attached first; observers
registered by name on dispatcher are discovered when it guesses.
*/
func Register(registry *resource.Registry, dispatcher *observer.Dispatcher, st store.Store) error {
	dispatcher.Register("BlogPostObserver", BlogPostObserver{})

	for _, r := range Resources(st) {
		t, err := registry.Register(r)
		if err != nil {
			return err
		}

		var declared []observer.Observer
		if observable, ok := r.(observer.Observable); ok {
			declared = observable.Observers()
		}
		dispatcher.Attach(t.URIKey(), t.Name(), declared)
	}
	return nil
}
