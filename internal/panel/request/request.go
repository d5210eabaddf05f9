// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package request defines the per-call view of an admin request that fields,
// filters and resources read from: the caller, the decoded body and the
// query string. It is transport agnostic so resources can be exercised
// without an HTTP server.
package request

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/sec"
	"github.com/taibuivan/panelkit/pkg/convert"
)

// Request carries everything a resource needs to answer one call.
type Request struct {
	ctx   context.Context
	user  *sec.AuthClaims
	input map[string]any
	query url.Values
}

// New builds a request. A nil input or query is treated as empty.
func New(ctx context.Context, user *sec.AuthClaims, input map[string]any, query url.Values) *Request {
	if input == nil {
		input = map[string]any{}
	}
	if query == nil {
		query = url.Values{}
	}
	return &Request{ctx: ctx, user: user, input: input, query: query}
}

// FromHTTP builds a request from an incoming HTTP request and its decoded body.
// The caller comes from the claims injected by the authentication middleware.
func FromHTTP(r *http.Request, input map[string]any) *Request {
	return New(r.Context(), ctxutil.GetAuthUser(r.Context()), input, r.URL.Query())
}

// Context returns the request context.
func (r *Request) Context() context.Context { return r.ctx }

// WithContext returns a shallow copy bound to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	clone := *r
	clone.ctx = ctx
	return &clone
}

// User returns the authenticated caller, or nil for anonymous requests.
func (r *Request) User() *sec.AuthClaims { return r.user }

// UserID returns the caller's id, or "" for anonymous requests.
func (r *Request) UserID() string {
	if r.user == nil {
		return ""
	}
	return r.user.UserID
}

// # Body Input

// Input returns the body value for key and whether the key was sent.
func (r *Request) Input(key string) (any, bool) {
	value, ok := r.input[key]
	return value, ok
}

// Exists reports whether the body carries key, even with a null value.
func (r *Request) Exists(key string) bool {
	_, ok := r.input[key]
	return ok
}

// InputMap returns the raw decoded body.
func (r *Request) InputMap() map[string]any { return r.input }

// # Query String

// Param returns a trimmed query parameter.
func (r *Request) Param(key string) string {
	return strings.TrimSpace(r.query.Get(key))
}

// ParamInt returns an integer query parameter or def.
func (r *Request) ParamInt(key string, def int) int {
	return convert.ToIntD(r.Param(key), def)
}

// Query returns the raw query values.
func (r *Request) Query() url.Values { return r.query }

// Filters extracts "filters[key]=value" query parameters into a map.
func (r *Request) Filters() map[string]string {
	filters := make(map[string]string)
	for key, values := range r.query {
		if !strings.HasPrefix(key, "filters[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		name := key[len("filters[") : len(key)-1]
		if name == "" || values[0] == "" {
			continue
		}
		filters[name] = values[0]
	}
	return filters
}
