// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/admin"
	"github.com/taibuivan/panelkit/internal/panel/controller"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/sec"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/internal/store/storetest"
	"github.com/taibuivan/panelkit/pkg/convert"
)

func newService(t *testing.T) *controller.Service {
	t.Helper()
	service, _ := newServiceWithStore(t)
	return service
}

func newServiceWithStore(t *testing.T) (*controller.Service, store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := storetest.SQLite(t)

	registry := resource.NewRegistry(admin.Policies(policy.Deny))
	dispatcher := observer.NewDispatcher(logger, true)
	require.NoError(t, admin.Register(registry, dispatcher, st))

	return controller.NewService(controller.Options{
		Registry:   registry,
		Store:      st,
		Dispatcher: dispatcher,
		Logger:     logger,
	}), st
}

// as builds a request the way the HTTP layer does, with the caller in the context.
func as(userID string, role sec.UserRole, input map[string]any) *request.Request {
	claims := &sec.AuthClaims{UserID: userID, Role: string(role)}
	return request.New(ctxutil.WithAuthUser(context.Background(), claims), claims, input, nil)
}

func valueOf(t *testing.T, detail *controller.DetailPayload, attribute string) any {
	t.Helper()
	for _, f := range detail.Fields {
		if f.Attribute == attribute {
			return f.Value
		}
	}
	t.Fatalf("field %q not resolved", attribute)
	return nil
}

func statusOf(err error) int {
	if appErr := apperr.As(err); appErr != nil {
		return appErr.HTTPStatus
	}
	return 0
}

func TestResourcesVisiblePerRole(t *testing.T) {
	service := newService(t)

	keys := func(role sec.UserRole) []string {
		var out []string
		for _, meta := range service.Resources(as("u1", role, nil)) {
			out = append(out, meta.URIKey)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"products", "blog-posts"}, keys(sec.RoleViewer))
	assert.ElementsMatch(t, []string{"products", "blog-posts", "users"}, keys(sec.RoleEditor))

	blog, ok := service.Registry().Get("blog-posts")
	require.True(t, ok)
	assert.Equal(t, "Blog Posts", blog.Label())
	assert.Equal(t, "Content", blog.Group())
}

func TestProductObserverNormalizesSKU(t *testing.T) {
	service := newService(t)

	detail, err := service.Store(as("e1", sec.RoleEditor, map[string]any{
		"name":  "Desk",
		"sku":   "  desk-01 ",
		"price": 120,
	}), admin.ProductsKey)
	require.NoError(t, err)
	assert.Equal(t, "DESK-01", valueOf(t, detail, "sku"))
	assert.Equal(t, admin.ProductDraft, valueOf(t, detail, "status"))
}

func TestProductStatusActions(t *testing.T) {
	service := newService(t)
	editor := func(input map[string]any) *request.Request { return as("e1", sec.RoleEditor, input) }

	first, err := service.Store(editor(map[string]any{"name": "Lamp", "price": 30}), admin.ProductsKey)
	require.NoError(t, err)
	second, err := service.Store(editor(map[string]any{"name": "Chair", "price": 80, "status": admin.ProductArchived}), admin.ProductsKey)
	require.NoError(t, err)

	selection := map[string]any{"resources": []any{first.ID, second.ID}}
	result, err := service.RunAction(editor(selection), admin.ProductsKey, "archive")
	require.NoError(t, err)
	assert.Equal(t, "1 of 2 products moved to archived", result.Message)

	detail, err := service.Show(editor(nil), admin.ProductsKey, first.ID.(string))
	require.NoError(t, err)
	assert.Equal(t, admin.ProductArchived, valueOf(t, detail, "status"))

	_, err = service.RunAction(as("v1", sec.RoleViewer, selection), admin.ProductsKey, "publish")
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}

func TestUserPolicy(t *testing.T) {
	service := newService(t)

	created, err := service.Store(as("a1", sec.RoleAdmin, map[string]any{
		"name":     "Mai",
		"email":    "mai@example.com",
		"password": "correct-horse",
		"role":     string(sec.RoleViewer),
	}), "users")
	require.NoError(t, err)
	key := created.ID.(string)
	for _, f := range created.Fields {
		assert.NotEqual(t, "password", f.Attribute)
	}

	t.Run("editors cannot create accounts", func(t *testing.T) {
		_, err := service.Store(as("e1", sec.RoleEditor, map[string]any{
			"name": "Other", "email": "other@example.com", "password": "12345678", "role": "viewer",
		}), "users")
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("viewers update their own account only", func(t *testing.T) {
		detail, err := service.Update(as(key, sec.RoleViewer, map[string]any{"name": "Mai Tran"}), "users", key)
		require.NoError(t, err)
		assert.Equal(t, "Mai Tran", valueOf(t, detail, "name"))

		_, err = service.Update(as("someone-else", sec.RoleViewer, map[string]any{"name": "X"}), "users", key)
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("short passwords are rejected on update", func(t *testing.T) {
		_, err := service.Update(as(key, sec.RoleViewer, map[string]any{"password": "short"}), "users", key)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(err))
		assert.Contains(t, apperr.FieldMessages(err), "password")
	})

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		err := service.Destroy(as(key, sec.RoleAdmin, nil), "users", key)
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})
}

func TestUserBlankPasswordKeepsHash(t *testing.T) {
	service, st := newServiceWithStore(t)
	admin1 := func(input map[string]any) *request.Request { return as("a1", sec.RoleAdmin, input) }

	created, err := service.Store(admin1(map[string]any{
		"name":     "Mai",
		"email":    "mai@example.com",
		"password": "correct-horse",
		"role":     string(sec.RoleViewer),
	}), "users")
	require.NoError(t, err)
	key := created.ID.(string)

	users, ok := service.Registry().Get("users")
	require.True(t, ok)
	before, err := st.Find(context.Background(), users.Model(), key, store.WithTrashed)
	require.NoError(t, err)
	hash := before.Get("password")

	detail, err := service.Update(admin1(map[string]any{"name": "Mai T", "password": ""}), "users", key)
	require.NoError(t, err)
	assert.Equal(t, "Mai T", valueOf(t, detail, "name"))

	after, err := st.Find(context.Background(), users.Model(), key, store.WithTrashed)
	require.NoError(t, err)
	assert.Equal(t, hash, after.Get("password"))
	assert.True(t, sec.VerifyPassword(convert.ToString(after.Get("password")), "correct-horse"))
}

func TestBlogPostObserver(t *testing.T) {
	service := newService(t)

	detail, err := service.Store(as("author-1", sec.RoleEditor, map[string]any{
		"title":  "Hello World",
		"status": admin.PostPublished,
	}), "blog-posts")
	require.NoError(t, err)

	assert.Equal(t, "hello-world", valueOf(t, detail, "slug"))
	assert.Equal(t, "author-1", valueOf(t, detail, "author_id"))
	assert.NotNil(t, valueOf(t, detail, "published_at"))

	draft, err := service.Store(as("author-1", sec.RoleEditor, map[string]any{"title": "Later"}), "blog-posts")
	require.NoError(t, err)
	assert.Nil(t, valueOf(t, draft, "published_at"))
}

func TestBlogPostDraftsHiddenFromViewers(t *testing.T) {
	service := newService(t)
	editor := as("author-1", sec.RoleEditor, map[string]any{"title": "Draft"})

	draft, err := service.Store(editor, "blog-posts")
	require.NoError(t, err)
	_, err = service.Store(as("author-1", sec.RoleEditor, map[string]any{"title": "Live", "status": admin.PostPublished}), "blog-posts")
	require.NoError(t, err)

	viewer := as("v1", sec.RoleViewer, nil)
	payload, meta, err := service.Index(viewer, "blog-posts")
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Total)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "Live", payload.Rows[0].Title)

	_, err = service.Show(viewer, "blog-posts", draft.ID.(string))
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, meta, err = service.Index(as("e1", sec.RoleEditor, nil), "blog-posts")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Total)
}

func TestBlogPostAuthorMayUpdate(t *testing.T) {
	service := newService(t)

	post, err := service.Store(as("author-1", sec.RoleEditor, map[string]any{"title": "Mine", "status": admin.PostPublished}), "blog-posts")
	require.NoError(t, err)
	key := post.ID.(string)

	// The author was demoted to viewer but still owns the post.
	detail, err := service.Update(as("author-1", sec.RoleViewer, map[string]any{"title": "Still mine"}), "blog-posts", key)
	require.NoError(t, err)
	assert.Equal(t, "Still mine", valueOf(t, detail, "title"))

	_, err = service.Update(as("reader", sec.RoleViewer, map[string]any{"title": "Not mine"}), "blog-posts", key)
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}
