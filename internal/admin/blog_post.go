// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"time"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/filter"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/trash"
	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/sec"
	"github.com/taibuivan/panelkit/internal/store"
)

// Blog post statuses.
const (
	PostDraft     = "draft"
	PostPublished = "published"
)

var postStatuses = []field.Option{
	{Value: PostDraft, Label: "Draft"},
	{Value: PostPublished, Label: "Published"},
}

// BlogPostResource is the blog. Viewers only see published posts.
type BlogPostResource struct{}

func (BlogPostResource) Model() entity.Model {
	return entity.Model{
		Table:       "blog_posts",
		Columns:     []string{"title", "slug", "body", "status", "author_id", "published_at"},
		SoftDeletes: true,
		Timestamps:  true,
	}
}

func (BlogPostResource) Title() string { return "title" }
func (BlogPostResource) Group() string { return "Content" }

func (BlogPostResource) Fields(*request.Request) field.Fields {
	return field.Fields{
		field.ID(),
		field.Text("Title").Rules("required", "max:255").UpdateRules("sometimes", "required", "max:255").Sortable().Searchable(),
		field.Slug("Slug", "title").Rules("nullable", "max:255").HideFromIndex(),
		field.Markdown("Body").Nullable(),
		field.Select("Status").WithOptions(postStatuses...).Rules("sometimes", "in:draft,published"),
		field.DateTime("Published At", "published_at").Nullable(),
		field.Text("Author", "author_id").Readonly().ExceptOnForms().HideFromIndex(),
	}
}

func (BlogPostResource) Filters(*request.Request) []resource.Filter {
	return []resource.Filter{
		filter.Select("Status", "status", postStatuses...),
		filter.Trashed(),
	}
}

// IndexQuery hides unpublished posts from readers.
func (BlogPostResource) IndexQuery(req *request.Request, q *store.Query) {
	if !canEdit(req.User()) {
		q.Where("status", PostPublished)
	}
}

// DetailQuery applies the same scope as the index.
func (r BlogPostResource) DetailQuery(req *request.Request, q *store.Query) {
	r.IndexQuery(req, q)
}

func (BlogPostResource) TrashConfig() trash.Config { return trash.Config{RetentionDays: 14} }

func (BlogPostResource) ExportConfig() export.Config {
	return export.Config{Fields: []string{"title", "slug", "status", "published_at"}}
}

func canEdit(user *sec.AuthClaims) bool {
	return user != nil && user.UserRole().AtLeast(sec.RoleEditor)
}

// isAuthor reports whether user wrote subject.
func isAuthor(user *sec.AuthClaims, subject *entity.Record) bool {
	return subject != nil && subject.Get("author_id") == user.UserID
}

// BlogPostPolicy follows the role rules, and lets authors edit their own
// posts whatever their role.
func BlogPostPolicy() policy.Rules {
	editor := policy.HasRole(sec.RoleEditor)
	return policy.RolePolicy().Merge(policy.Rules{
		policy.Update: func(ctx context.Context, user *sec.AuthClaims, subject *entity.Record) bool {
			return isAuthor(user, subject) || editor(ctx, user, subject)
		},
	})
}

// BlogPostObserver stamps the author on creation and the publication time
// when a post first becomes published.
type BlogPostObserver struct {
	now func() time.Time
}

func (observerImpl BlogPostObserver) Handle(ctx context.Context, event observer.Event, record *entity.Record) error {
	switch event {
	case observer.Creating:
		if record.Get("status") == nil {
			record.Set("status", PostDraft)
		}
		if record.Get("author_id") == nil {
			if user := ctxutil.GetAuthUser(ctx); user != nil {
				record.Set("author_id", user.UserID)
			}
		}
		observerImpl.stampPublication(record)
	case observer.Updating:
		observerImpl.stampPublication(record)
	}
	return nil
}

func (observerImpl BlogPostObserver) stampPublication(record *entity.Record) {
	if record.Get("status") != PostPublished || record.Get("published_at") != nil {
		return
	}
	now := time.Now
	if observerImpl.now != nil {
		now = observerImpl.now
	}
	record.Set("published_at", now().UTC())
}
