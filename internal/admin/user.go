// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"strings"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/export"
	"github.com/taibuivan/panelkit/internal/panel/field"
	"github.com/taibuivan/panelkit/internal/panel/filter"
	"github.com/taibuivan/panelkit/internal/panel/policy"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/platform/sec"
	"github.com/taibuivan/panelkit/pkg/slice"
)

var roles = []field.Option{
	{Value: string(sec.RoleAdmin), Label: "Administrator"},
	{Value: string(sec.RoleEditor), Label: "Editor"},
	{Value: string(sec.RoleViewer), Label: "Viewer"},
}

var roleRule = "in:" + strings.Join(slice.Map(sec.Roles(), func(role sec.UserRole) string { return string(role) }), ",")

// UserResource manages panel accounts. Passwords are hashed on fill and
// never resolved.
type UserResource struct{}

func (UserResource) Model() entity.Model {
	return entity.Model{
		Table:      "users",
		Columns:    []string{"name", "email", "password", "role", "timezone", "remember_token"},
		Timestamps: true,
	}
}

func (UserResource) Title() string    { return "name" }
func (UserResource) Search() []string { return []string{"name", "email"} }
func (UserResource) Group() string    { return "Access" }

func (UserResource) Fields(*request.Request) field.Fields {
	return field.Fields{
		field.ID(),
		field.Text("Name").Rules("required", "max:255").UpdateRules("sometimes", "required", "max:255").Sortable(),
		field.Email("Email").
			Rules("required", "email", "max:255").
			UpdateRules("sometimes", "required", "email", "max:255").
			Sortable().Searchable(),
		field.Password("Password").CreationRules("required", "min:8", "max:72").UpdateRules("sometimes", "min:8", "max:72"),
		field.Select("Role").
			WithOptions(roles...).
			Rules("required", roleRule).
			UpdateRules("sometimes", roleRule).
			CanSee(isAdmin),
		field.Timezone("Timezone").Nullable(),
	}
}

func (UserResource) Filters(*request.Request) []resource.Filter {
	return []resource.Filter{filter.Select("Role", "role", roles...)}
}

func (UserResource) ExportConfig() export.Config {
	return export.Config{Fields: []string{"name", "email", "role", "timezone"}}
}

func isAdmin(req *request.Request) bool {
	return req.User() != nil && req.User().UserRole().AtLeast(sec.RoleAdmin)
}

// self reports whether subject is the caller's own account.
func self(user *sec.AuthClaims, subject *entity.Record) bool {
	return subject != nil && subject.KeyString() == user.UserID
}

// UserPolicy lets editors browse accounts and admins manage them. Everyone
// may view and update their own account but nobody deletes it.
func UserPolicy() policy.Rules {
	admin := policy.HasRole(sec.RoleAdmin)
	return policy.Rules{
		policy.ViewAny: policy.HasRole(sec.RoleEditor),
		policy.View: func(ctx context.Context, user *sec.AuthClaims, subject *entity.Record) bool {
			return self(user, subject) || policy.HasRole(sec.RoleEditor)(ctx, user, subject)
		},
		policy.Create: admin,
		policy.Update: func(ctx context.Context, user *sec.AuthClaims, subject *entity.Record) bool {
			return self(user, subject) || admin(ctx, user, subject)
		},
		policy.Delete: func(ctx context.Context, user *sec.AuthClaims, subject *entity.Record) bool {
			return !self(user, subject) && admin(ctx, user, subject)
		},
		policy.Export:    admin,
		policy.RunAction: policy.Never,
	}
}
