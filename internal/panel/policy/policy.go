// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package policy answers whether a caller may perform an ability on a resource.

A [Policy] returns a [Decision] per ability. Policies are bound to resource
types through a [Registry], either explicitly or, when enabled, by guessing a
registered policy name from the resource name.

Absence of a policy is resolved by the registry fallback. The default is
[Deny], so a resource nobody wrote a policy for is closed rather than open.
*/
package policy

import (
	"context"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

// # Abilities

// Ability names an operation a policy decides on.
type Ability string

const (
	ViewAny     Ability = "viewAny"
	View        Ability = "view"
	Create      Ability = "create"
	Update      Ability = "update"
	Delete      Ability = "delete"
	Restore     Ability = "restore"
	ForceDelete Ability = "forceDelete"
	Attach      Ability = "attach"
	Detach      Ability = "detach"
	RunAction   Ability = "runAction"
	Export      Ability = "export"
	Import      Ability = "import"
)

// # Decisions

// Decision is the outcome of one policy check.
type Decision int

const (
	// Abstain means the policy has no rule for the ability.
	Abstain Decision = iota
	Allow
	Deny
)

// Policy decides abilities for one resource type.
//
// subject is nil for abilities that do not target a record (viewAny, create).
type Policy interface {
	Decide(ctx context.Context, user *sec.AuthClaims, ability Ability, subject *entity.Record) Decision
}

// RuleFunc decides one ability.
type RuleFunc func(ctx context.Context, user *sec.AuthClaims, subject *entity.Record) bool

// Rules is a [Policy] built from per-ability functions. Abilities without an
// entry abstain.
type Rules map[Ability]RuleFunc

// Decide implements [Policy].
func (rules Rules) Decide(ctx context.Context, user *sec.AuthClaims, ability Ability, subject *entity.Record) Decision {
	rule, ok := rules[ability]
	if !ok {
		return Abstain
	}
	if rule(ctx, user, subject) {
		return Allow
	}
	return Deny
}

// # Common Rules

// Always allows every caller.
func Always(context.Context, *sec.AuthClaims, *entity.Record) bool { return true }

// Never denies every caller.
func Never(context.Context, *sec.AuthClaims, *entity.Record) bool { return false }

// HasRole allows callers holding at least role.
func HasRole(role sec.UserRole) RuleFunc {
	return func(_ context.Context, user *sec.AuthClaims, _ *entity.Record) bool {
		return user != nil && user.UserRole().AtLeast(role)
	}
}

// RolePolicy grants read abilities to viewers, writes to editors and
// permanent deletion to admins.
func RolePolicy() Rules {
	return Rules{
		ViewAny:     HasRole(sec.RoleViewer),
		View:        HasRole(sec.RoleViewer),
		Export:      HasRole(sec.RoleViewer),
		Create:      HasRole(sec.RoleEditor),
		Update:      HasRole(sec.RoleEditor),
		Delete:      HasRole(sec.RoleEditor),
		Restore:     HasRole(sec.RoleEditor),
		RunAction:   HasRole(sec.RoleEditor),
		Attach:      HasRole(sec.RoleEditor),
		Detach:      HasRole(sec.RoleEditor),
		Import:      HasRole(sec.RoleEditor),
		ForceDelete: HasRole(sec.RoleAdmin),
	}
}

// Merge layers overrides on top of rules and returns a new rule set.
func (rules Rules) Merge(overrides Rules) Rules {
	merged := make(Rules, len(rules)+len(overrides))
	for ability, rule := range rules {
		merged[ability] = rule
	}
	for ability, rule := range overrides {
		merged[ability] = rule
	}
	return merged
}
