// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// UserRole is the authorization level of a panel account. Roles are
// ordered: admin ⊃ editor ⊃ viewer.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"  // everything, including permanent deletion
	RoleEditor UserRole = "editor" // create, update, trash and restore
	RoleViewer UserRole = "viewer" // listings, details and exports
)

// Roles lists the known roles from most to least privileged.
func Roles() []UserRole {
	return []UserRole{RoleAdmin, RoleEditor, RoleViewer}
}

// ParseRole validates s as a known role.
func ParseRole(s string) (UserRole, error) {
	role := UserRole(s)
	if role.rank() == 0 {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// AtLeast reports whether r grants everything target grants. Unknown roles
// grant nothing.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.rank() > 0 && r.rank() >= target.rank()
}

func (r UserRole) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}
