// Package rbac holds the role and permission primitives shared by the
// session service, the route guard, and the portal handlers.
//
// Roles are a closed enumeration checked by set membership. Permissions are
// flat strings ("users.delete", "attendance.create") tested by exact match;
// there are no wildcards and no hierarchy.
package rbac

import "strings"

// Role is a coarse-grained user category used for route-level gating.
type Role string

const (
	// RoleSubscriber is a gym/academy member.
	RoleSubscriber Role = "subscriber"
	// RoleUser is a basic authenticated account without a membership.
	RoleUser Role = "user"
	// RoleAdmin is an academy administrator.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin is a full administrator.
	RoleSuperAdmin Role = "super_admin"
	// RoleUnknown is used when the backend reports a role outside the
	// closed set. An unknown role still counts as authenticated but never
	// satisfies a role requirement.
	RoleUnknown Role = ""
)

// NormalizeRole canonicalizes a backend-reported role string into the closed
// enumeration. Unrecognized input maps to RoleUnknown.
func NormalizeRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subscriber":
		return RoleSubscriber
	case "user":
		return RoleUser
	case "admin":
		return RoleAdmin
	case "super_admin", "superadmin":
		return RoleSuperAdmin
	default:
		return RoleUnknown
	}
}

// RoleIn reports whether role is a member of allowed. An empty allowed list
// means "any role qualifies" (authentication is checked elsewhere).
// RoleUnknown never matches a non-empty list.
func RoleIn(role Role, allowed []Role) bool {
	if len(allowed) == 0 {
		return true
	}
	if role == RoleUnknown {
		return false
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// Set is an unordered collection of distinct permission names with O(1)
// membership. The zero value (nil) is a valid empty set.
type Set map[string]struct{}

// NewSet builds a Set from permission names. Blank names are dropped.
func NewSet(names ...string) Set {
	if len(names) == 0 {
		return Set{}
	}
	s := make(Set, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is present by exact string match.
// A nil or empty set always reports false.
func (s Set) Has(name string) bool {
	if len(s) == 0 || name == "" {
		return false
	}
	_, ok := s[name]
	return ok
}

// Names returns the permission names in unspecified order.
func (s Set) Names() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	return out
}

// HasPermission is the standalone predicate form of Set.Has.
// It degrades to false for a nil set, an empty set, or a blank name; it
// never panics.
func HasPermission(set Set, name string) bool {
	return set.Has(name)
}
