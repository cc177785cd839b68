package rbac

import "testing"

func TestHasPermission_ExactMatchOnly(t *testing.T) {
	t.Parallel()

	set := NewSet("users.delete", "users.edit", "attendance.create")

	cases := []struct {
		name string
		set  Set
		perm string
		want bool
	}{
		{name: "present", set: set, perm: "users.delete", want: true},
		{name: "absent", set: set, perm: "offers.create", want: false},
		{name: "no_prefix_match", set: set, perm: "users", want: false},
		{name: "no_wildcard", set: NewSet("users.*"), perm: "users.delete", want: false},
		{name: "case_sensitive", set: set, perm: "Users.Delete", want: false},
		{name: "nil_set", set: nil, perm: "users.delete", want: false},
		{name: "empty_set", set: NewSet(), perm: "users.delete", want: false},
		{name: "blank_name", set: set, perm: "", want: false},
	}

	for _, tc := range cases {
		if got := HasPermission(tc.set, tc.perm); got != tc.want {
			t.Fatalf("%s: HasPermission=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestNewSet_DropsBlanks(t *testing.T) {
	t.Parallel()

	s := NewSet("users.edit", "", "  ", "users.edit")
	if len(s) != 1 {
		t.Fatalf("expected 1 distinct permission, got %d", len(s))
	}
	if !s.Has("users.edit") {
		t.Fatalf("expected users.edit to be present")
	}
}

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{" Admin ", RoleAdmin},
		{"SUPER_ADMIN", RoleSuperAdmin},
		{"superadmin", RoleSuperAdmin},
		{"subscriber", RoleSubscriber},
		{"user", RoleUser},
		{"manager", RoleUnknown},
		{"", RoleUnknown},
	}

	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Fatalf("NormalizeRole(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestRoleIn(t *testing.T) {
	t.Parallel()

	admins := []Role{RoleAdmin, RoleSuperAdmin}

	if !RoleIn(RoleAdmin, admins) {
		t.Fatalf("admin should match admin set")
	}
	if RoleIn(RoleSubscriber, admins) {
		t.Fatalf("subscriber should not match admin set")
	}
	if RoleIn(RoleUnknown, admins) {
		t.Fatalf("unknown role should never match a non-empty set")
	}
	if !RoleIn(RoleUnknown, nil) {
		t.Fatalf("empty requirement should accept any role")
	}
}
