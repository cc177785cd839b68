package guard

import (
	"fmt"
	"os"
	"strings"

	"gymgate/cmd/internal/rbac"

	"gopkg.in/yaml.v3"
)

// Route maps a path prefix to the roles allowed through it. An empty Roles
// list means any authenticated session qualifies.
type Route struct {
	Prefix string
	Roles  []rbac.Role
}

// Policy is the guard's only configuration surface: the login entry point
// plus the per-prefix role requirements.
type Policy struct {
	LoginPath string
	Routes    []Route
}

// DefaultPolicy protects the admin subtree for administrators and the
// backend proxy for any authenticated session.
func DefaultPolicy() Policy {
	return Policy{
		LoginPath: "/login",
		Routes: []Route{
			{Prefix: "/admin/", Roles: []rbac.Role{rbac.RoleAdmin, rbac.RoleSuperAdmin}},
			{Prefix: "/api/", Roles: nil},
		},
	}
}

type policyFile struct {
	LoginPath string `yaml:"login_path"`
	Routes    []struct {
		Prefix string   `yaml:"prefix"`
		Roles  []string `yaml:"roles"`
	} `yaml:"routes"`
}

// LoadPolicy reads a YAML policy file. Role names must belong to the closed
// role set; an unknown name fails the load rather than silently granting or
// denying at request time.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("guard: read policy: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return Policy{}, fmt.Errorf("guard: parse policy: %w", err)
	}

	p := Policy{LoginPath: strings.TrimSpace(pf.LoginPath)}
	if p.LoginPath == "" {
		p.LoginPath = "/login"
	}

	for _, r := range pf.Routes {
		prefix := strings.TrimSpace(r.Prefix)
		if prefix == "" || !strings.HasPrefix(prefix, "/") {
			return Policy{}, fmt.Errorf("guard: invalid route prefix %q", r.Prefix)
		}

		route := Route{Prefix: prefix}
		for _, name := range r.Roles {
			role := rbac.NormalizeRole(name)
			if role == rbac.RoleUnknown {
				return Policy{}, fmt.Errorf("guard: unknown role %q for route %s", name, prefix)
			}
			route.Roles = append(route.Roles, role)
		}
		p.Routes = append(p.Routes, route)
	}

	if len(p.Routes) == 0 {
		return Policy{}, fmt.Errorf("guard: policy %s declares no routes", path)
	}
	return p, nil
}
