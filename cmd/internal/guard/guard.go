// Package guard gates access to portal route subtrees based on session
// presence and role membership.
//
// A denied request is control flow, not an error: the client is redirected
// to the login entry point, and an under-privileged role is deliberately
// indistinguishable from a missing session. Every request is evaluated
// against a fresh session snapshot, so a logout revokes access to a
// "mounted" route on its next evaluation.
package guard

import (
	"net/http"

	"gymgate/cmd/internal/rbac"
	"gymgate/cmd/internal/session"
)

// Sessions is the read surface the guard needs from the session service.
type Sessions interface {
	Snapshot() session.Session
}

// Guard wraps handlers with authentication and role checks.
type Guard struct {
	sessions   Sessions
	loginPath  string
	onDecision func(allowed bool)
}

// Option configures optional Guard behavior.
type Option func(*Guard)

// WithDecisionHook observes every guard decision (for metrics).
func WithDecisionHook(fn func(allowed bool)) Option {
	return func(g *Guard) { g.onDecision = fn }
}

// New constructs a Guard redirecting denied requests to loginPath.
func New(sessions Sessions, loginPath string, opts ...Option) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	g := &Guard{sessions: sessions, loginPath: loginPath}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Protect returns a handler that serves next only when the current session
// is authenticated and, if roles is non-empty, its role is a member.
// Otherwise it redirects to the login path with 303 See Other and
// Cache-Control: no-store, so the guarded page cannot be revisited from
// history or cache after logout.
func (g *Guard) Protect(next http.Handler, roles ...rbac.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := g.sessions.Snapshot()

		if !snap.Authenticated() || !rbac.RoleIn(snap.Role, roles) {
			g.decide(false)
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			return
		}

		g.decide(true)
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) decide(allowed bool) {
	if g.onDecision != nil {
		g.onDecision(allowed)
	}
}
