package guard

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gymgate/cmd/internal/rbac"
	"gymgate/cmd/internal/session"
)

func newSessions(t *testing.T) *session.Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := session.New(log, session.DefaultConfig(), session.NewMemoryStore(), nil)
	svc.Hydrate(context.Background())
	return svc
}

func protectedTree() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("protected"))
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestGuard_UnauthenticatedRedirects(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)
	g := New(sessions, "/login")
	h := g.Protect(protectedTree(), rbac.RoleAdmin, rbac.RoleSuperAdmin)

	rr := get(t, h, "/admin/dashboard")

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q, want /login", loc)
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", cc)
	}
	if body := rr.Body.String(); body == "protected" {
		t.Fatalf("protected tree must not render for unauthenticated users")
	}
}

func TestGuard_AuthorizedRoleRenders(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)
	sessions.Save(context.Background(), "abc123", rbac.RoleAdmin, "")

	g := New(sessions, "/login")
	h := g.Protect(protectedTree(), rbac.RoleAdmin, rbac.RoleSuperAdmin)

	rr := get(t, h, "/admin/dashboard")
	if rr.Code != http.StatusOK || rr.Body.String() != "protected" {
		t.Fatalf("authorized request: status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestGuard_WrongRoleIndistinguishableFromMissingSession(t *testing.T) {
	t.Parallel()

	anon := newSessions(t)
	member := newSessions(t)
	member.Save(context.Background(), "abc123", rbac.RoleSubscriber, "")

	hAnon := New(anon, "/login").Protect(protectedTree(), rbac.RoleAdmin)
	hMember := New(member, "/login").Protect(protectedTree(), rbac.RoleAdmin)

	a := get(t, hAnon, "/admin/dashboard")
	b := get(t, hMember, "/admin/dashboard")

	if a.Code != b.Code || a.Header().Get("Location") != b.Header().Get("Location") {
		t.Fatalf("role mismatch must look identical to missing session: %d/%q vs %d/%q",
			a.Code, a.Header().Get("Location"), b.Code, b.Header().Get("Location"))
	}
}

func TestGuard_AnyAuthenticatedWhenNoRolesRequired(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)
	sessions.Save(context.Background(), "abc123", "", "") // backend sent an unrecognized role

	g := New(sessions, "/login")

	if rr := get(t, g.Protect(protectedTree()), "/me/profile"); rr.Code != http.StatusOK {
		t.Fatalf("authenticated-only guard should pass any role, got %d", rr.Code)
	}
	if rr := get(t, g.Protect(protectedTree(), rbac.RoleAdmin), "/admin/"); rr.Code != http.StatusSeeOther {
		t.Fatalf("unknown role must never satisfy a role requirement, got %d", rr.Code)
	}
}

func TestGuard_ReevaluatesAfterLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions := newSessions(t)
	sessions.Save(ctx, "abc123", rbac.RoleAdmin, "")

	h := New(sessions, "/login").Protect(protectedTree(), rbac.RoleAdmin)

	if rr := get(t, h, "/admin/dashboard"); rr.Code != http.StatusOK {
		t.Fatalf("pre-logout request should render, got %d", rr.Code)
	}

	sessions.Clear(ctx)

	if rr := get(t, h, "/admin/dashboard"); rr.Code != http.StatusSeeOther {
		t.Fatalf("logout must revoke access on the next evaluation, got %d", rr.Code)
	}
}

func TestGuard_DecisionHook(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)

	var allowed, denied int
	g := New(sessions, "/login", WithDecisionHook(func(ok bool) {
		if ok {
			allowed++
		} else {
			denied++
		}
	}))
	h := g.Protect(protectedTree())

	get(t, h, "/me")
	sessions.Save(context.Background(), "abc123", rbac.RoleUser, "")
	get(t, h, "/me")

	if denied != 1 || allowed != 1 {
		t.Fatalf("decision hook saw allowed=%d denied=%d, want 1/1", allowed, denied)
	}
}
