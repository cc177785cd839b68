package portal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"gymgate/cmd/internal/rbac"
	"gymgate/cmd/internal/session"
)

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) sessionResponse {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var ev sessionResponse
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event %q: %v", data, err)
	}
	return ev
}

func TestSessionFeed_PushesStateChanges(t *testing.T) {
	t.Parallel()

	sess := session.New(quietLogger(), session.DefaultConfig(), session.NewMemoryStore(), nil)
	feed := NewSessionFeed(quietLogger(), sess, nil)

	srv := httptest.NewServer(feed)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{wsSubprotocol},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	if ev := readEvent(t, ctx, conn); ev.Authenticated {
		t.Fatalf("initial snapshot should be unauthenticated: %+v", ev)
	}

	sess.Save(context.Background(), "tok-1", rbac.RoleAdmin, "")

	ev := readEvent(t, ctx, conn)
	if !ev.Authenticated || ev.Role != "admin" {
		t.Fatalf("expected authenticated admin event, got %+v", ev)
	}

	sess.Clear(context.Background())

	if ev := readEvent(t, ctx, conn); ev.Authenticated {
		t.Fatalf("logout must push an unauthenticated event: %+v", ev)
	}
}

func TestSessionFeed_NeverSendsToken(t *testing.T) {
	t.Parallel()

	sess := session.New(quietLogger(), session.DefaultConfig(), session.NewMemoryStore(), nil)
	sess.Save(context.Background(), "super-secret-token", rbac.RoleAdmin, "")

	feed := NewSessionFeed(quietLogger(), sess, nil)
	srv := httptest.NewServer(feed)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{wsSubprotocol},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	if strings.Contains(string(data), "super-secret-token") {
		t.Fatalf("feed leaked the bearer token: %s", data)
	}
}

func TestOriginPatterns(t *testing.T) {
	t.Parallel()

	got := originPatterns([]string{
		"http://localhost:3000",
		"https://desk.academy.test",
		"desk.academy.test:8443",
		"",
		"*",
	})

	want := map[string]bool{"localhost": false, "desk.academy.test": false}
	if len(got) != len(want) {
		t.Fatalf("patterns = %v, want hosts %v", got, want)
	}
	for _, h := range got {
		if _, ok := want[h]; !ok {
			t.Fatalf("unexpected pattern %q in %v", h, got)
		}
		want[h] = true
	}
	for h, seen := range want {
		if !seen {
			t.Fatalf("missing pattern %q in %v", h, got)
		}
	}
}
