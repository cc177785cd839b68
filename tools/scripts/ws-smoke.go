// Package main provides a CI-friendly smoke test for the gymgate portal.
//
// It validates:
//   - /healthz responds
//   - /session returns a redacted snapshot without a token field
//   - WebSocket handshake + subprotocol selection on /ws/session
//   - the feed delivers an initial snapshot event
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const (
	subprotocol  = "gymgate.session.v1"
	maxReadBytes = 1 << 20 // 1MiB
)

type sessionEvent struct {
	Authenticated bool     `json:"authenticated"`
	Role          string   `json:"role"`
	Permissions   []string `json:"permissions"`
}

func main() {
	var (
		baseURL = flag.String("base", "http://127.0.0.1:8080", "Portal base URL")
		origin  = flag.String("origin", "http://localhost", "Origin header to send (browser-like WS handshake)")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	base, err := url.Parse(strings.TrimRight(*baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		fatalf("invalid -base: %q", *baseURL)
	}
	if err := validateOrigin(*origin); err != nil {
		fatalf("invalid -origin: %v", err)
	}

	root := context.Background()

	mustHealthz(root, base, *timeout)
	snap := mustSessionSnapshot(root, base, *timeout)
	if *verbose {
		fmt.Printf("session: authenticated=%v role=%q perms=%d\n", snap.Authenticated, snap.Role, len(snap.Permissions))
	}

	ev := mustFeedSnapshot(root, base, *origin, *timeout)
	if ev.Authenticated != snap.Authenticated {
		fatalf("feed/session disagree: feed=%v http=%v", ev.Authenticated, snap.Authenticated)
	}

	fmt.Printf("OK: base=%s authenticated=%v role=%q\n", base, ev.Authenticated, ev.Role)
}

func validateOrigin(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must be http/https, got: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("origin missing host")
	}
	return nil
}

func mustHealthz(parent context.Context, base *url.URL, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String()+"/healthz", nil)
	if err != nil {
		fatalf("healthz request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("healthz: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fatalf("healthz: status=%d", resp.StatusCode)
	}
}

func mustSessionSnapshot(parent context.Context, base *url.URL, stepTimeout time.Duration) sessionEvent {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String()+"/session", nil)
	if err != nil {
		fatalf("session request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("session: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fatalf("session: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if err != nil {
		fatalf("session read: %v", err)
	}
	if strings.Contains(string(body), `"token"`) {
		fatalf("session response leaks a token field: %s", body)
	}

	var snap sessionEvent
	if err := json.Unmarshal(body, &snap); err != nil {
		fatalf("session decode: %v", err)
	}
	return snap
}

func mustFeedSnapshot(parent context.Context, base *url.URL, origin string, stepTimeout time.Duration) sessionEvent {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	wsBase := *base
	switch base.Scheme {
	case "https":
		wsBase.Scheme = "wss"
	default:
		wsBase.Scheme = "ws"
	}

	h := http.Header{}
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsBase.String()+"/ws/session", &websocket.DialOptions{
		Subprotocols: []string{subprotocol},
		HTTPHeader:   h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("ws dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if got := conn.Subprotocol(); got != subprotocol {
		fatalf("subprotocol mismatch: got=%q want=%q", got, subprotocol)
	}
	conn.SetReadLimit(maxReadBytes)

	mt, data, err := conn.Read(ctx)
	if err != nil {
		fatalf("ws read: %v", err)
	}
	if mt != websocket.MessageText {
		fatalf("unexpected message type: %v", mt)
	}
	if strings.Contains(string(data), `"token"`) {
		fatalf("feed event leaks a token field: %s", data)
	}

	var ev sessionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		fatalf("feed decode: %v (%s)", err, data)
	}
	return ev
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
