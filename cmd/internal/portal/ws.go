package portal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"

	"gymgate/cmd/internal/session"
)

const (
	wsSubprotocol = "gymgate.session.v1"

	wsDefaultWriteTimeout = 5 * time.Second
)

// SessionFeed pushes a redacted session snapshot to connected dashboards
// whenever the operator session changes (login, logout, permission refresh).
// The feed is one-way; client frames are read only to detect close.
type SessionFeed struct {
	log      *slog.Logger
	sessions Sessions

	// Derived for websocket.Accept origin checks. Accept authorizes
	// same-host origins by default; cross-origin needs OriginPatterns.
	originPatterns []string

	writeTimeout time.Duration
}

func NewSessionFeed(log *slog.Logger, sessions Sessions, allowedOrigins []string) *SessionFeed {
	if log == nil {
		log = slog.Default()
	}
	return &SessionFeed{
		log:            log,
		sessions:       sessions,
		originPatterns: originPatterns(allowedOrigins),
		writeTimeout:   wsDefaultWriteTimeout,
	}
}

func (f *SessionFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{wsSubprotocol},
		OriginPatterns: f.originPatterns,
	})
	if err != nil {
		f.log.Info("ws.accept.fail", "err", err, "origin", r.Header.Get("Origin"))
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if sp := conn.Subprotocol(); sp != wsSubprotocol {
		f.log.Info("ws.reject.subprotocol", "got", sp, "want", wsSubprotocol)
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}

	updates, cancel := f.sessions.Subscribe()
	defer cancel()

	// CloseRead discards inbound frames and cancels the context when the
	// peer goes away.
	ctx := conn.CloseRead(r.Context())

	if err := f.send(ctx, conn, f.sessions.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			if err := f.send(ctx, conn, snap); err != nil {
				return
			}
		}
	}
}

func (f *SessionFeed) send(ctx context.Context, conn *websocket.Conn, snap session.Session) error {
	b, err := json.Marshal(newSessionResponse(snap))
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, f.writeTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, b); err != nil {
		f.log.Info("ws.write.fail", "err", err)
		return err
	}
	return nil
}

func originPatterns(allowed []string) []string {
	seen := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		h := originHost(a)
		if h == "" || h == "*" {
			continue
		}
		seen[h] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	return out
}

func originHost(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Host
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(s)
}
