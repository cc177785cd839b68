// Package backend is the client for the remote academy Backend API: the
// external collaborator that owns accounts, permissions, and attendance.
// gymgate only ever consumes tokens issued by it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// maxResponseBytes bounds how much of a backend response is read.
const maxResponseBytes = 1 << 20

// Client talks to the Backend API over HTTP/JSON.
type Client struct {
	log  *slog.Logger
	base *url.URL
	http *http.Client
}

// New constructs a Client for the given base URL.
func New(log *slog.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		log:  log,
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the parsed backend base URL (used by the reverse proxy).
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// LoginResult is the session material returned by a successful login.
type LoginResult struct {
	Token        string `json:"token"`
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image"`
}

// Login exchanges credentials for a bearer token and role. A rejected
// credential pair yields ErrInvalidCredentials; transport and server
// failures wrap ErrUnavailable. The caller's session state is untouched
// either way.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("backend: encode login: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return LoginResult{}, ErrInvalidCredentials
	default:
		return LoginResult{}, fmt.Errorf("backend: login status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var res LoginResult
	if err := decodeBody(resp.Body, &res); err != nil {
		return LoginResult{}, fmt.Errorf("backend: decode login: %w", err)
	}
	if res.Token == "" {
		return LoginResult{}, fmt.Errorf("backend: login response missing token: %w", ErrUnavailable)
	}
	return res, nil
}

// MyPermissions fetches the permission names granted to token. Callers
// treat any error as "no permissions" (fail-closed); the error itself is
// only for logging.
func (c *Client) MyPermissions(ctx context.Context, token string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/auth/permissions", token, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("backend: permissions status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var res struct {
		Permissions []string `json:"permissions"`
	}
	if err := decodeBody(resp.Body, &res); err != nil {
		return nil, fmt.Errorf("backend: decode permissions: %w", err)
	}
	return res.Permissions, nil
}

// CheckinResult reports an accepted attendance check-in.
type CheckinResult struct {
	MemberName  string    `json:"member_name"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// Checkin relays a scanned QR code to the backend attendance endpoint.
func (c *Client) Checkin(ctx context.Context, token, qrCode string) (CheckinResult, error) {
	body, err := json.Marshal(map[string]string{"code": qrCode})
	if err != nil {
		return CheckinResult{}, fmt.Errorf("backend: encode checkin: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/attendance/checkin", token, bytes.NewReader(body))
	if err != nil {
		return CheckinResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return CheckinResult{}, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return CheckinResult{}, ErrUnknownCode
	default:
		return CheckinResult{}, fmt.Errorf("backend: checkin status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var res CheckinResult
	if err := decodeBody(resp.Body, &res); err != nil {
		return CheckinResult{}, fmt.Errorf("backend: decode checkin: %w", err)
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	u := c.base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w: %v", method, path, ErrUnavailable, err)
	}
	return resp, nil
}

func decodeBody(r io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxResponseBytes))
	return dec.Decode(dst)
}
