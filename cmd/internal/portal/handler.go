package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gymgate/cmd/internal/audit"
	"gymgate/cmd/internal/backend"
	"gymgate/cmd/internal/rbac"
	"gymgate/cmd/internal/session"
	"gymgate/cmd/security/token"
)

// PermAttendanceCreate gates the QR check-in endpoint.
const PermAttendanceCreate = "attendance.create"

const defaultMaxBodyBytes = 1 << 20

// Backend is the slice of the academy API client the portal needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	Checkin(ctx context.Context, tok, code string) (backend.CheckinResult, error)
}

// Sessions is the slice of the session service the portal needs.
type Sessions interface {
	Save(ctx context.Context, tok string, role rbac.Role, profileImage string)
	Clear(ctx context.Context)
	Snapshot() session.Session
	Subscribe() (<-chan session.Session, func())
}

// Config holds portal handler settings and optional metric hooks.
type Config struct {
	LoginPath    string
	HomePath     string
	MaxBodyBytes int64

	// OnLogin/OnCheckin receive an outcome label per attempt. Nil is fine.
	OnLogin   func(outcome string)
	OnCheckin func(outcome string)
}

// Handler wires the front-desk endpoints to the backend client and the
// session service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	backend  Backend
	sessions Sessions
	audit    audit.Recorder
}

func NewHandler(log *slog.Logger, cfg Config, be Backend, sessions Sessions, rec audit.Recorder) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if be == nil {
		return nil, errors.New("portal: nil backend client")
	}
	if sessions == nil {
		return nil, errors.New("portal: nil session service")
	}
	if rec == nil {
		rec = audit.Noop{}
	}
	if strings.TrimSpace(cfg.LoginPath) == "" {
		cfg.LoginPath = "/login"
	}
	if strings.TrimSpace(cfg.HomePath) == "" {
		cfg.HomePath = "/"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{log: log, cfg: cfg, backend: be, sessions: sessions, audit: rec}, nil
}

// Register wires the unguarded portal routes onto the provided mux. Guarded
// pages and the API proxy are mounted separately by the app.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc(h.cfg.LoginPath, h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/session", h.handleSession)
	mux.HandleFunc("/attendance/checkin", h.handleCheckin)
}

// HomeHandler serves the operator dashboard shell. It carries no session
// data itself; the page pulls state from /session and /ws/session. Mount it
// behind the guard.
func (h *Handler) HomeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(homePage))
	})
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.renderLoginPage(w, r)
	case http.MethodPost:
		h.submitLogin(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) renderLoginPage(w http.ResponseWriter, r *http.Request) {
	// An already signed-in operator goes back to the portal home.
	if h.sessions.Snapshot().Authenticated() {
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, h.cfg.HomePath, http.StatusSeeOther)
		return
	}

	page := loginPage
	if r.URL.Query().Get("error") != "" {
		page = loginPageError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

func (h *Handler) submitLogin(w http.ResponseWriter, r *http.Request) {
	var (
		req    loginRequest
		asJSON = wantsJSON(r)
	)
	if asJSON {
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			h.reportLogin("invalid_request")
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			h.reportLogin("invalid_request")
			h.redirectLoginError(w, r)
			return
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.reportLogin("invalid_request")
		if asJSON {
			writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		} else {
			h.redirectLoginError(w, r)
		}
		return
	}

	ctx := r.Context()
	res, err := h.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrInvalidCredentials):
			h.reportLogin("invalid_credentials")
			h.audit.LoginFailed(ctx, req.Email, "invalid_credentials")
			if asJSON {
				writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			} else {
				h.redirectLoginError(w, r)
			}
		default:
			h.log.Error("portal.login.backend.fail", "err", err)
			h.reportLogin("backend_unavailable")
			h.audit.LoginFailed(ctx, req.Email, "backend_unavailable")
			if asJSON {
				writeError(w, http.StatusBadGateway, "backend_unavailable", "academy backend unreachable")
			} else {
				h.redirectLoginError(w, r)
			}
		}
		return
	}

	role := rbac.NormalizeRole(res.Role)
	h.sessions.Save(ctx, res.Token, role, res.ProfileImage)

	h.reportLogin("success")
	h.audit.LoginSuccess(ctx, req.Email, string(role), token.FingerprintHex(res.Token))
	h.log.Info("portal.login.success", "role", string(role))

	if asJSON {
		writeJSON(w, http.StatusOK, loginResponse{Role: string(role), ProfileImage: res.ProfileImage})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, h.cfg.HomePath, http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	snap := h.sessions.Snapshot()
	h.sessions.Clear(ctx)

	if snap.Authenticated() {
		h.audit.Logout(ctx, string(snap.Role), token.FingerprintHex(snap.Token))
		h.log.Info("portal.logout", "role", string(snap.Role))
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(h.sessions.Snapshot()))
}

func (h *Handler) handleCheckin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap := h.sessions.Snapshot()
	if !snap.Authenticated() {
		h.reportCheckin("unauthenticated")
		writeError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}
	if !rbac.HasPermission(snap.Permissions, PermAttendanceCreate) {
		h.reportCheckin("permission_denied")
		writeError(w, http.StatusForbidden, "permission_denied", "attendance permission required")
		return
	}

	var req checkinRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.reportCheckin("invalid_request")
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		h.reportCheckin("invalid_request")
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	ctx := r.Context()
	res, err := h.backend.Checkin(ctx, snap.Token, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrUnknownCode):
			h.reportCheckin("unknown_code")
			writeError(w, http.StatusNotFound, "unknown_code", "no member for that code")
		case errors.Is(err, backend.ErrUnauthorized):
			h.reportCheckin("unauthorized")
			writeError(w, http.StatusUnauthorized, "unauthorized", "backend rejected the session")
		default:
			h.log.Error("portal.checkin.backend.fail", "err", err)
			h.reportCheckin("backend_unavailable")
			writeError(w, http.StatusBadGateway, "backend_unavailable", "academy backend unreachable")
		}
		return
	}

	h.reportCheckin("success")
	h.audit.CheckinRecorded(ctx, token.FingerprintHex(snap.Token), req.Code)
	writeJSON(w, http.StatusOK, checkinResponse{MemberName: res.MemberName, CheckedInAt: res.CheckedInAt})
}

// ---- helpers ----

func (h *Handler) redirectLoginError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, h.cfg.LoginPath+"?error=1", http.StatusSeeOther)
}

func (h *Handler) reportLogin(outcome string) {
	if h.cfg.OnLogin != nil {
		h.cfg.OnLogin(outcome)
	}
}

func (h *Handler) reportCheckin(outcome string) {
	if h.cfg.OnCheckin != nil {
		h.cfg.OnCheckin(outcome)
	}
}

func wantsJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
