package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gymgate/cmd/internal/rbac"
)

// PermissionFetcher retrieves the permission set granted to a bearer token.
// The backend API client implements it.
type PermissionFetcher interface {
	MyPermissions(ctx context.Context, token string) ([]string, error)
}

// Session is a read-only snapshot of the current authentication and
// authorization state. An empty Token means "not authenticated".
type Session struct {
	Token        string
	Role         rbac.Role
	Permissions  rbac.Set
	ProfileImage string
}

// Authenticated reports whether a bearer token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

// Service is the single owner of session state. All reads go through
// Snapshot; all writes go through Hydrate, Save, and Clear. Consumers never
// mutate token, role, or permissions directly.
type Service struct {
	log     *slog.Logger
	cfg     Config
	storage Storage
	fetcher PermissionFetcher

	mu       sync.Mutex
	cur      Session
	watchers map[int]chan Session
	nextID   int
}

// New constructs a Service. storage is required; fetcher may be nil, in
// which case permissions stay empty (privileged UI simply never renders).
func New(log *slog.Logger, cfg Config, storage Storage, fetcher PermissionFetcher) *Service {
	if log == nil {
		log = slog.Default()
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultConfig().RefreshTimeout
	}
	return &Service{
		log:      log,
		cfg:      cfg,
		storage:  storage,
		fetcher:  fetcher,
		cur:      Session{Permissions: rbac.Set{}},
		watchers: make(map[int]chan Session),
	}
}

// Hydrate initializes the session from durable storage. Absence of persisted
// state yields an unauthenticated session; so does a load failure or a
// persisted token that is already past its expiry. A recovered token
// triggers an asynchronous permission refresh.
func (s *Service) Hydrate(ctx context.Context) {
	st, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Error("session.hydrate.load.fail", "err", err)
		st = State{}
	}

	if st.Token != "" && s.cfg.TokenExpiry != nil {
		if exp, ok := s.cfg.TokenExpiry(st.Token); ok && !exp.After(time.Now()) {
			s.log.Info("session.hydrate.token_expired")
			if err := s.storage.Clear(ctx); err != nil {
				s.log.Error("session.hydrate.clear.fail", "err", err)
			}
			st = State{}
		}
	}

	s.mu.Lock()
	s.cur = Session{
		Token:        st.Token,
		Role:         rbac.NormalizeRole(st.Role),
		Permissions:  rbac.Set{},
		ProfileImage: st.ProfileImage,
	}
	token := s.cur.Token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	s.scheduleRefresh(token)
}

// Save replaces the session after a successful login: token and role are set
// together, persisted synchronously, and the permission set resets to empty
// until the triggered refresh resolves. This is a trusted internal call; the
// caller has already validated the login response.
func (s *Service) Save(ctx context.Context, token string, role rbac.Role, profileImage string) {
	s.mu.Lock()
	s.cur = Session{
		Token:        token,
		Role:         role,
		Permissions:  rbac.Set{},
		ProfileImage: profileImage,
	}
	// Persist before the refresh goroutine is allowed to read the token,
	// so a resolved refresh never observes a half-written session.
	if err := s.storage.Save(ctx, State{Token: token, Role: string(role), ProfileImage: profileImage}); err != nil {
		s.log.Error("session.save.persist.fail", "err", err)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	s.scheduleRefresh(token)
}

// Clear wipes token, role, and permissions from memory and storage.
// Calling it on an already-empty session is a no-op.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	changed := s.cur.Authenticated() || len(s.cur.Permissions) > 0
	s.cur = Session{Permissions: rbac.Set{}}
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error("session.clear.persist.fail", "err", err)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
}

// Snapshot returns a copy of the current session. The permission set is
// cloned so consumers cannot mutate shared state.
func (s *Service) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() Session {
	snap := s.cur
	snap.Permissions = rbac.NewSet(s.cur.Permissions.Names()...)
	return snap
}

// Subscribe registers a watcher that receives a snapshot after every applied
// state change (login, logout, permission refresh). The returned cancel
// function must be called to release the watcher. Slow receivers miss
// updates rather than blocking the service.
func (s *Service) Subscribe() (<-chan Session, func()) {
	ch := make(chan Session, 8)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Service) notify(snap Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Service) scheduleRefresh(token string) {
	if s.fetcher == nil || token == "" {
		return
	}
	go s.refreshPermissions(token)
}

// refreshPermissions fetches the permission set for the token that triggered
// it. The result is applied only while that token is still current; a logout
// or a newer login supersedes the response and it is dropped, not treated as
// an error. Fetch failures reset the set to empty (fail-closed).
func (s *Service) refreshPermissions(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefreshTimeout)
	defer cancel()

	names, err := s.fetcher.MyPermissions(ctx, token)

	s.mu.Lock()
	if s.cur.Token != token {
		s.mu.Unlock()
		s.log.Info("session.refresh.stale_drop")
		s.reportRefresh(RefreshStaleDrop)
		return
	}

	outcome := RefreshApplied
	if err != nil {
		s.cur.Permissions = rbac.Set{}
		outcome = RefreshFailed
	} else {
		s.cur.Permissions = rbac.NewSet(names...)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("session.refresh.fail", "err", err)
	} else {
		s.log.Info("session.refresh.applied", "permissions", len(snap.Permissions))
	}

	s.notify(snap)
	s.reportRefresh(outcome)
}

func (s *Service) reportRefresh(outcome string) {
	if s.cfg.OnRefresh != nil {
		s.cfg.OnRefresh(outcome)
	}
}
