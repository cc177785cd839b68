// Package app wires the gymgate runtime: config, logging, durable session
// state, the academy backend client, the route guard, and HTTP serving.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gymgate/cmd/internal/audit"
	"gymgate/cmd/internal/backend"
	"gymgate/cmd/internal/guard"
	"gymgate/cmd/internal/portal"
	"gymgate/cmd/internal/session"
	"gymgate/cmd/security/token"
)

// Store is a small app-level lifecycle abstraction for resources that need
// a graceful close.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for file-backed state.
type nopStore struct{}

func (nopStore) Close(context.Context) error { return nil }

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// App is the gymgate runtime: it owns the HTTP wiring and the singleton
// operator session.
type App struct {
	cfg Config
	log Logger

	store     Store
	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics  *Metrics
	sessions *session.Service
	backend  *backend.Client
	policy   guard.Policy
	guard    *guard.Guard
	portal   *portal.Handler
	feed     *portal.SessionFeed
	proxy    http.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}
	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	st, dbPool, dbEnabled, storage, recorder, err := newStateStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	be, err := backend.New(log, cfg.BackendURL, cfg.BackendTimeout)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	metrics := NewMetrics()

	// sessions is captured by the refresh hook before assignment; refreshes
	// only fire after Hydrate or Save, when it is set.
	var sessions *session.Service
	sessCfg := session.Config{
		RefreshTimeout: cfg.PermissionRefreshTimeout,
		TokenExpiry:    backend.TokenExpiry,
		OnRefresh: func(outcome string) {
			metrics.RefreshOutcome(outcome)

			fp := ""
			if snap := sessions.Snapshot(); snap.Authenticated() {
				fp = token.FingerprintHex(snap.Token)
			}
			recorder.RefreshOutcome(context.Background(), outcome, fp)
		},
	}
	sessions = session.New(log, sessCfg, storage, be)

	policy := guard.DefaultPolicy()
	if cfg.RoutePolicyFile != "" {
		policy, err = guard.LoadPolicy(cfg.RoutePolicyFile)
		if err != nil {
			_ = st.Close(context.Background())
			return nil, err
		}
	}

	g := guard.New(sessions, policy.LoginPath, guard.WithDecisionHook(metrics.GuardDecision))

	ph, err := portal.NewHandler(log, portal.Config{
		LoginPath:    policy.LoginPath,
		MaxBodyBytes: cfg.MaxBodyBytes,
		OnLogin:      metrics.LoginOutcome,
		OnCheckin:    metrics.CheckinOutcome,
	}, be, sessions, recorder)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		metrics:   metrics,
		sessions:  sessions,
		backend:   be,
		policy:    policy,
		guard:     g,
		portal:    ph,
		feed:      portal.NewSessionFeed(log, sessions, cfg.WSAllowedOrigins),
		proxy:     portal.NewAPIProxy(log, be.BaseURL(), sessions),
	}, nil
}

// Run hydrates the session, starts the HTTP server, and blocks until
// context cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	a.sessions.Hydrate(ctx)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(a.routes(), a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"backend", a.backend.BaseURL().String(),
		"db_enabled", a.dbEnabled,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStateStore decides where session state and audit events live:
// Postgres when a database URL is configured, a state file otherwise
// (sealed at rest when a passphrase is set).
func newStateStore(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, bool, session.Storage, audit.Recorder, error) {
	if cfg.DatabaseURL == "" {
		if cfg.StatePassphrase != "" {
			log.Info("state.store.sealed_file", "path", cfg.StateFile)
			return nopStore{}, nil, false, session.NewSealedFileStore(cfg.StateFile, cfg.StatePassphrase), audit.Noop{}, nil
		}
		log.Info("state.store.file", "path", cfg.StateFile)
		return nopStore{}, nil, false, session.NewFileStore(cfg.StateFile), audit.Noop{}, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, nil, nil, err
	}

	stateStore, err := session.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}

	log.Info("state.store.postgres")
	return dbStore{pool: pool}, pool, true, stateStore, audit.NewPostgresRecorder(log, pool), nil
}
