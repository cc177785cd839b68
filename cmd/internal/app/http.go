package app

import (
	"net/http"
	"time"
)

// routes assembles the full portal mux. Exact paths (login, logout,
// session, checkin, ws, health) win over the guarded prefix mounts.
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.ReadinessRequireDB && !a.dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if a.dbEnabled && a.dbPool != nil {
			if err := PingDB(r.Context(), a.dbPool, 2*time.Second); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				a.log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	mux.Handle("/metrics", a.metrics.Handler())

	a.portal.Register(mux)
	mux.Handle("/ws/session", a.feed)

	rootMounted := false
	seen := make(map[string]bool, len(a.policy.Routes))
	for _, rt := range a.policy.Routes {
		if seen[rt.Prefix] {
			a.log.Warn("routes.policy.duplicate_prefix", "prefix", rt.Prefix)
			continue
		}
		seen[rt.Prefix] = true

		next := a.handlerForPrefix(rt.Prefix)
		mux.Handle(rt.Prefix, a.guard.Protect(next, rt.Roles...))
		if rt.Prefix == "/" {
			rootMounted = true
		}
	}

	// Dashboard home for any authenticated operator, unless the policy
	// already claimed the root.
	if !rootMounted {
		mux.Handle("/", a.guard.Protect(a.portal.HomeHandler()))
	}

	return mux
}

// handlerForPrefix maps a guarded prefix to its content: the backend proxy
// for the API subtree, the dashboard shell for everything else.
func (a *App) handlerForPrefix(prefix string) http.Handler {
	if prefix == "/api/" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.metrics.ProxyRequest()
			a.proxy.ServeHTTP(w, r)
		})
	}
	return a.portal.HomeHandler()
}
