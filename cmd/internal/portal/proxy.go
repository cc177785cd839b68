package portal

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewAPIProxy forwards /api/ requests to the academy backend with the
// operator's bearer token injected. Client-supplied Authorization headers
// are dropped; the session service is the only token source. Route guarding
// happens upstream of the proxy, so an unauthenticated request reaching it
// is forwarded without credentials and fails at the backend.
func NewAPIProxy(log *slog.Logger, target *url.URL, sessions Sessions) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = target.Host

			pr.Out.Header.Del("Authorization")
			if snap := sessions.Snapshot(); snap.Authenticated() {
				pr.Out.Header.Set("Authorization", "Bearer "+snap.Token)
			}
			// Hop headers the stdlib does not strip for us.
			pr.Out.Header.Del("Cookie")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("portal.proxy.fail", "err", err, "path", r.URL.Path)
			writeError(w, http.StatusBadGateway, "backend_unavailable", "academy backend unreachable")
		},
	}
	return proxy
}
