package session

import "time"

// Refresh outcomes reported through Config.OnRefresh.
const (
	RefreshApplied   = "applied"
	RefreshFailed    = "failed"
	RefreshStaleDrop = "stale_dropped"
)

// Config tunes the session service.
type Config struct {
	// RefreshTimeout bounds a single permission fetch against the backend.
	RefreshTimeout time.Duration

	// TokenExpiry optionally inspects a persisted token's expiry so that a
	// clearly expired token can be treated as absent during Hydrate. ok is
	// false when no expiry can be determined (opaque tokens stay valid
	// until the backend says otherwise).
	TokenExpiry func(token string) (exp time.Time, ok bool)

	// OnRefresh observes the outcome of each permission refresh
	// (RefreshApplied, RefreshFailed, RefreshStaleDrop). Used for metrics.
	OnRefresh func(outcome string)
}

// DefaultConfig returns development-suitable defaults.
func DefaultConfig() Config {
	return Config{
		RefreshTimeout: 10 * time.Second,
	}
}
