package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	// Academy backend the portal fronts.
	BackendURL     string
	BackendTimeout time.Duration

	// Durable session state. The file store is the default; a configured
	// DatabaseURL switches state and audit to Postgres. A passphrase seals
	// the file at rest.
	StateFile       string
	StatePassphrase string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Route guard policy. Empty file path means the built-in defaults.
	RoutePolicyFile string

	PermissionRefreshTimeout time.Duration

	WSAllowedOrigins []string

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// If true, GYMGATE_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) so audit
	// fingerprints are keyed.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("GYMGATE_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("GYMGATE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("GYMGATE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("GYMGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("GYMGATE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("GYMGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("GYMGATE_HTTP_MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:   EnvInt64("GYMGATE_HTTP_MAX_BODY_BYTES", 1<<20),

		BackendURL:     EnvString("GYMGATE_BACKEND_URL", "http://localhost:8000"),
		BackendTimeout: EnvDuration("GYMGATE_BACKEND_TIMEOUT", 10*time.Second),

		StateFile:       EnvString("GYMGATE_STATE_FILE", "gymgate-session.json"),
		StatePassphrase: EnvString("GYMGATE_STATE_PASSPHRASE", ""),

		DatabaseURL: EnvString("GYMGATE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("GYMGATE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("GYMGATE_DB_MIN_CONNS", 0),

		RoutePolicyFile: EnvString("GYMGATE_ROUTE_POLICY", ""),

		PermissionRefreshTimeout: EnvDuration("GYMGATE_PERMISSION_REFRESH_TIMEOUT", 10*time.Second),

		WSAllowedOrigins: EnvCSV("GYMGATE_WS_ALLOWED_ORIGINS", "http://localhost,http://127.0.0.1"),

		ReadinessRequireDB: EnvBool("GYMGATE_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("GYMGATE_REQUIRE_TOKEN_HMAC", false),
	}
}
