package app

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GYMGATE_TEST_STR", "  value  ")
	t.Setenv("GYMGATE_TEST_BOOL", "true")
	t.Setenv("GYMGATE_TEST_INT", "42")
	t.Setenv("GYMGATE_TEST_DUR", "250ms")
	t.Setenv("GYMGATE_TEST_CSV", "a, b,,c ")

	if got := EnvString("GYMGATE_TEST_STR", "def"); got != "value" {
		t.Fatalf("EnvString = %q", got)
	}
	if got := EnvString("GYMGATE_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("EnvString default = %q", got)
	}
	if !EnvBool("GYMGATE_TEST_BOOL", false) {
		t.Fatalf("EnvBool should be true")
	}
	if got := EnvInt("GYMGATE_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt = %d", got)
	}
	if got := EnvInt64("GYMGATE_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt64 = %d", got)
	}
	if got := EnvInt32("GYMGATE_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt32 = %d", got)
	}
	if got := EnvDuration("GYMGATE_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("EnvDuration = %v", got)
	}

	csv := EnvCSV("GYMGATE_TEST_CSV", "")
	if len(csv) != 3 || csv[0] != "a" || csv[1] != "b" || csv[2] != "c" {
		t.Fatalf("EnvCSV = %v", csv)
	}
}

func TestEnvHelpers_RejectInvalid(t *testing.T) {
	t.Setenv("GYMGATE_TEST_BAD", "nope")

	if EnvBool("GYMGATE_TEST_BAD", false) {
		t.Fatalf("invalid bool must fall back")
	}
	if got := EnvInt("GYMGATE_TEST_BAD", 7); got != 7 {
		t.Fatalf("invalid int must fall back, got %d", got)
	}
	if got := EnvDuration("GYMGATE_TEST_BAD", time.Minute); got != time.Minute {
		t.Fatalf("invalid duration must fall back, got %v", got)
	}

	t.Setenv("GYMGATE_TEST_NEG", "-3")
	if got := EnvInt("GYMGATE_TEST_NEG", 7); got != 7 {
		t.Fatalf("negative int must fall back, got %d", got)
	}
	if got := EnvInt32("GYMGATE_TEST_NEG", 7); got != 7 {
		t.Fatalf("negative int32 must fall back, got %d", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GYMGATE_HTTP_ADDR", "")
	t.Setenv("GYMGATE_BACKEND_URL", "")
	t.Setenv("GYMGATE_DATABASE_URL", "")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr default = %q", cfg.HTTPAddr)
	}
	if cfg.BackendURL != "http://localhost:8000" {
		t.Fatalf("BackendURL default = %q", cfg.BackendURL)
	}
	if cfg.DatabaseURL != "" || cfg.ReadinessRequireDB {
		t.Fatalf("DB must be off by default")
	}
	if cfg.PermissionRefreshTimeout != 10*time.Second {
		t.Fatalf("PermissionRefreshTimeout default = %v", cfg.PermissionRefreshTimeout)
	}
	if len(cfg.WSAllowedOrigins) == 0 {
		t.Fatalf("WSAllowedOrigins must default to localhost")
	}
}
