package token

import (
	"errors"
	"testing"
)

func TestFingerprintHex_SHAFallback(t *testing.T) {
	t.Setenv(HMACEnvKey, "")

	fp := FingerprintHex("abc123")
	if len(fp) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(fp))
	}
	if fp != FingerprintHex("abc123") {
		t.Fatalf("fingerprint must be stable for the same token")
	}
	if fp == FingerprintHex("abc124") {
		t.Fatalf("different tokens must not collide trivially")
	}
}

func TestFingerprintHex_HMACMode(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	plain := FingerprintHex("abc123")

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	keyed := FingerprintHex("abc123")

	if plain == keyed {
		t.Fatalf("HMAC mode must change the fingerprint")
	}
	if len(keyed) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(keyed))
	}
}

func TestHMACKeyFromEnv(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); !errors.Is(err, ErrHMACKeyMissing) {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); !errors.Is(err, ErrHMACKeyTooShort) {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	key, err := HMACKeyFromEnv(32)
	if err != nil || len(key) != 32 {
		t.Fatalf("HMACKeyFromEnv = %d bytes, %v; want 32, nil", len(key), err)
	}
}
