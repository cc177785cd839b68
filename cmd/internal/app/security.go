package app

import (
	"errors"

	"gymgate/cmd/security/token"
)

// ValidateSecurityConfig enforces the audit fingerprint policy at startup.
// When HMAC is required, a missing or weak key fails fast instead of
// silently degrading to plain SHA-256 fingerprints.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// Minimum 32 bytes for an HMAC-SHA256 secret, measured as raw bytes.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: GYMGATE_REQUIRE_TOKEN_HMAC=true but GYMGATE_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: GYMGATE_REQUIRE_TOKEN_HMAC=true but GYMGATE_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}
	return nil
}
