package token

import "errors"

// Sentinel errors for fingerprint key configuration.
var (
	ErrHMACKeyMissing  = errors.New("fingerprint HMAC key missing")
	ErrHMACKeyTooShort = errors.New("fingerprint HMAC key too short")
)
