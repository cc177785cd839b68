// Package token digests bearer tokens for audit correlation.
//
// gymgate never persists a plain bearer token outside the session state
// store. Audit records carry only a hex fingerprint: HMAC-SHA256 when
// GYMGATE_TOKEN_HMAC_KEY is set (recommended in production, >= 32 bytes),
// plain SHA-256 otherwise.
package token
