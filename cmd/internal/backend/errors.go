package backend

import "errors"

var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when the backend rejects the bearer token.
	ErrUnauthorized = errors.New("token not accepted")

	// ErrUnknownCode is returned when a scanned QR code matches no member.
	ErrUnknownCode = errors.New("unknown attendance code")

	// ErrUnavailable wraps transport failures and unexpected backend responses.
	ErrUnavailable = errors.New("backend unavailable")
)
