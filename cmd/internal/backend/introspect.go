package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry best-effort reads the expiry claim of a backend token.
//
// The backend signs its own tokens; gymgate cannot verify them and does not
// try. The unverified expiry is only used to treat an obviously expired
// persisted token as absent at startup, saving a guaranteed 401 round trip.
// Opaque (non-JWT) tokens and tokens without an exp claim report ok=false
// and stay in play until the backend rejects them.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
