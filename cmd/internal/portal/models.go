package portal

import (
	"time"

	"gymgate/cmd/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// sessionResponse is the redacted view of the operator session. The bearer
// token never appears in any portal response.
type sessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	Role          string   `json:"role,omitempty"`
	Permissions   []string `json:"permissions"`
	ProfileImage  string   `json:"profile_image,omitempty"`
}

func newSessionResponse(s session.Session) sessionResponse {
	return sessionResponse{
		Authenticated: s.Authenticated(),
		Role:          string(s.Role),
		Permissions:   s.Permissions.Names(),
		ProfileImage:  s.ProfileImage,
	}
}

type checkinRequest struct {
	Code string `json:"code"`
}

type checkinResponse struct {
	MemberName  string    `json:"member_name"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
