package session

import "context"

// State is the durable key-value record behind the session: the bearer
// token, the role, and a cached profile image URL. It is written and cleared
// as a unit.
type State struct {
	Token        string `json:"token"`
	Role         string `json:"role"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Storage persists session state across process restarts.
//
// Load returns the zero State with a nil error when nothing is persisted;
// absence of state is not an error. Save and Clear are best-effort from the
// service's perspective: a persistence failure is logged, never rolled back.
type Storage interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
	Clear(ctx context.Context) error
}
