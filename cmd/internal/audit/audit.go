// Package audit records front-desk session lifecycle events.
//
// Events carry a ULID id and a token fingerprint (see security/token); raw
// bearer tokens never reach the audit trail. Recording is best-effort: a
// failed insert is logged and the caller proceeds.
package audit

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Recorder receives session lifecycle events from the portal.
type Recorder interface {
	LoginSuccess(ctx context.Context, identifier, role, tokenFP string)
	LoginFailed(ctx context.Context, identifier, reason string)
	Logout(ctx context.Context, role, tokenFP string)
	RefreshOutcome(ctx context.Context, outcome, tokenFP string)
	CheckinRecorded(ctx context.Context, tokenFP, code string)
}

// NewEventID returns a new ULID string (26 chars). ULIDs are
// lexicographically sortable, so the audit table reads in event order.
func NewEventID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Noop discards all events. Used when no database is configured.
type Noop struct{}

func (Noop) LoginSuccess(context.Context, string, string, string) {}

func (Noop) LoginFailed(context.Context, string, string) {}

func (Noop) Logout(context.Context, string, string) {}

func (Noop) RefreshOutcome(context.Context, string, string) {}

func (Noop) CheckinRecorded(context.Context, string, string) {}
