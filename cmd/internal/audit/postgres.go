package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder writes events to gymgate.audit_log.
//
// Expected schema:
//
//	CREATE SCHEMA IF NOT EXISTS gymgate;
//	CREATE TABLE IF NOT EXISTS gymgate.audit_log (
//	  id         CHAR(26) PRIMARY KEY,
//	  action     TEXT NOT NULL,
//	  role       TEXT,
//	  token_fp   TEXT,
//	  meta       JSONB,
//	  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresRecorder struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewPostgresRecorder(log *slog.Logger, pool *pgxpool.Pool) *PostgresRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresRecorder{log: log, pool: pool}
}

func (r *PostgresRecorder) LoginSuccess(ctx context.Context, identifier, role, tokenFP string) {
	r.insert(ctx, "portal.login.success", role, tokenFP, map[string]any{
		"identifier": identifier,
	})
}

func (r *PostgresRecorder) LoginFailed(ctx context.Context, identifier, reason string) {
	r.insert(ctx, "portal.login.failed", "", "", map[string]any{
		"identifier": identifier,
		"reason":     reason,
	})
}

func (r *PostgresRecorder) Logout(ctx context.Context, role, tokenFP string) {
	r.insert(ctx, "portal.logout", role, tokenFP, nil)
}

func (r *PostgresRecorder) RefreshOutcome(ctx context.Context, outcome, tokenFP string) {
	r.insert(ctx, "portal.permissions.refresh", "", tokenFP, map[string]any{
		"outcome": outcome,
	})
}

func (r *PostgresRecorder) CheckinRecorded(ctx context.Context, tokenFP, code string) {
	r.insert(ctx, "portal.attendance.checkin", "", tokenFP, map[string]any{
		"code": code,
	})
}

func (r *PostgresRecorder) insert(ctx context.Context, action, role, tokenFP string, meta map[string]any) {
	if r == nil || r.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	id, err := NewEventID(time.Now().UTC())
	if err != nil {
		r.log.Error("audit.id.fail", "err", err, "action", action)
		return
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO gymgate.audit_log (
			id, action, role, token_fp, created_at, meta
		) VALUES ($1, $2, $3, $4, now(), $5::jsonb)
	`, id, action, trimOrNil(role), trimOrNil(tokenFP), metaVal)
	if err != nil {
		r.log.Error("audit.insert.fail", "err", err, "action", action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
