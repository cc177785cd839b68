package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session state in a single-row table for shared
// deployments where the portal does not own the local disk.
//
// Expected schema (managed externally):
//
//	CREATE TABLE gymgate.session_state (
//	    id            smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
//	    token         text NOT NULL,
//	    role          text NOT NULL,
//	    profile_image text,
//	    updated_at    timestamptz NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed Storage.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("session: nil db pool")
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Load(ctx context.Context) (State, error) {
	var st State
	var profileImage *string

	err := p.pool.QueryRow(ctx, `
		SELECT token, role, profile_image
		FROM gymgate.session_state
		WHERE id = 1
	`).Scan(&st.Token, &st.Role, &profileImage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("session: load state row: %w", err)
	}

	if profileImage != nil {
		st.ProfileImage = *profileImage
	}
	return st, nil
}

func (p *PostgresStore) Save(ctx context.Context, st State) error {
	var profileImage *string
	if st.ProfileImage != "" {
		profileImage = &st.ProfileImage
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO gymgate.session_state (id, token, role, profile_image, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token,
		    role = EXCLUDED.role,
		    profile_image = EXCLUDED.profile_image,
		    updated_at = now()
	`, st.Token, st.Role, profileImage)
	if err != nil {
		return fmt.Errorf("session: save state row: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM gymgate.session_state WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("session: clear state row: %w", err)
	}
	return nil
}
