package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	// Missing file is an empty session, not an error.
	st, err := store.Load(ctx)
	if err != nil || st != (State{}) {
		t.Fatalf("Load on missing file = %+v, %v; want zero state", st, err)
	}

	want := State{Token: "abc123", Role: "admin", ProfileImage: "p.png"}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("state file mode = %o, want 0600", perm)
	}

	got, err := store.Load(ctx)
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v; want %+v", got, err, want)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Clear should remove the state file")
	}
	// Clearing again is a no-op.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("repeated Clear: %v", err)
	}
}

func TestSealedFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.sealed")
	store := NewSealedFileStore(path, "passphrase")

	want := State{Token: "abc123", Role: "super_admin"}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(raw), "abc123") {
		t.Fatalf("sealed state file leaks the token")
	}

	got, err := store.Load(ctx)
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v; want %+v", got, err, want)
	}

	wrong := NewSealedFileStore(path, "other-passphrase")
	if _, err := wrong.Load(ctx); err == nil {
		t.Fatalf("Load with wrong passphrase should fail")
	}
}
