package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gymgate/cmd/security/seal"
)

// FileStore persists session state as a JSON file on the local machine
// (the front-desk deployment default). Writes are atomic (temp + rename)
// and the file is created mode 0600 since it holds a bearer token.
//
// When a passphrase is set the file content is sealed at rest with
// argon2id + XChaCha20-Poly1305 (see cmd/security/seal).
type FileStore struct {
	path       string
	passphrase string
}

// NewFileStore builds a plaintext-JSON file store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewSealedFileStore builds a file store whose content is encrypted at rest.
func NewSealedFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (f *FileStore) Load(_ context.Context) (State, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("session: read state file: %w", err)
	}

	if f.passphrase != "" {
		raw, err = seal.Open(raw, f.passphrase)
		if err != nil {
			return State{}, fmt.Errorf("session: unseal state file: %w", err)
		}
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("session: decode state file: %w", err)
	}
	return st, nil
}

func (f *FileStore) Save(_ context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session: encode state: %w", err)
	}

	if f.passphrase != "" {
		raw, err = seal.Seal(raw, f.passphrase)
		if err != nil {
			return fmt.Errorf("session: seal state: %w", err)
		}
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".gymgate-state-*")
	if err != nil {
		return fmt.Errorf("session: temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: write state file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: chmod state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: close state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("session: replace state file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove state file: %w", err)
	}
	return nil
}
