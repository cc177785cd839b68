// Package seal provides encryption-at-rest for the persisted session state
// file. Keys are derived from an operator passphrase with Argon2id and the
// payload is sealed with XChaCha20-Poly1305.
package seal

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Blob layout: magic || salt || nonce || ciphertext.
var magic = []byte("GGSEAL1\x00")

const (
	saltLen = 16

	// Argon2id cost. Sealing happens once per login on a front-desk
	// machine, so moderate parameters are acceptable.
	kdfTime    = 3
	kdfMemKiB  = 64 * 1024
	kdfThreads = 1
)

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemKiB, kdfThreads, chacha20poly1305.KeySize)
}

// Seal encrypts plaintext under a key derived from passphrase.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("seal: salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("seal: aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}

	out := make([]byte, 0, len(magic)+saltLen+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, magic)
	return out, nil
}

// Open decrypts a blob produced by Seal. A wrong passphrase or a tampered
// blob yields ErrSealOpen; anything that does not look like a sealed blob
// yields ErrSealFormat.
func Open(blob []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	aeadNonce := chacha20poly1305.NonceSizeX
	minLen := len(magic) + saltLen + aeadNonce + chacha20poly1305.Overhead
	if len(blob) < minLen || !bytes.HasPrefix(blob, magic) {
		return nil, ErrSealFormat
	}

	rest := blob[len(magic):]
	salt := rest[:saltLen]
	nonce := rest[saltLen : saltLen+aeadNonce]
	ciphertext := rest[saltLen+aeadNonce:]

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("seal: aead: %w", err)
	}

	plain, err := aead.Open(nil, nonce, ciphertext, magic)
	if err != nil {
		return nil, ErrSealOpen
	}
	return plain, nil
}
