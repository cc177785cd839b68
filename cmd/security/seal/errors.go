package seal

import "errors"

var (
	// ErrPassphraseRequired is returned when sealing or opening without a passphrase.
	ErrPassphraseRequired = errors.New("passphrase required")

	// ErrSealFormat is returned for input that is not a sealed blob.
	ErrSealFormat = errors.New("not a sealed blob")

	// ErrSealOpen is returned when decryption fails (wrong passphrase or tampered data).
	ErrSealOpen = errors.New("seal open failed")
)
