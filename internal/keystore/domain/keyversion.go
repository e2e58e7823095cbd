package domain

import "time"

// KeyVersion is one append-only entry in a key's version history. Version
// numbers are dense and monotonic starting at 1.
type KeyVersion struct {
	Version      uint
	CreatedAt    time.Time
	PublicBytes  []byte
	SecretBytes  []byte
}
