package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// KeyId is an opaque stable identifier: 16 bytes rendered as hex. NewKeyID
// takes them from a UUIDv7, so the leading 48 bits are a millisecond
// timestamp and only the remaining bits are random.
type KeyId string

// PolicyId is an opaque stable identifier for a KeyPolicy.
type PolicyId string

// NewKeyID mints a fresh KeyId from a time-ordered UUIDv7's 16 raw bytes,
// rendered as hex rather than the dashed UUID form.
func NewKeyID() KeyId {
	id := uuid.Must(uuid.NewV7())
	raw, _ := id.MarshalBinary()
	return KeyId(hex.EncodeToString(raw))
}
