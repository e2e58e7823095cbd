package domain

import "time"

// EncryptedBlob is the persisted envelope around a ciphertext produced by
// the keystore façade: enough to find the key and version that must decrypt
// it, without ever carrying key material itself.
type EncryptedBlob struct {
	KeyID         KeyId     `json:"key_id"`
	KeyVersion    uint      `json:"key_version"`
	CiphertextHex string    `json:"ciphertext_hex"`
	EncryptedAt   time.Time `json:"encrypted_at"`
}
