package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/allisson/citadel/internal/envelope/domain"
)

// deriveKey implements the envelope's key derivation function:
//
//	info = "citadel-env-v1" || "|aes|" || SHA3-256(kem_ciphertext) || context
//	key  = HKDF-SHA-256(ikm = sharedSecret, salt = empty, info = info, L = 32)
//
// Hashing the KEM ciphertext into info cheaply binds the transcript; binding
// context into the derived key (rather than only passing it as AAD) means a
// wrong context fails at the AEAD tag with zero information leaked about
// which input was wrong.
func deriveKey(sharedSecret, kemCiphertext, context []byte) ([]byte, error) {
	transcriptHash := sha3.Sum256(kemCiphertext)

	info := make([]byte, 0, len(domain.KDFInfoPrefix)+5+len(transcriptHash)+len(context))
	info = append(info, domain.KDFInfoPrefix...)
	info = append(info, "|aes|"...)
	info = append(info, transcriptHash[:]...)
	info = append(info, context...)

	reader := hkdf.New(sha256.New, sharedSecret, nil, info)

	key := make([]byte, domain.AEADKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, domain.ErrSealFailed
	}
	return key, nil
}
