package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/allisson/citadel/internal/envelope/domain"
	"github.com/allisson/citadel/internal/errors"
)

// aesGCM implements authenticated encryption with AES-256-GCM: a 96-bit
// random nonce per message and a 128-bit tag.
type aesGCM struct {
	aead cipher.AEAD
}

// newAESGCM builds an AES-256-GCM instance from a 32-byte key.
func newAESGCM(key []byte) (*aesGCM, error) {
	if len(key) != domain.AEADKeySize {
		return nil, errors.Wrap(errors.ErrInvalidInput, "aead key must be 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.ErrSealFailed
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, domain.ErrSealFailed
	}

	return &aesGCM{aead: aead}, nil
}

// seal encrypts plaintext under a fresh random nonce, binding aad. Returns
// the nonce and ciphertext (ciphertext includes the trailing tag).
func (a *aesGCM) seal(plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, domain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, domain.ErrSealFailed
	}
	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return nonce, ciphertext, nil
}

// open decrypts ciphertext, verifying the tag against aad. Any failure
// returns the uniform opaque open error — never the underlying cipher error.
func (a *aesGCM) open(nonce, ciphertext, aad []byte) ([]byte, error) {
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}
	return plaintext, nil
}
