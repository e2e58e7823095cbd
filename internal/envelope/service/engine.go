// Package service implements the citadel envelope: a hybrid KEM (classical
// ECDH + lattice-based ML-KEM-768) composed with AES-256-GCM over a
// versioned, self-describing wire frame.
//
// # Usage
//
//	engine := service.NewEngine()
//	pk, sk, err := engine.GenerateKeypair()
//	ciphertext, err := engine.Seal(pk, plaintext, aad, ctx)
//	plaintext, err := engine.Open(sk, ciphertext, aad, ctx)
//
// Every failure on the Open path — truncated input, a header byte that
// doesn't match the v1 constants, a decapsulation failure, or an AEAD tag
// failure — returns the single domain.ErrOpenFailed value with an identical
// Error() string. No step is allowed to leak which one failed through the
// error channel.
package service

import (
	"github.com/allisson/citadel/internal/envelope/domain"
	"github.com/allisson/citadel/internal/zeroize"
)

// Engine orchestrates the hybrid KEM, KDF, AEAD, and wire codec behind a
// seal/open API. Engine holds no state and is safe for concurrent use.
type Engine struct {
	kem *hybridKEM
}

// NewEngine constructs a stateless envelope engine.
func NewEngine() *Engine {
	return &Engine{kem: newHybridKEM()}
}

// GenerateKeypair produces a fresh hybrid keypair: a 1216-byte public key and
// a 2432-byte secret key.
func (e *Engine) GenerateKeypair() (publicKey, secretKey []byte, err error) {
	return e.kem.generateKeypair()
}

// Seal encrypts plaintext under publicKey, binding aad as AEAD associated
// data and ctx into the derived key via the KDF. The output is exactly
// 1154 + len(plaintext) bytes and differs on every call (fresh ephemeral
// classical keypair and fresh AEAD nonce).
func (e *Engine) Seal(publicKey, plaintext, aad, ctx []byte) ([]byte, error) {
	sharedSecret, kemCiphertext, err := e.kem.encapsulate(publicKey)
	if err != nil {
		return nil, domain.ErrSealFailed
	}
	defer zeroize.Bytes(sharedSecret)

	key, err := deriveKey(sharedSecret, kemCiphertext, ctx)
	if err != nil {
		return nil, domain.ErrSealFailed
	}
	defer zeroize.Bytes(key)

	cipher, err := newAESGCM(key)
	if err != nil {
		return nil, domain.ErrSealFailed
	}

	nonce, aeadCiphertext, err := cipher.seal(plaintext, aad)
	if err != nil {
		return nil, domain.ErrSealFailed
	}

	frame := domain.Frame{
		KEMCiphertext:  kemCiphertext,
		Nonce:          nonce,
		AEADCiphertext: aeadCiphertext,
	}
	return frame.Encode(), nil
}

// Open reverses Seal: decode the frame, decapsulate the KEM ciphertext under
// secretKey, re-derive the AEAD key, and verify+decrypt. Every failure path
// returns domain.ErrOpenFailed, identical across all failure modes.
func (e *Engine) Open(secretKey, ciphertext, aad, ctx []byte) ([]byte, error) {
	frame, err := domain.DecodeFrame(ciphertext)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	sharedSecret, err := e.kem.decapsulate(secretKey, frame.KEMCiphertext)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}
	defer zeroize.Bytes(sharedSecret)

	key, err := deriveKey(sharedSecret, frame.KEMCiphertext, ctx)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}
	defer zeroize.Bytes(key)

	cipher, err := newAESGCM(key)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	plaintext, err := cipher.open(frame.Nonce, frame.AEADCiphertext, aad)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	return plaintext, nil
}
