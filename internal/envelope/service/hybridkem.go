package service

import (
	"crypto/ecdh"
	"crypto/rand"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"

	"github.com/allisson/citadel/internal/envelope/domain"
)

// hybridKEM composes an X25519 classical channel with an ML-KEM-768 lattice
// channel into a single (pk, sk, ct, ss) KEM.
//
// The composed secret is safe as long as either primitive remains IND-CCA:
// the two shared secrets are concatenated (not XORed) and fed to HKDF-SHA-256
// downstream, which inherits the security of the stronger half.
type hybridKEM struct{}

func newHybridKEM() *hybridKEM { return &hybridKEM{} }

// generateKeypair returns a hybrid public key (classical_pk(32) ∥ lattice_ek(1184))
// and a hybrid secret key (classical_sk(32) ∥ lattice_dk(2400)).
func (h *hybridKEM) generateKeypair() (pk, sk []byte, err error) {
	classicalPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	latticePub, latticePriv, err := mlkem768.Scheme().GenerateKeyPair()
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}
	latticePubBytes, err := latticePub.MarshalBinary()
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}
	latticePrivBytes, err := latticePriv.MarshalBinary()
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	pk = make([]byte, 0, domain.HybridPublicKeySize)
	pk = append(pk, classicalPriv.PublicKey().Bytes()...)
	pk = append(pk, latticePubBytes...)

	sk = make([]byte, 0, domain.HybridSecretKeySize)
	sk = append(sk, classicalPriv.Bytes()...)
	sk = append(sk, latticePrivBytes...)

	return pk, sk, nil
}

// encapsulate samples an ephemeral classical keypair and a lattice
// encapsulation, returning a 64-byte shared secret (ss_c ∥ ss_l) and a
// 1120-byte KEM ciphertext (ephemeral classical pk ∥ lattice ciphertext).
func (h *hybridKEM) encapsulate(pk []byte) (sharedSecret, kemCiphertext []byte, err error) {
	if len(pk) != domain.HybridPublicKeySize {
		return nil, nil, domain.ErrSealFailed
	}

	classicalPub, err := ecdh.X25519().NewPublicKey(pk[:domain.ClassicalPublicKeySize])
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	ephemeral, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	ssClassical, err := ephemeral.ECDH(classicalPub)
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	latticePub, err := mlkem768.Scheme().UnmarshalBinaryPublicKey(pk[domain.ClassicalPublicKeySize:])
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	latticeCiphertext, ssLattice, err := mlkem768.Scheme().Encapsulate(latticePub)
	if err != nil {
		return nil, nil, domain.ErrSealFailed
	}

	sharedSecret = make([]byte, 0, domain.HybridSharedSecretSize)
	sharedSecret = append(sharedSecret, ssClassical...)
	sharedSecret = append(sharedSecret, ssLattice...)

	kemCiphertext = make([]byte, 0, domain.KEMCiphertextSize)
	kemCiphertext = append(kemCiphertext, ephemeral.PublicKey().Bytes()...)
	kemCiphertext = append(kemCiphertext, latticeCiphertext...)

	return sharedSecret, kemCiphertext, nil
}

// decapsulate splits a KEM ciphertext into its classical and lattice halves
// and recovers the 64-byte shared secret. Any parse or decapsulation failure
// returns the uniform opaque open error.
func (h *hybridKEM) decapsulate(sk, kemCiphertext []byte) ([]byte, error) {
	if len(sk) != domain.HybridSecretKeySize || len(kemCiphertext) != domain.KEMCiphertextSize {
		return nil, domain.ErrOpenFailed
	}

	classicalPriv, err := ecdh.X25519().NewPrivateKey(sk[:domain.ClassicalSecretKeySize])
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	ephemeralPub, err := ecdh.X25519().NewPublicKey(kemCiphertext[:domain.ClassicalPublicKeySize])
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	ssClassical, err := classicalPriv.ECDH(ephemeralPub)
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	latticePriv, err := mlkem768.Scheme().UnmarshalBinaryPrivateKey(sk[domain.ClassicalSecretKeySize:])
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	ssLattice, err := mlkem768.Scheme().Decapsulate(latticePriv, kemCiphertext[domain.ClassicalPublicKeySize:])
	if err != nil {
		return nil, domain.ErrOpenFailed
	}

	sharedSecret := make([]byte, 0, domain.HybridSharedSecretSize)
	sharedSecret = append(sharedSecret, ssClassical...)
	sharedSecret = append(sharedSecret, ssLattice...)
	return sharedSecret, nil
}
