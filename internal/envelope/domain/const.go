// Package domain defines the wire format and domain-separation conventions for the
// citadel envelope: a versioned, self-describing hybrid-KEM + AEAD ciphertext frame.
package domain

const (
	// WireVersion is the only supported frame version. Decode rejects any other byte.
	WireVersion byte = 0x01

	// SuiteKEM identifies the hybrid KEM suite: X25519 + ML-KEM-768.
	SuiteKEM byte = 0xA3

	// SuiteAEAD identifies the AEAD suite: AES-256-GCM.
	SuiteAEAD byte = 0xB1

	// FlagsReserved is the only defined value for the flags byte; nonzero values
	// are rejected at decode. Reserved for future streaming/alternate-AEAD signaling.
	FlagsReserved byte = 0x00

	// ClassicalPublicKeySize is the X25519 public key size in bytes.
	ClassicalPublicKeySize = 32

	// ClassicalSecretKeySize is the X25519 private key size in bytes.
	ClassicalSecretKeySize = 32

	// ClassicalSharedSecretSize is the X25519 ECDH shared-secret size in bytes.
	ClassicalSharedSecretSize = 32

	// LatticeEncapsulationKeySize is the ML-KEM-768 encapsulation (public) key size.
	LatticeEncapsulationKeySize = 1184

	// LatticeDecapsulationKeySize is the ML-KEM-768 decapsulation (secret) key size.
	LatticeDecapsulationKeySize = 2400

	// LatticeCiphertextSize is the ML-KEM-768 ciphertext size in bytes.
	LatticeCiphertextSize = 1088

	// LatticeSharedSecretSize is the ML-KEM-768 shared-secret size in bytes.
	LatticeSharedSecretSize = 32

	// HybridPublicKeySize is the combined hybrid public key size: classical || lattice.
	HybridPublicKeySize = ClassicalPublicKeySize + LatticeEncapsulationKeySize // 1216

	// HybridSecretKeySize is the combined hybrid secret key size: classical || lattice.
	HybridSecretKeySize = ClassicalSecretKeySize + LatticeDecapsulationKeySize // 2432

	// HybridSharedSecretSize is the concatenated shared-secret size: ss_c || ss_l.
	HybridSharedSecretSize = ClassicalSharedSecretSize + LatticeSharedSecretSize // 64

	// KEMCiphertextSize is the combined KEM ciphertext size: classical_eph_pk || lattice_ct.
	KEMCiphertextSize = ClassicalPublicKeySize + LatticeCiphertextSize // 1120

	// NonceSize is the AES-256-GCM nonce size in bytes.
	NonceSize = 12

	// TagSize is the AES-256-GCM authentication tag size in bytes.
	TagSize = 16

	// HeaderSize is the fixed-size frame header: version|suite_kem|suite_aead|flags|kem_ct_len(2).
	HeaderSize = 6

	// MinFrameSize is the smallest possible valid frame: header + kem ct + nonce + empty-payload tag.
	MinFrameSize = HeaderSize + KEMCiphertextSize + NonceSize + TagSize // 1154

	// AEADKeySize is the derived AEAD key size in bytes (AES-256).
	AEADKeySize = 32

	// KDFInfoPrefix is the fixed label mixed into every HKDF info parameter.
	KDFInfoPrefix = "citadel-env-v1"

	// ContextPrefix is the fixed label for canonical context strings.
	ContextPrefix = "citadel|ctx|v1|"

	// AADPrefix is the fixed label for canonical AAD TLV records.
	AADPrefix = "citadel|aad|v1"

	// AuditGenesisSeed is hashed with SHA-256 to produce the genesis prev_hash of an
	// integrity-chain audit sink.
	AuditGenesisSeed = "citadel-audit-genesis"
)
