// Package zeroize provides best-effort scrubbing of sensitive byte material
// from memory once it leaves scope. It is used by the envelope engine for
// derived keys and shared secrets, and by the keystore for secret key bytes.
package zeroize

// Bytes overwrites b with zeros in place. Safe to call on a nil slice.
func Bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Sentinel is the fixed byte pattern written into destroyed key material, so
// that "destroyed" versions are trivially distinguishable from "merely
// zeroed" ones during audits while still being useless for decryption.
const Sentinel = 0xFF

// Destroy overwrites b with the destroyed-key sentinel byte in place.
func Destroy(b []byte) {
	for i := range b {
		b[i] = Sentinel
	}
}
