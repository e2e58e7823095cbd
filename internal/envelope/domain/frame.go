package domain

import "encoding/binary"

// Frame is the self-describing ciphertext produced by Seal and consumed by Open.
//
// Layout (big-endian):
//
//	version(1) | suite_kem(1) | suite_aead(1) | flags(1) | kem_ct_len(2)
//	  || kem_ciphertext(kem_ct_len) || nonce(12) || aead_ciphertext(>=16)
//
// Frame is a pure value type: Encode/Decode never touch key material and never
// branch on anything secret-dependent, so callers can treat wire parsing as
// structurally separate from the cryptographic oracle-resistance concerns in
// Open.
type Frame struct {
	KEMCiphertext  []byte
	Nonce          []byte
	AEADCiphertext []byte
}

// Encode writes the frame in the exact v1 layout. It does not validate the
// lengths of its inputs beyond what is needed to build the header; the caller
// (the envelope engine) is responsible for supplying correctly sized fields.
func (f Frame) Encode() []byte {
	out := make([]byte, 0, HeaderSize+len(f.KEMCiphertext)+len(f.Nonce)+len(f.AEADCiphertext))

	header := [HeaderSize]byte{WireVersion, SuiteKEM, SuiteAEAD, FlagsReserved}
	binary.BigEndian.PutUint16(header[4:6], uint16(len(f.KEMCiphertext)))

	out = append(out, header[:]...)
	out = append(out, f.KEMCiphertext...)
	out = append(out, f.Nonce...)
	out = append(out, f.AEADCiphertext...)
	return out
}

// DecodeFrame parses and validates a wire frame.
//
// Rejection is uniform: any structural defect (short input, header byte
// mismatch, truncated AEAD ciphertext) returns ErrOpenFailed, the same value
// a downstream AEAD tag failure would return. Decode performs no early return
// that would let a caller distinguish "bad header" from "bad tag" by error
// value alone; the only thing that varies between failure modes is internal
// control flow, never the returned error.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < MinFrameSize {
		return Frame{}, ErrOpenFailed
	}

	validHeader := b[0] == WireVersion &&
		b[1] == SuiteKEM &&
		b[2] == SuiteAEAD &&
		b[3] == FlagsReserved

	kemLen := int(binary.BigEndian.Uint16(b[4:6]))

	// Compute the frame bounds unconditionally so that a mismatched header and
	// a mismatched kem_ct_len take the same number of slicing steps before the
	// single shared rejection path below.
	rest := b[HeaderSize:]
	validKEMLen := kemLen == KEMCiphertextSize && len(rest) >= kemLen+NonceSize+TagSize

	if !validHeader || !validKEMLen {
		return Frame{}, ErrOpenFailed
	}

	kemCiphertext := rest[:kemLen]
	rest = rest[kemLen:]
	nonce := rest[:NonceSize]
	aeadCiphertext := rest[NonceSize:]

	if len(aeadCiphertext) < TagSize {
		return Frame{}, ErrOpenFailed
	}

	return Frame{
		KEMCiphertext:  kemCiphertext,
		Nonce:          nonce,
		AEADCiphertext: aeadCiphertext,
	}, nil
}
