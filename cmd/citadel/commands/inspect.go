package commands

import (
	"encoding/binary"
	"fmt"
	"os"

	envelopeDomain "github.com/allisson/citadel/internal/envelope/domain"
)

// RunInspect prints the header fields of a wire frame without attempting to
// decrypt it: version, suite identifiers, and the size of each section.
func RunInspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) < envelopeDomain.HeaderSize {
		return fmt.Errorf("file too short to be a citadel frame: %d bytes", len(data))
	}

	version := data[0]
	suiteKEM := data[1]
	suiteAEAD := data[2]
	flags := data[3]
	kemLen := int(binary.BigEndian.Uint16(data[4:6]))

	fmt.Printf("file:              %s\n", path)
	fmt.Printf("total size:        %d bytes\n", len(data))
	fmt.Printf("wire version:      0x%02x (expected 0x%02x)\n", version, envelopeDomain.WireVersion)
	fmt.Printf("suite_kem:         0x%02x (expected 0x%02x)\n", suiteKEM, envelopeDomain.SuiteKEM)
	fmt.Printf("suite_aead:        0x%02x (expected 0x%02x)\n", suiteAEAD, envelopeDomain.SuiteAEAD)
	fmt.Printf("flags:             0x%02x\n", flags)
	fmt.Printf("kem_ciphertext_len: %d (expected %d)\n", kemLen, envelopeDomain.KEMCiphertextSize)

	rest := len(data) - envelopeDomain.HeaderSize - kemLen
	nonceAndCiphertext := rest - envelopeDomain.NonceSize
	if rest < envelopeDomain.NonceSize || nonceAndCiphertext < envelopeDomain.TagSize {
		fmt.Println("frame is malformed: remaining bytes too short for nonce + tag")
		return nil
	}
	fmt.Printf("nonce_len:         %d\n", envelopeDomain.NonceSize)
	fmt.Printf("aead_ciphertext_len: %d (includes %d-byte tag)\n", nonceAndCiphertext, envelopeDomain.TagSize)

	valid := version == envelopeDomain.WireVersion &&
		suiteKEM == envelopeDomain.SuiteKEM &&
		suiteAEAD == envelopeDomain.SuiteAEAD &&
		flags == envelopeDomain.FlagsReserved &&
		kemLen == envelopeDomain.KEMCiphertextSize
	fmt.Printf("header valid:      %t\n", valid)
	return nil
}
