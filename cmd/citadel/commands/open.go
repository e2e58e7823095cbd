package commands

import (
	"fmt"
	"os"
	"strings"

	envelopeService "github.com/allisson/citadel/internal/envelope/service"
	"github.com/allisson/citadel/internal/zeroize"
)

// RunOpen decrypts the file at inPath (expected to carry the ".ctd"
// extension) under the secret key at keyPath, writing the recovered
// plaintext to the input path with ".ctd" stripped (or ".dec" appended, if
// the input doesn't carry that extension).
//
// Every decryption failure, whatever its cause, is reported with the same message: the
// wire format gives decryption failure no room to leak which step rejected.
func RunOpen(keyPath, inPath, aad, ctx string) error {
	sec, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read secret key: %w", err)
	}
	defer zeroize.Bytes(sec)

	ciphertext, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	engine := envelopeService.NewEngine()
	plaintext, err := engine.Open(sec, ciphertext, []byte(aad), []byte(ctx))
	if err != nil {
		return fmt.Errorf("decryption failed")
	}

	outPath := recoveredPath(inPath)
	if err := os.WriteFile(outPath, plaintext, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Printf("wrote %s (%d bytes)\n", outPath, len(plaintext))
	return nil
}

func recoveredPath(inPath string) string {
	if strings.HasSuffix(inPath, ".ctd") {
		return strings.TrimSuffix(inPath, ".ctd")
	}
	return inPath + ".dec"
}
