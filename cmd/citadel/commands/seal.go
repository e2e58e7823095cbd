package commands

import (
	"fmt"
	"os"

	envelopeDomain "github.com/allisson/citadel/internal/envelope/domain"
	envelopeService "github.com/allisson/citadel/internal/envelope/service"
)

// RunSeal encrypts the file at inPath under the public key at keyPath,
// writing the ciphertext to inPath+".ctd". aad and ctx are optional
// associated-data and context strings bound into the ciphertext.
func RunSeal(keyPath, inPath, aad, ctx string) error {
	pub, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}
	if len(pub) != envelopeDomain.HybridPublicKeySize {
		return fmt.Errorf("public key %s has wrong size: expected %d bytes, got %d", keyPath, envelopeDomain.HybridPublicKeySize, len(pub))
	}

	plaintext, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	engine := envelopeService.NewEngine()
	ciphertext, err := engine.Seal(pub, plaintext, []byte(aad), []byte(ctx))
	if err != nil {
		return fmt.Errorf("seal failed: %w", err)
	}

	outPath := inPath + ".ctd"
	if err := os.WriteFile(outPath, ciphertext, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Printf("wrote %s (%d bytes)\n", outPath, len(ciphertext))
	return nil
}
