package commands

import (
	"fmt"
	"os"

	envelopeService "github.com/allisson/citadel/internal/envelope/service"
	"github.com/allisson/citadel/internal/zeroize"
)

// RunKeygen generates a fresh hybrid keypair and writes it as name.pub and
// name.sec. The secret key file is created with owner-only permissions.
func RunKeygen(name string) error {
	engine := envelopeService.NewEngine()

	pub, sec, err := engine.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("failed to generate keypair: %w", err)
	}
	defer zeroize.Bytes(sec)

	pubPath := name + ".pub"
	secPath := name + ".sec"

	if err := os.WriteFile(pubPath, pub, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pubPath, err)
	}
	if err := os.WriteFile(secPath, sec, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", secPath, err)
	}

	fmt.Printf("wrote %s (public) and %s (secret)\n", pubPath, secPath)
	return nil
}
