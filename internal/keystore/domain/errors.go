package domain

import (
	"fmt"

	"github.com/allisson/citadel/internal/errors"
)

// Keystore-surface domain errors.
var (
	ErrKeyNotFound      = errors.Wrap(errors.ErrNotFound, "key not found")
	ErrPolicyNotFound   = errors.Wrap(errors.ErrNotFound, "policy not found")
	ErrDuplicateKey     = errors.Wrap(errors.ErrConflict, "duplicate key")
	ErrNotActive        = errors.Wrap(errors.ErrInvalidInput, "key is not active")
	ErrNotDecryptable   = errors.Wrap(errors.ErrInvalidInput, "key is not decryptable in its current state")
	ErrKeyDestroyed     = errors.Wrap(errors.ErrInvalidInput, "key material has been destroyed")
	ErrInvalidTransition = errors.Wrap(errors.ErrInvalidInput, "invalid key state transition")
	ErrPolicyViolation  = errors.Wrap(errors.ErrForbidden, "policy violation")
)

// InvalidTransitionError names the attempted transition that was rejected.
// errors.Is(err, ErrInvalidTransition) holds for any value of this type.
type InvalidTransitionError struct {
	From KeyState
	To   KeyState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition.Error(), e.From, e.To)
}

// Unwrap lets errors.Is/As match ErrInvalidTransition and the underlying
// errors.ErrInvalidInput sentinel.
func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// PolicyViolationError names the remedy the caller should take.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPolicyViolation.Error(), e.Reason)
}

func (e *PolicyViolationError) Unwrap() error { return ErrPolicyViolation }

// StorageError surfaces a backend failure verbatim.
type StorageError struct {
	Msg string
}

func (e *StorageError) Error() string { return "storage error: " + e.Msg }
