// Package usecase orchestrates key lifecycle, policy-gated crypto
// operations, and the expiration/rotation sweeper on top of the envelope
// engine, the storage repositories, and the audit sink.
package usecase

import (
	"context"

	envelopeService "github.com/allisson/citadel/internal/envelope/service"
	"github.com/allisson/citadel/internal/keystore/domain"
)

// KeyRepository defines persistence operations for key metadata.
// Implementations must be safe for concurrent use.
type KeyRepository interface {
	// Get returns the key with the given id, or ErrKeyNotFound.
	Get(ctx context.Context, id domain.KeyId) (*domain.KeyMetadata, error)

	// Put inserts or replaces the key's full record.
	Put(ctx context.Context, key *domain.KeyMetadata) error

	// Delete removes the key's record entirely, after it has been destroyed.
	Delete(ctx context.Context, id domain.KeyId) error

	// List returns every key, in no particular order.
	List(ctx context.Context) ([]*domain.KeyMetadata, error)

	// ListByState returns every key currently in the given state.
	ListByState(ctx context.Context, state domain.KeyState) ([]*domain.KeyMetadata, error)

	// ListByParent returns every key whose ParentID matches id.
	ListByParent(ctx context.Context, id domain.KeyId) ([]*domain.KeyMetadata, error)
}

// PolicyRepository defines persistence operations for key policies.
type PolicyRepository interface {
	// Get returns the policy with the given id, or ErrPolicyNotFound.
	Get(ctx context.Context, id domain.PolicyId) (*domain.KeyPolicy, error)

	// Put inserts or replaces a policy.
	Put(ctx context.Context, policy *domain.KeyPolicy) error

	// List returns every policy.
	List(ctx context.Context) ([]*domain.KeyPolicy, error)
}

// AuditSink records audit events, typically into a hash-chained log.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// ThreatAssessor tracks the rolling threat score and the hysteresis-gated
// escalation level derived from it.
type ThreatAssessor interface {
	RecordEvent(ctx context.Context, event domain.ThreatEvent)
	Score() float64
	Level() domain.ThreatLevel
	Override(level domain.ThreatLevel)
	ClearOverride()
}

// PolicyAdapter derives the effective policy for a key given its base
// policy and the current threat level.
type PolicyAdapter interface {
	Adapt(base domain.KeyPolicy, level domain.ThreatLevel) domain.KeyPolicy
}

// Engine is the subset of the envelope engine the façade depends on.
type Engine interface {
	GenerateKeypair() (publicKey, secretKey []byte, err error)
	Seal(publicKey, plaintext, aad, ctx []byte) ([]byte, error)
	Open(secretKey, ciphertext, aad, ctx []byte) ([]byte, error)
}

var _ Engine = (*envelopeService.Engine)(nil)
