package usecase

import (
	"context"
	"encoding/hex"
	"time"

	keystoreDomain "github.com/allisson/citadel/internal/keystore/domain"
	"github.com/allisson/citadel/internal/keystore/service"
	"github.com/allisson/citadel/internal/zeroize"
)

// Keystore is the single orchestration point gating every crypto operation
// by the effective policy derived from the key's base policy and the
// current threat level. Nothing outside this package touches key secret
// material directly.
type Keystore struct {
	engine   Engine
	keys     KeyRepository
	policies PolicyRepository
	cache    *service.PolicyCache
	audit    AuditSink
	threat   ThreatAssessor
	adapter  PolicyAdapter
	evaluator service.PolicyEngine
	now      func() time.Time
}

// New builds a Keystore facade.
func New(
	engine Engine,
	keys KeyRepository,
	policies PolicyRepository,
	audit AuditSink,
	threat ThreatAssessor,
	adapter PolicyAdapter,
) *Keystore {
	return &Keystore{
		engine:    engine,
		keys:      keys,
		policies:  policies,
		cache:     service.NewPolicyCache(policies),
		audit:     audit,
		threat:    threat,
		adapter:   adapter,
		evaluator: service.PolicyEngine{},
		now:       time.Now,
	}
}

// emit records an audit event for key. key may be nil for events that are
// not about a single key (none currently originate from this type, but the
// signature stays permissive for batch-summary callers elsewhere in the
// package).
func (k *Keystore) emit(ctx context.Context, action keystoreDomain.AuditActionKind, key *keystoreDomain.KeyMetadata, success bool, reason string) {
	event := keystoreDomain.AuditEvent{
		Action:     action,
		Actor:      "keystore",
		Success:    success,
		Reason:     reason,
		OccurredAt: k.now(),
	}
	if key != nil {
		id := key.ID
		keyType := key.KeyType
		state := key.State
		event.KeyID = &id
		event.KeyType = &keyType
		event.KeyState = &state
	}
	_ = k.audit.Record(ctx, event)
}

// Generate creates a key in the Pending state, with policyID optionally
// binding it to an adaptive policy and parentID optionally recording its
// place in a key hierarchy.
func (k *Keystore) Generate(
	ctx context.Context,
	name string,
	keyType keystoreDomain.KeyType,
	policyID *keystoreDomain.PolicyId,
	parentID *keystoreDomain.KeyId,
) (*keystoreDomain.KeyMetadata, error) {
	pub, sec, err := k.engine.GenerateKeypair()
	if err != nil {
		return nil, err
	}

	now := k.now()
	key := &keystoreDomain.KeyMetadata{
		ID:       keystoreDomain.NewKeyID(),
		Name:     name,
		KeyType:  keyType,
		State:    keystoreDomain.KeyStatePending,
		PolicyID: policyID,
		ParentID: parentID,

		CreatedAt: now,
		UpdatedAt: now,

		Versions:       []keystoreDomain.KeyVersion{{Version: 1, CreatedAt: now, PublicBytes: pub, SecretBytes: sec}},
		CurrentVersion: 1,
	}

	if err := k.keys.Put(ctx, key); err != nil {
		return nil, err
	}
	k.emit(ctx, keystoreDomain.AuditKeyGenerated, key, true, "")
	return key, nil
}

// Activate moves a Pending key to Active.
func (k *Keystore) Activate(ctx context.Context, id keystoreDomain.KeyId) error {
	key, err := k.keys.Get(ctx, id)
	if err != nil {
		return err
	}

	now := k.now()
	if err := key.Transition(keystoreDomain.KeyStateActive, now); err != nil {
		return err
	}
	key.ActivatedAt = &now

	if err := k.keys.Put(ctx, key); err != nil {
		return err
	}
	k.emit(ctx, keystoreDomain.AuditKeyActivated, key, true, "")
	return nil
}

// Rotate appends a fresh key version, keeping the prior version decryptable
// while moving new encryptions to the new one. The key moves Active ->
// Rotated -> Active across the two writes, matching the lifecycle's lawful
// within-id rotation path.
func (k *Keystore) Rotate(ctx context.Context, id keystoreDomain.KeyId) error {
	key, err := k.keys.Get(ctx, id)
	if err != nil {
		return err
	}

	now := k.now()
	if err := key.Transition(keystoreDomain.KeyStateRotated, now); err != nil {
		return err
	}
	key.RotatedAt = &now

	pub, sec, err := k.engine.GenerateKeypair()
	if err != nil {
		return err
	}
	nextVersion := key.CurrentVersion + 1
	key.Versions = append(key.Versions, keystoreDomain.KeyVersion{
		Version: nextVersion, CreatedAt: now, PublicBytes: pub, SecretBytes: sec,
	})
	if err := k.keys.Put(ctx, key); err != nil {
		return err
	}
	key.CurrentVersion = nextVersion

	if err := key.Transition(keystoreDomain.KeyStateActive, now); err != nil {
		return err
	}

	if err := k.keys.Put(ctx, key); err != nil {
		return err
	}
	k.emit(ctx, keystoreDomain.AuditKeyRotated, key, true, "")
	return nil
}

// Revoke moves an Active key to Revoked, recording reason for the audit trail.
func (k *Keystore) Revoke(ctx context.Context, id keystoreDomain.KeyId, reason string) error {
	key, err := k.keys.Get(ctx, id)
	if err != nil {
		return err
	}

	now := k.now()
	if err := key.Transition(keystoreDomain.KeyStateRevoked, now); err != nil {
		return err
	}
	key.RevokedAt = &now

	if err := k.keys.Put(ctx, key); err != nil {
		return err
	}
	k.emit(ctx, keystoreDomain.AuditKeyRevoked, key, true, reason)
	return nil
}

// Expire moves an Active or Rotated key to Expired. If the key is bound to
// a policy, the move is only lawful once service.CheckExpiration reports it
// Required against the effective policy; calling Expire on a key that is
// not yet due returns keystoreDomain.ErrInvalidTransition. Keys with no
// bound policy have nothing to judge expiration against and may be expired
// administratively at any time the lifecycle state machine allows.
func (k *Keystore) Expire(ctx context.Context, id keystoreDomain.KeyId) error {
	key, err := k.keys.Get(ctx, id)
	if err != nil {
		return err
	}

	if key.PolicyID != nil {
		policy, err := k.effectivePolicy(ctx, key)
		if err != nil {
			return err
		}
		if service.CheckExpiration(policy, *key, k.now()).Decision != service.ExpirationRequired {
			return keystoreDomain.ErrInvalidTransition
		}
	}

	now := k.now()
	if err := key.Transition(keystoreDomain.KeyStateExpired, now); err != nil {
		return err
	}
	key.ExpiredAt = &now

	if err := k.keys.Put(ctx, key); err != nil {
		return err
	}
	k.emit(ctx, keystoreDomain.AuditKeyExpired, key, true, "")
	return nil
}

// Destroy moves an Expired or Revoked key to Destroyed, overwriting the
// secret and public bytes of every retained version with the zeroize
// sentinel. The metadata record is kept (with DestroyedAt set) so audit
// history and version numbering survive; only the key material is wiped,
// and CanEncrypt/CanDecrypt are false forever after.
func (k *Keystore) Destroy(ctx context.Context, id keystoreDomain.KeyId) error {
	key, err := k.keys.Get(ctx, id)
	if err != nil {
		return err
	}

	now := k.now()
	if err := key.Transition(keystoreDomain.KeyStateDestroyed, now); err != nil {
		return err
	}
	key.DestroyedAt = &now

	for i := range key.Versions {
		zeroize.Destroy(key.Versions[i].SecretBytes)
		zeroize.Destroy(key.Versions[i].PublicBytes)
	}

	if err := k.keys.Put(ctx, key); err != nil {
		return err
	}
	k.emit(ctx, keystoreDomain.AuditKeyDestroyed, key, true, "")
	return nil
}

// effectivePolicy resolves the adapted policy for key, or a permissive zero
// policy if it has none bound.
func (k *Keystore) effectivePolicy(ctx context.Context, key *keystoreDomain.KeyMetadata) (keystoreDomain.KeyPolicy, error) {
	if key.PolicyID == nil {
		return keystoreDomain.KeyPolicy{}, nil
	}
	base, err := k.cache.Get(ctx, *key.PolicyID)
	if err != nil {
		return keystoreDomain.KeyPolicy{}, err
	}
	return k.adapter.Adapt(*base, k.threat.Level()), nil
}

// Encrypt seals plaintext under key's current version, subject to its
// effective policy. It returns a *keystoreDomain.PolicyViolationError if the
// key's usage count or age has crossed a hard policy limit (the caller must
// rotate before encrypting again), and keystoreDomain.ErrNotActive if the
// key cannot currently encrypt. A Warning verdict does not block the call;
// it is recorded to the audit trail and the encryption proceeds.
func (k *Keystore) Encrypt(ctx context.Context, id keystoreDomain.KeyId, plaintext, aad, envCtx []byte) (*keystoreDomain.EncryptedBlob, error) {
	key, err := k.keys.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !key.CanEncrypt() {
		k.emit(ctx, keystoreDomain.AuditEncryptionBlocked, key, false, "key is not active")
		return nil, keystoreDomain.ErrNotActive
	}

	policy, err := k.effectivePolicy(ctx, key)
	if err != nil {
		return nil, err
	}

	verdict := k.evaluator.Evaluate(policy, *key, k.now())
	if service.NeedsRotation(verdict) {
		k.emit(ctx, keystoreDomain.AuditEncryptionBlocked, key, false, verdict.Reason)
		return nil, &keystoreDomain.PolicyViolationError{Reason: verdict.Reason}
	}

	version, ok := key.CurrentKeyVersion()
	if !ok {
		return nil, keystoreDomain.ErrNotActive
	}

	ciphertext, err := k.engine.Seal(version.PublicBytes, plaintext, aad, envCtx)
	if err != nil {
		return nil, err
	}

	key.UsageCount++
	if err := k.keys.Put(ctx, key); err != nil {
		return nil, err
	}

	if verdict.Kind == service.VerdictWarning {
		k.emit(ctx, keystoreDomain.AuditEncryptionWarning, key, true, verdict.Reason)
	}
	k.emit(ctx, keystoreDomain.AuditEncryptionPerformed, key, true, "")

	return &keystoreDomain.EncryptedBlob{
		KeyID:         id,
		KeyVersion:    version.Version,
		CiphertextHex: hex.EncodeToString(ciphertext),
		EncryptedAt:   k.now(),
	}, nil
}

// Decrypt opens a blob previously produced by Encrypt. A key in Destroyed,
// Pending, or Revoked state can never decrypt. Only a cryptographic open
// failure is treated as a potential attack: it records a DecryptionFailure
// threat event (so repeated failed attempts escalate the threat level on
// their own) and a decryption_failed audit entry. An unknown key version or
// a malformed ciphertext encoding is an ordinary caller error, not evidence
// of an attack, and is returned without scoring.
func (k *Keystore) Decrypt(ctx context.Context, blob *keystoreDomain.EncryptedBlob, aad, envCtx []byte) ([]byte, error) {
	key, err := k.keys.Get(ctx, blob.KeyID)
	if err != nil {
		return nil, err
	}
	if !key.CanDecrypt() {
		return nil, keystoreDomain.ErrNotDecryptable
	}

	version, ok := key.VersionByNumber(blob.KeyVersion)
	if !ok {
		return nil, keystoreDomain.ErrNotDecryptable
	}

	ciphertext, err := hex.DecodeString(blob.CiphertextHex)
	if err != nil {
		return nil, keystoreDomain.ErrNotDecryptable
	}

	plaintext, err := k.engine.Open(version.SecretBytes, ciphertext, aad, envCtx)
	if err != nil {
		k.recordDecryptFailure(ctx, key)
		return nil, keystoreDomain.ErrNotDecryptable
	}

	k.emit(ctx, keystoreDomain.AuditDecryptionPerformed, key, true, "")
	return plaintext, nil
}

func (k *Keystore) recordDecryptFailure(ctx context.Context, key *keystoreDomain.KeyMetadata) {
	k.emit(ctx, keystoreDomain.AuditDecryptionFailed, key, false, "")
	k.threat.RecordEvent(ctx, keystoreDomain.NewThreatEvent(keystoreDomain.ThreatEventDecryptionFailure, keystoreDomain.DecryptionFailureSeverity, k.now()))
}
