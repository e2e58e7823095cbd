// Package integration exercises the envelope engine and keystore façade
// together, end to end, the way an embedding application would.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/citadel/internal/audit"
	envelopeService "github.com/allisson/citadel/internal/envelope/service"
	keystoreDomain "github.com/allisson/citadel/internal/keystore/domain"
	"github.com/allisson/citadel/internal/keystore/repository"
	"github.com/allisson/citadel/internal/keystore/service"
	"github.com/allisson/citadel/internal/keystore/usecase"
)

func newTestKeystore(t *testing.T) (*usecase.Keystore, *service.ThreatAssessor, *repository.MemoryPolicyRepository, *repository.MemoryKeyRepository) {
	t.Helper()

	ctx := context.Background()
	chained, err := audit.NewChainedSink(ctx, audit.NewMemorySink())
	require.NoError(t, err)

	engine := envelopeService.NewEngine()
	keys := repository.NewMemoryKeyRepository()
	policies := repository.NewMemoryPolicyRepository()
	threat := service.NewThreatAssessor(time.Now)
	adapter := service.NewPolicyAdapter()

	ks := usecase.New(engine, keys, policies, chained, threat, adapter)
	return ks, threat, policies, keys
}

// Scenario 1: keygen, seal, open roundtrip produces the exact wire size and
// recovers the original plaintext.
func TestEndToEnd_Roundtrip(t *testing.T) {
	engine := envelopeService.NewEngine()
	pk, sk, err := engine.GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := engine.Seal(pk, []byte("hello"), []byte("a"), []byte("c"))
	require.NoError(t, err)
	assert.Len(t, ciphertext, 1154+5)

	plaintext, err := engine.Open(sk, ciphertext, []byte("a"), []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))
}

// Scenario 2: a wrong AAD and a wrong context both fail with an identical,
// opaque error display.
func TestEndToEnd_WrongAAD(t *testing.T) {
	engine := envelopeService.NewEngine()
	pk, sk, err := engine.GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := engine.Seal(pk, []byte("hello"), []byte("a"), []byte("c"))
	require.NoError(t, err)

	_, errWrongAAD := engine.Open(sk, ciphertext, []byte("A"), []byte("c"))
	_, errWrongCtx := engine.Open(sk, ciphertext, []byte("a"), []byte("C"))
	require.Error(t, errWrongAAD)
	require.Error(t, errWrongCtx)
	assert.Equal(t, errWrongAAD.Error(), errWrongCtx.Error())
}

// Scenario 3: flipping any byte in the header, KEM ciphertext, nonce, or
// AEAD ciphertext produces the same opaque error as every other failure mode.
func TestEndToEnd_Tamper(t *testing.T) {
	engine := envelopeService.NewEngine()
	pk, sk, err := engine.GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := engine.Seal(pk, []byte("hello world"), nil, nil)
	require.NoError(t, err)

	_, baseline := engine.Open(sk, ciphertext, []byte("wrong"), nil)
	require.Error(t, baseline)

	positions := []int{0, 1, 10, len(ciphertext) - 1}
	for _, pos := range positions {
		tampered := append([]byte(nil), ciphertext...)
		tampered[pos] ^= 0xFF
		_, err := engine.Open(sk, tampered, nil, nil)
		require.Error(t, err)
		assert.Equal(t, baseline.Error(), err.Error())
	}

	truncated := ciphertext[:len(ciphertext)-1]
	_, err = engine.Open(sk, truncated, nil, nil)
	require.Error(t, err)
	assert.Equal(t, baseline.Error(), err.Error())
}

// Scenario 4: rotating a key preserves decryptability of ciphertext sealed
// under the prior version while new encryptions bind to the new version.
func TestEndToEnd_RotationPreservesOldCiphertext(t *testing.T) {
	ctx := context.Background()
	ks, _, _, _ := newTestKeystore(t)

	key, err := ks.Generate(ctx, "dek", keystoreDomain.KeyTypeDataEncrypting, nil, nil)
	require.NoError(t, err)
	require.NoError(t, ks.Activate(ctx, key.ID))

	b1, err := ks.Encrypt(ctx, key.ID, []byte("v1"), []byte("a"), []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), b1.KeyVersion)

	require.NoError(t, ks.Rotate(ctx, key.ID))

	b2, err := ks.Encrypt(ctx, key.ID, []byte("v2"), []byte("a"), []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, uint(2), b2.KeyVersion)

	plain1, err := ks.Decrypt(ctx, b1, []byte("a"), []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(plain1))

	plain2, err := ks.Decrypt(ctx, b2, []byte("a"), []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(plain2))
}

// Scenario 5: a usage-count policy blocks the 11th encrypt without
// advancing the usage counter past its limit.
func TestEndToEnd_UsageLimitEnforcement(t *testing.T) {
	ctx := context.Background()
	ks, _, policies, keys := newTestKeystore(t)

	policyID := keystoreDomain.PolicyId("max-10")
	require.NoError(t, policies.Put(ctx, &keystoreDomain.KeyPolicy{ID: policyID, MaxUsageCount: 10}))

	key, err := ks.Generate(ctx, "dek", keystoreDomain.KeyTypeDataEncrypting, &policyID, nil)
	require.NoError(t, err)
	require.NoError(t, ks.Activate(ctx, key.ID))

	for i := 0; i < 10; i++ {
		_, err := ks.Encrypt(ctx, key.ID, []byte("x"), nil, nil)
		require.NoError(t, err)
	}

	_, err = ks.Encrypt(ctx, key.ID, []byte("eleventh"), nil, nil)
	require.Error(t, err)
	var polErr *keystoreDomain.PolicyViolationError
	require.ErrorAs(t, err, &polErr)

	stored, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), stored.UsageCount)
}

// Scenario 6: a burst of high-severity external advisories escalates the
// threat level enough to tighten a 7-day grace policy to at most 30% of its
// base value, never below the 12-hour floor, and CheckExpiration (the
// sweeper's expiration check) then flags a Rotated key past the tightened
// grace period as due for expiration.
func TestEndToEnd_AdaptiveTightening(t *testing.T) {
	ctx := context.Background()
	ks, threat, policies, keys := newTestKeystore(t)
	adapter := service.NewPolicyAdapter()

	policyID := keystoreDomain.PolicyId("default-dek")
	base := keystoreDomain.KeyPolicy{ID: policyID, GracePeriod: 7 * 24 * time.Hour}
	require.NoError(t, policies.Put(ctx, &base))

	for i := 0; i < 20; i++ {
		threat.RecordEvent(ctx, keystoreDomain.NewThreatEvent(keystoreDomain.ThreatEventExternalAdvisory, 8, time.Now()))
	}

	level := threat.Level()
	assert.GreaterOrEqual(t, level, keystoreDomain.ThreatLevelHigh)

	effective := adapter.Adapt(base, level)
	assert.LessOrEqual(t, effective.GracePeriod, time.Duration(float64(base.GracePeriod)*0.30))
	assert.GreaterOrEqual(t, effective.GracePeriod, keystoreDomain.FloorGracePeriod)

	key, err := ks.Generate(ctx, "dek", keystoreDomain.KeyTypeDataEncrypting, &policyID, nil)
	require.NoError(t, err)
	require.NoError(t, ks.Activate(ctx, key.ID))
	require.NoError(t, ks.Rotate(ctx, key.ID))

	stored, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	// Rotate ends with the key Active again; put it back in Rotated so the
	// grace-period rule applies.
	rotatedAt := time.Now().Add(-effective.GracePeriod - time.Minute)
	stored.State = keystoreDomain.KeyStateRotated
	stored.RotatedAt = &rotatedAt
	require.NoError(t, keys.Put(ctx, stored))

	result := service.CheckExpiration(effective, *stored, time.Now())
	assert.Equal(t, service.ExpirationRequired, result.Decision)
}
