package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	envelopeService "github.com/allisson/citadel/internal/envelope/service"
	keystoreDomain "github.com/allisson/citadel/internal/keystore/domain"
	"github.com/allisson/citadel/internal/keystore/repository"
	"github.com/allisson/citadel/internal/keystore/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_ExpiresKeyPastMaxLifetime(t *testing.T) {
	ctx := context.Background()
	engine := envelopeService.NewEngine()
	keys := repository.NewMemoryKeyRepository()
	policies := repository.NewMemoryPolicyRepository()
	threat := service.NewThreatAssessor(time.Now)
	adapter := service.NewPolicyAdapter()
	ks := New(engine, keys, policies, noopAuditSink{}, threat, adapter)

	policyID := keystoreDomain.PolicyId("short-lived")
	require.NoError(t, policies.Put(ctx, &keystoreDomain.KeyPolicy{ID: policyID, MaxLifetime: time.Hour}))

	key, err := ks.Generate(ctx, "k", keystoreDomain.KeyTypeDataEncrypting, &policyID, nil)
	require.NoError(t, err)
	require.NoError(t, ks.Activate(ctx, key.ID))

	stored, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	activatedAt := time.Now().Add(-2 * time.Hour)
	stored.ActivatedAt = &activatedAt
	require.NoError(t, keys.Put(ctx, stored))

	sweeper := NewSweeper(ks, keys, policies, noopAuditSink{}, threat, adapter, discardLogger())
	require.NoError(t, sweeper.Run(ctx))

	final, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, keystoreDomain.KeyStateExpired, final.State)
}

func TestSweeper_NeverAutoRotatesKeyPastTriggerAge(t *testing.T) {
	ctx := context.Background()
	engine := envelopeService.NewEngine()
	keys := repository.NewMemoryKeyRepository()
	policies := repository.NewMemoryPolicyRepository()
	threat := service.NewThreatAssessor(time.Now)
	adapter := service.NewPolicyAdapter()
	ks := New(engine, keys, policies, noopAuditSink{}, threat, adapter)

	policyID := keystoreDomain.PolicyId("rotates-fast")
	require.NoError(t, policies.Put(ctx, &keystoreDomain.KeyPolicy{
		ID:               policyID,
		MaxLifetime:      365 * 24 * time.Hour,
		AutoRotate:       true,
		RotationTriggers: []keystoreDomain.RotationTrigger{{Kind: keystoreDomain.RotationTriggerAge, MaxAge: time.Hour}},
	}))

	key, err := ks.Generate(ctx, "k", keystoreDomain.KeyTypeDataEncrypting, &policyID, nil)
	require.NoError(t, err)
	require.NoError(t, ks.Activate(ctx, key.ID))

	stored, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	activatedAt := time.Now().Add(-2 * time.Hour)
	stored.ActivatedAt = &activatedAt
	require.NoError(t, keys.Put(ctx, stored))

	sweeper := NewSweeper(ks, keys, policies, noopAuditSink{}, threat, adapter, discardLogger())
	require.NoError(t, sweeper.Run(ctx))

	// Even with auto_rotate set on the policy, the sweeper only reports:
	// the key stays on its original version until something else calls Rotate.
	final, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, keystoreDomain.KeyStateActive, final.State)
	assert.Equal(t, uint(1), final.CurrentVersion)
}

func TestSweeper_CheckAdaptiveRotationDue_ReportsWithoutAutoRotate(t *testing.T) {
	ctx := context.Background()
	engine := envelopeService.NewEngine()
	keys := repository.NewMemoryKeyRepository()
	policies := repository.NewMemoryPolicyRepository()
	threat := service.NewThreatAssessor(time.Now)
	adapter := service.NewPolicyAdapter()
	ks := New(engine, keys, policies, noopAuditSink{}, threat, adapter)

	policyID := keystoreDomain.PolicyId("report-only")
	require.NoError(t, policies.Put(ctx, &keystoreDomain.KeyPolicy{
		ID:               policyID,
		AutoRotate:       true,
		RotationTriggers: []keystoreDomain.RotationTrigger{{Kind: keystoreDomain.RotationTriggerAge, MaxAge: time.Hour}},
	}))

	key, err := ks.Generate(ctx, "k", keystoreDomain.KeyTypeDataEncrypting, &policyID, nil)
	require.NoError(t, err)
	require.NoError(t, ks.Activate(ctx, key.ID))

	stored, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	activatedAt := time.Now().Add(-2 * time.Hour)
	stored.ActivatedAt = &activatedAt
	require.NoError(t, keys.Put(ctx, stored))

	sweeper := NewSweeper(ks, keys, policies, noopAuditSink{}, threat, adapter, discardLogger())
	report, err := sweeper.CheckAdaptiveRotationDue(ctx)
	require.NoError(t, err)

	assert.Contains(t, report.KeyIDs, key.ID)
	assert.Contains(t, report.Reasons[key.ID], "threat level")

	final, err := keys.Get(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, keystoreDomain.KeyStateActive, final.State)
	assert.Equal(t, uint(1), final.CurrentVersion)
}
