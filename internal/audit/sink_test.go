package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/citadel/internal/keystore/domain"
)

func TestChainedSink_RecordBuildsIntactChain(t *testing.T) {
	ctx := context.Background()
	mem := NewMemorySink()
	sink, err := NewChainedSink(ctx, mem)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Record(ctx, domain.AuditEvent{Action: domain.AuditKeyGenerated, OccurredAt: time.Now()}))
	}

	entries, err := sink.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Equal(t, -1, VerifyChain(entries))
}

func TestChainedSink_ResumesFromExistingEntries(t *testing.T) {
	ctx := context.Background()
	mem := NewMemorySink()

	sinkA, err := NewChainedSink(ctx, mem)
	require.NoError(t, err)
	require.NoError(t, sinkA.Record(ctx, domain.AuditEvent{Action: domain.AuditKeyGenerated, OccurredAt: time.Now()}))

	sinkB, err := NewChainedSink(ctx, mem)
	require.NoError(t, err)
	require.NoError(t, sinkB.Record(ctx, domain.AuditEvent{Action: domain.AuditKeyActivated, OccurredAt: time.Now()}))

	entries, err := mem.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, uint64(0), entries[0].Sequence)
	assert.Equal(t, uint64(1), entries[1].Sequence)
	assert.Equal(t, -1, VerifyChain(entries))
}

func TestMultiSink_RecordsToAllSinks(t *testing.T) {
	ctx := context.Background()
	memA := NewMemorySink()
	memB := NewMemorySink()
	chainA, err := NewChainedSink(ctx, memA)
	require.NoError(t, err)
	chainB, err := NewChainedSink(ctx, memB)
	require.NoError(t, err)

	multi := NewMultiSink(chainA, chainB)
	event := domain.AuditEvent{Action: domain.AuditKeyRotated, OccurredAt: time.Now()}
	require.NoError(t, multi.Record(ctx, event))

	entriesA, _ := memA.Entries(ctx)
	entriesB, _ := memB.Entries(ctx)
	assert.Len(t, entriesA, 1)
	assert.Len(t, entriesB, 1)
}
