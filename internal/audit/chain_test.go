package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/citadel/internal/keystore/domain"
)

func TestVerifyChain_IntactChainReturnsMinusOne(t *testing.T) {
	e0, err := nextEntry(0, GenesisHashHex(), domain.AuditEvent{Action: domain.AuditKeyGenerated, OccurredAt: time.Now()})
	assert.NoError(t, err)
	e1, err := nextEntry(1, e0.Hash, domain.AuditEvent{Action: domain.AuditKeyActivated, OccurredAt: time.Now()})
	assert.NoError(t, err)

	assert.Equal(t, -1, VerifyChain([]Entry{e0, e1}))
}

func TestVerifyChain_DetectsTamperedEvent(t *testing.T) {
	e0, _ := nextEntry(0, GenesisHashHex(), domain.AuditEvent{Action: domain.AuditKeyGenerated, OccurredAt: time.Now()})
	e1, _ := nextEntry(1, e0.Hash, domain.AuditEvent{Action: domain.AuditKeyActivated, OccurredAt: time.Now()})

	e1.Event.Action = domain.AuditKeyDestroyed // tamper after the hash was computed
	assert.Equal(t, 1, VerifyChain([]Entry{e0, e1}))
}

func TestVerifyChain_DetectsBrokenLink(t *testing.T) {
	e0, _ := nextEntry(0, GenesisHashHex(), domain.AuditEvent{Action: domain.AuditKeyGenerated, OccurredAt: time.Now()})
	e1, _ := nextEntry(1, "not-the-real-prev-hash", domain.AuditEvent{Action: domain.AuditKeyActivated, OccurredAt: time.Now()})

	assert.Equal(t, 1, VerifyChain([]Entry{e0, e1}))
}

func TestVerifyChain_EmptyChainIsIntact(t *testing.T) {
	assert.Equal(t, -1, VerifyChain(nil))
}
