package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPolicy_AgeTrigger(t *testing.T) {
	p := KeyPolicy{RotationTriggers: []RotationTrigger{
		{Kind: RotationTriggerAge, MaxAge: 48 * time.Hour},
		{Kind: RotationTriggerUsageCount, MaxUsageCount: 1000},
	}}

	age, ok := p.AgeTrigger()
	require.True(t, ok)
	assert.Equal(t, 48*time.Hour, age)

	count, ok := p.UsageCountTrigger()
	require.True(t, ok)
	assert.Equal(t, uint64(1000), count)
}

func TestKeyPolicy_MissingTrigger(t *testing.T) {
	p := KeyPolicy{}
	_, ok := p.AgeTrigger()
	assert.False(t, ok)
	_, ok = p.UsageCountTrigger()
	assert.False(t, ok)
}

func TestKeyPolicy_AgeTriggers_ReturnsEveryAgeTrigger(t *testing.T) {
	p := KeyPolicy{RotationTriggers: []RotationTrigger{
		{Kind: RotationTriggerAge, MaxAge: 48 * time.Hour},
		{Kind: RotationTriggerUsageCount, MaxUsageCount: 1000},
		{Kind: RotationTriggerAge, MaxAge: 72 * time.Hour},
	}}

	assert.Equal(t, []time.Duration{48 * time.Hour, 72 * time.Hour}, p.AgeTriggers())
}

func TestKeyPolicy_AgeTriggers_EmptyWhenNone(t *testing.T) {
	p := KeyPolicy{}
	assert.Empty(t, p.AgeTriggers())
}
