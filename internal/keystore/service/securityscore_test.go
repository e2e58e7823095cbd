package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/citadel/internal/keystore/domain"
)

func TestScoreSecurity_EmptyKeysetIsPerfectHygiene(t *testing.T) {
	s := ScoreSecurity(domain.ThreatLevelLow, 0, 0)
	assert.Equal(t, 100.0, s.KeyHygiene)
	assert.Greater(t, s.Overall, 0.0)
}

func TestScoreSecurity_HigherThreatRaisesAdaptiveDefenseButLowersResistance(t *testing.T) {
	low := ScoreSecurity(domain.ThreatLevelLow, 10, 10)
	critical := ScoreSecurity(domain.ThreatLevelCritical, 10, 10)

	assert.Greater(t, critical.AdaptiveDefense, low.AdaptiveDefense)
	assert.Less(t, critical.QuantumResistance, low.QuantumResistance)
	assert.Less(t, critical.ClassicalSecurity, low.ClassicalSecurity)
	assert.Less(t, critical.SideChannelResistance, low.SideChannelResistance)
}

func TestScoreSecurity_NonCompliantKeysPenalizeHygiene(t *testing.T) {
	s := ScoreSecurity(domain.ThreatLevelLow, 10, 6)
	assert.Equal(t, 60.0, s.KeyHygiene)
}

func TestScoreSecurity_FixedDimensionsAtLow(t *testing.T) {
	s := ScoreSecurity(domain.ThreatLevelLow, 1, 1)
	assert.Equal(t, 95.0, s.QuantumResistance)
	assert.Equal(t, 98.0, s.ClassicalSecurity)
	assert.Equal(t, 90.0, s.SideChannelResistance)
	assert.Equal(t, 68.0, s.AdaptiveDefense)
}
