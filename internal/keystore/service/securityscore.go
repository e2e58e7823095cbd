package service

import (
	"github.com/allisson/citadel/internal/keystore/domain"
)

// SecurityScore is the keystore's composite self-assessment, each dimension
// scored 0-100.
type SecurityScore struct {
	QuantumResistance     float64
	ClassicalSecurity     float64
	SideChannelResistance float64
	AdaptiveDefense       float64
	KeyHygiene            float64
	Overall               float64
}

// weights sum to 1.0 across the five scored dimensions.
const (
	weightQuantumResistance     = 0.25
	weightClassicalSecurity     = 0.20
	weightSideChannelResistance = 0.15
	weightAdaptiveDefense       = 0.20
	weightKeyHygiene            = 0.20
)

// ScoreSecurity derives a SecurityScore from the current threat level L
// (1..5) and the population of keys the keystore manages. compliantCount is
// the number of keys whose adapted policy evaluation is Compliant or
// Warning (i.e. not due for rotation and not over their usage limit).
//
//	quantum_resistance     = clamp(95 - 2(L-1))
//	classical_security     = clamp(98 - (L-1))
//	side_channel_resistance = clamp(90 - 3(L-1))
//	adaptive_defense       = clamp(60 + 8L)
//	key_hygiene            = 100 * compliant/total, or 100 if total=0
func ScoreSecurity(level domain.ThreatLevel, totalKeys, compliantKeys int) SecurityScore {
	l := float64(level)

	s := SecurityScore{
		QuantumResistance:     clamp100(95 - 2*(l-1)),
		ClassicalSecurity:     clamp100(98 - (l - 1)),
		SideChannelResistance: clamp100(90 - 3*(l-1)),
		AdaptiveDefense:       clamp100(60 + 8*l),
		KeyHygiene:            keyHygieneScore(totalKeys, compliantKeys),
	}
	s.Overall = weightQuantumResistance*s.QuantumResistance +
		weightClassicalSecurity*s.ClassicalSecurity +
		weightSideChannelResistance*s.SideChannelResistance +
		weightAdaptiveDefense*s.AdaptiveDefense +
		weightKeyHygiene*s.KeyHygiene
	return s
}

func keyHygieneScore(total, compliant int) float64 {
	if total == 0 {
		return 100
	}
	return clamp100(100 * float64(compliant) / float64(total))
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
