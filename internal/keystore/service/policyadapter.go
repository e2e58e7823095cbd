package service

import (
	"time"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// levelScale holds the four multipliers and the forced-auto-rotate flag for
// one threat level, indexed by domain.ThreatLevel - 1.
type levelScale struct {
	age, grace, lifetime, usage float64
	forceAutoRotate              bool
}

var scales = [5]levelScale{
	{age: 1.00, grace: 1.00, lifetime: 1.00, usage: 1.00, forceAutoRotate: false}, // Low
	{age: 0.75, grace: 0.80, lifetime: 0.80, usage: 0.80, forceAutoRotate: false}, // Guarded
	{age: 0.50, grace: 0.50, lifetime: 0.60, usage: 0.60, forceAutoRotate: true},  // Elevated
	{age: 0.30, grace: 0.30, lifetime: 0.40, usage: 0.40, forceAutoRotate: true},  // High
	{age: 0.20, grace: 0.10, lifetime: 0.25, usage: 0.25, forceAutoRotate: true},  // Critical
}

// PolicyAdapter derives the effective policy for a threat level from a base
// policy. It only ever tightens values relative to the base, and never
// crosses the absolute operational floors in const.go regardless of how
// severe the threat level is; a base value already below its floor is kept
// as is.
type PolicyAdapter struct{}

// NewPolicyAdapter builds a stateless policy adapter.
func NewPolicyAdapter() PolicyAdapter { return PolicyAdapter{} }

// PolicySummary reports the base and effective values of every
// threat-adapted policy parameter, for operator visibility.
type PolicySummary struct {
	Level domain.ThreatLevel

	BaseGracePeriod, EffectiveGracePeriod time.Duration
	BaseMaxLifetime, EffectiveMaxLifetime time.Duration
	BaseUsageLimit, EffectiveUsageLimit   uint64
	BaseRotationAge, EffectiveRotationAge time.Duration
	HasRotationAge                       bool

	BaseAutoRotate      bool
	EffectiveAutoRotate bool
	AutoRotateForced    bool
}

// Adapt returns the effective policy for the given base policy and threat
// level.
func (PolicyAdapter) Adapt(base domain.KeyPolicy, level domain.ThreatLevel) domain.KeyPolicy {
	scale := scales[levelIndex(level)]

	adapted := base
	adapted.GracePeriod = scaleDurationFloor(base.GracePeriod, scale.grace, domain.FloorGracePeriod)
	if base.MaxLifetime > 0 {
		adapted.MaxLifetime = scaleDurationFloor(base.MaxLifetime, scale.lifetime, domain.FloorMaxLifetime)
	}
	if base.MaxUsageCount > 0 {
		adapted.MaxUsageCount = scaleUint64Floor(base.MaxUsageCount, scale.usage, domain.FloorUsageLimit)
	}
	adapted.AutoRotate = base.AutoRotate || scale.forceAutoRotate

	adapted.RotationTriggers = make([]domain.RotationTrigger, len(base.RotationTriggers))
	for i, trig := range base.RotationTriggers {
		switch trig.Kind {
		case domain.RotationTriggerAge:
			trig.MaxAge = scaleDurationFloor(trig.MaxAge, scale.age, domain.FloorRotationAge)
		case domain.RotationTriggerUsageCount:
			trig.MaxUsageCount = scaleUint64Floor(trig.MaxUsageCount, scale.usage, domain.FloorUsageLimit)
		}
		adapted.RotationTriggers[i] = trig
	}

	return adapted
}

// Summarize reports the base and effective values of base's four adapted
// parameters at level, plus whether auto-rotate was forced on by the
// adapter rather than inherited from the base policy.
func (a PolicyAdapter) Summarize(base domain.KeyPolicy, level domain.ThreatLevel) PolicySummary {
	effective := a.Adapt(base, level)
	scale := scales[levelIndex(level)]

	summary := PolicySummary{
		Level:                level,
		BaseGracePeriod:      base.GracePeriod,
		EffectiveGracePeriod: effective.GracePeriod,
		BaseMaxLifetime:      base.MaxLifetime,
		EffectiveMaxLifetime: effective.MaxLifetime,
		BaseUsageLimit:       base.MaxUsageCount,
		EffectiveUsageLimit:  effective.MaxUsageCount,
		BaseAutoRotate:       base.AutoRotate,
		EffectiveAutoRotate:  effective.AutoRotate,
		AutoRotateForced:     scale.forceAutoRotate && !base.AutoRotate,
	}
	if age, ok := base.AgeTrigger(); ok {
		summary.HasRotationAge = true
		summary.BaseRotationAge = age
		effAge, _ := effective.AgeTrigger()
		summary.EffectiveRotationAge = effAge
	}
	return summary
}

func levelIndex(level domain.ThreatLevel) int {
	idx := int(level) - 1
	if idx < 0 {
		return 0
	}
	if idx > 4 {
		return 4
	}
	return idx
}

// scaleDurationFloor scales base by scale but never below floor; a base
// already below floor is returned unchanged, so the result never exceeds
// base. Callers for whom the field is optional (zero means unset) must
// guard the call themselves.
func scaleDurationFloor(base time.Duration, scale float64, floor time.Duration) time.Duration {
	if floor > base {
		floor = base
	}
	scaled := time.Duration(float64(base) * scale)
	if scaled < floor {
		return floor
	}
	return scaled
}

// scaleUint64Floor scales base by scale but never below floor; a base
// already below floor is returned unchanged, so the result never exceeds
// base.
func scaleUint64Floor(base uint64, scale float64, floor uint64) uint64 {
	if floor > base {
		floor = base
	}
	scaled := uint64(float64(base) * scale)
	if scaled < floor {
		return floor
	}
	return scaled
}
