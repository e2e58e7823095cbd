package domain

import "time"

// RotationTriggerKind distinguishes the members of the RotationTrigger
// tagged union.
type RotationTriggerKind string

const (
	RotationTriggerAge            RotationTriggerKind = "age"
	RotationTriggerUsageCount     RotationTriggerKind = "usage_count"
	RotationTriggerExternalSignal RotationTriggerKind = "external_signal"
	RotationTriggerParentRotated  RotationTriggerKind = "parent_rotated"
)

// RotationTrigger is a tagged union: exactly one of the typed fields is
// meaningful, selected by Kind.
type RotationTrigger struct {
	Kind RotationTriggerKind

	MaxAge        time.Duration // RotationTriggerAge
	MaxUsageCount uint64        // RotationTriggerUsageCount
	SignalName    string        // RotationTriggerExternalSignal
}

// KeyPolicy is the base policy a key is bound to. The threat-adapted
// effective policy derived from it (service.PolicyAdapter) never relaxes
// these values, only tightens them, and never crosses the absolute
// operational floors in const.go.
type KeyPolicy struct {
	ID   PolicyId
	Name string

	AppliesTo KeyTypeSet

	RotationTriggers   []RotationTrigger
	GracePeriod        time.Duration // rotation_grace_period
	MaxLifetime        time.Duration // zero means unset
	MaxUsageCount      uint64        // zero means unset
	AutoRotate         bool
	MinVersionsRetained int
}

// AgeTrigger returns the policy's first age-based rotation trigger, if any.
// Reporting code that needs one representative age (PolicyAdapter.Summarize)
// uses this; evaluation code that must honor every configured trigger (spec
// §4.9: "for each Age(max_age) trigger") uses AgeTriggers instead.
func (p KeyPolicy) AgeTrigger() (time.Duration, bool) {
	for _, t := range p.RotationTriggers {
		if t.Kind == RotationTriggerAge {
			return t.MaxAge, true
		}
	}
	return 0, false
}

// AgeTriggers returns every configured age-based rotation trigger, in
// declaration order.
func (p KeyPolicy) AgeTriggers() []time.Duration {
	var out []time.Duration
	for _, t := range p.RotationTriggers {
		if t.Kind == RotationTriggerAge {
			out = append(out, t.MaxAge)
		}
	}
	return out
}

// UsageCountTrigger returns the policy's usage-count rotation trigger, if any.
func (p KeyPolicy) UsageCountTrigger() (uint64, bool) {
	for _, t := range p.RotationTriggers {
		if t.Kind == RotationTriggerUsageCount {
			return t.MaxUsageCount, true
		}
	}
	return 0, false
}
