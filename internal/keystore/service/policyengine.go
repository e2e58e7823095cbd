package service

import (
	"fmt"
	"time"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// VerdictKind enumerates the possible outcomes of evaluating a key against
// its effective policy.
type VerdictKind string

const (
	VerdictCompliant          VerdictKind = "compliant"
	VerdictWarning            VerdictKind = "warning"
	VerdictRotationNeeded     VerdictKind = "rotation_needed"
	VerdictUsageLimitExceeded VerdictKind = "usage_limit_exceeded"
)

// warningFraction is the point at which a key is flagged Warning ahead of
// RotationNeeded/UsageLimitExceeded: 90% of the way to its limit.
const warningFraction = 0.9

// PolicyVerdict is the outcome of evaluating a key against an effective
// policy: exactly one of Compliant, Warning, RotationNeeded, or
// UsageLimitExceeded.
type PolicyVerdict struct {
	Kind   VerdictKind
	Reason string

	// UsageCount and UsageLimit are populated only for VerdictUsageLimitExceeded.
	UsageCount uint64
	UsageLimit uint64
}

// NeedsRotation reports whether v represents a verdict that should block a
// further encrypt call until the key is rotated.
func NeedsRotation(v PolicyVerdict) bool {
	return v.Kind == VerdictRotationNeeded || v.Kind == VerdictUsageLimitExceeded
}

// PolicyEngine evaluates a key's metadata against its effective policy,
// applying the rules of spec §4.9 in order: the first matching rule wins.
type PolicyEngine struct{}

// NewPolicyEngine builds a stateless policy engine.
func NewPolicyEngine() PolicyEngine { return PolicyEngine{} }

// Evaluate checks key against the effective policy as of now.
//
// Rule order (first match wins):
//  1. state != Active -> Compliant (rotation/usage concerns do not apply to
//     a key that cannot currently encrypt).
//  2. max_usage_count set and usage_count >= max -> UsageLimitExceeded.
//  3. max_usage_count set and usage_count >= 0.9*max -> Warning.
//  4. for each Age trigger: now-activated_at >= max_age -> RotationNeeded;
//     elif >= 0.9*max_age -> Warning.
//  5. otherwise Compliant.
func (PolicyEngine) Evaluate(policy domain.KeyPolicy, key domain.KeyMetadata, now time.Time) PolicyVerdict {
	if key.State != domain.KeyStateActive {
		return PolicyVerdict{Kind: VerdictCompliant}
	}

	if policy.MaxUsageCount > 0 {
		if key.UsageCount >= policy.MaxUsageCount {
			return PolicyVerdict{
				Kind:       VerdictUsageLimitExceeded,
				Reason:     "usage count has reached the policy limit",
				UsageCount: key.UsageCount,
				UsageLimit: policy.MaxUsageCount,
			}
		}
		if float64(key.UsageCount) >= warningFraction*float64(policy.MaxUsageCount) {
			return PolicyVerdict{
				Kind: VerdictWarning,
				Reason: fmt.Sprintf(
					"usage count %d is approaching the policy limit of %d",
					key.UsageCount, policy.MaxUsageCount,
				),
			}
		}
	}

	if key.ActivatedAt != nil {
		age := now.Sub(*key.ActivatedAt)
		for _, maxAge := range policy.AgeTriggers() {
			switch {
			case age >= maxAge:
				return PolicyVerdict{Kind: VerdictRotationNeeded, Reason: "key has exceeded its maximum age"}
			case float64(age) >= warningFraction*float64(maxAge):
				return PolicyVerdict{Kind: VerdictWarning, Reason: "key is approaching its maximum age"}
			}
		}
	}

	return PolicyVerdict{Kind: VerdictCompliant}
}
