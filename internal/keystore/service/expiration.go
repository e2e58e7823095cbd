package service

import (
	"time"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// ExpirationDecision is the outcome of checking whether a key is due to
// move to the Expired state.
type ExpirationDecision string

const (
	// ExpirationNotNeeded means the key's current state and policy do not
	// call for expiration right now.
	ExpirationNotNeeded ExpirationDecision = "not_needed"

	// ExpirationWarning means the key is approaching its effective policy's
	// grace period or max lifetime (at or past 90% of it) but has not yet
	// crossed it.
	ExpirationWarning ExpirationDecision = "warning"

	// ExpirationRequired means the key has outlived its effective policy's
	// grace period (Rotated) or max lifetime (Active) and must expire.
	ExpirationRequired ExpirationDecision = "required"
)

// ExpirationResult is the full verdict CheckExpiration reports: the
// decision, and, when the decision is ExpirationWarning, the time remaining
// before expiration becomes required.
type ExpirationResult struct {
	Decision  ExpirationDecision
	Remaining time.Duration
	Reason    string
}

// CheckExpiration decides whether key, evaluated against its effective
// policy as of now, must move to Expired:
//
//   - Rotated: required once now - RotatedAt >= policy.GracePeriod; warned
//     once now - RotatedAt >= 0.9 * policy.GracePeriod.
//   - Active: required once now - ActivatedAt >= policy.MaxLifetime, when a
//     max lifetime is set; warned once now - ActivatedAt >= 0.9 *
//     policy.MaxLifetime.
//   - any other state: never required (it cannot lawfully reach Expired, or
//     has already left the lifecycle).
func CheckExpiration(policy domain.KeyPolicy, key domain.KeyMetadata, now time.Time) ExpirationResult {
	switch key.State {
	case domain.KeyStateRotated:
		if key.RotatedAt != nil {
			elapsed := now.Sub(*key.RotatedAt)
			if elapsed >= policy.GracePeriod {
				return ExpirationResult{Decision: ExpirationRequired, Reason: "grace_period_expired"}
			}
			if warnAt := warningThreshold(policy.GracePeriod); elapsed >= warnAt {
				return ExpirationResult{
					Decision:  ExpirationWarning,
					Remaining: policy.GracePeriod - elapsed,
					Reason:    "grace_period_expiring",
				}
			}
		}
	case domain.KeyStateActive:
		if policy.MaxLifetime > 0 && key.ActivatedAt != nil {
			elapsed := now.Sub(*key.ActivatedAt)
			if elapsed >= policy.MaxLifetime {
				return ExpirationResult{Decision: ExpirationRequired, Reason: "max_lifetime_exceeded"}
			}
			if warnAt := warningThreshold(policy.MaxLifetime); elapsed >= warnAt {
				return ExpirationResult{
					Decision:  ExpirationWarning,
					Remaining: policy.MaxLifetime - elapsed,
					Reason:    "max_lifetime_expiring",
				}
			}
		}
	}
	return ExpirationResult{Decision: ExpirationNotNeeded}
}

// warningThreshold returns 90% of bound, the point at which CheckExpiration
// starts reporting ExpirationWarning instead of ExpirationNotNeeded.
func warningThreshold(bound time.Duration) time.Duration {
	return time.Duration(0.9 * float64(bound))
}
