// Package domain defines the keystore's data model: key metadata, the
// lifecycle state machine, policies, threat events, and audit events.
package domain

import "time"

const (
	// DefaultThreatWindow is the rolling window over which threat events
	// contribute to the assessor's score.
	DefaultThreatWindow = time.Hour

	// DefaultThreatDecayRate is the per-minute multiplicative decay applied to
	// an event's severity contribution.
	DefaultThreatDecayRate = 0.95

	// DefaultThreatHysteresis is the fraction below a threshold a score must
	// fall before the assessor de-escalates out of the level that threshold
	// guards.
	DefaultThreatHysteresis = 0.2

	// MaxThreatEvents bounds the assessor's retained event window regardless
	// of elapsed time.
	MaxThreatEvents = 10_000

	// DecryptionFailureSeverity is the fixed severity assigned to a
	// DecryptionFailure threat event recorded by the keystore façade.
	DecryptionFailureSeverity = 3.0

	// FloorRotationAge is the absolute minimum effective rotation age the
	// policy adapter may produce, regardless of threat level.
	FloorRotationAge = 24 * time.Hour

	// FloorGracePeriod is the absolute minimum effective grace period.
	FloorGracePeriod = 12 * time.Hour

	// FloorMaxLifetime is the absolute minimum effective max lifetime.
	FloorMaxLifetime = 30 * 24 * time.Hour

	// FloorUsageLimit is the absolute minimum effective usage limit.
	FloorUsageLimit = 100
)

// DefaultThreatThresholds are the score boundaries between Low/Guarded/
// Elevated/High/Critical.
var DefaultThreatThresholds = [4]float64{5, 15, 30, 50}
