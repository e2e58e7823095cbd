package domain

import "time"

// ThreatEventKind classifies the observation driving a ThreatEvent.
type ThreatEventKind string

const (
	ThreatEventDecryptionFailure ThreatEventKind = "decryption_failure"
	ThreatEventRapidAccessPattern ThreatEventKind = "rapid_access_pattern"
	ThreatEventAnomalousAccess    ThreatEventKind = "anomalous_access"
	ThreatEventExternalAdvisory   ThreatEventKind = "external_advisory"
	ThreatEventAuthFailure        ThreatEventKind = "auth_failure"
	ThreatEventKeyEnumeration     ThreatEventKind = "key_enumeration"
	ThreatEventManualEscalation   ThreatEventKind = "manual_escalation"
	ThreatEventManualDeescalation ThreatEventKind = "manual_deescalation"
	ThreatEventHeartbeat          ThreatEventKind = "heartbeat"
)

const (
	minSeverity = 0.0
	maxSeverity = 10.0
)

// ThreatEvent is one observation fed into the adaptive assessor's rolling
// window. Severity is clamped to [0, 10] at construction so the decay
// arithmetic never has to guard against out-of-range input.
type ThreatEvent struct {
	Kind      ThreatEventKind
	Severity  float64
	OccurredAt time.Time
	KeyID     *KeyId
	Detail    string
}

// NewThreatEvent builds a ThreatEvent, clamping severity into [0, 10].
func NewThreatEvent(kind ThreatEventKind, severity float64, occurredAt time.Time) ThreatEvent {
	if severity < minSeverity {
		severity = minSeverity
	}
	if severity > maxSeverity {
		severity = maxSeverity
	}
	return ThreatEvent{Kind: kind, Severity: severity, OccurredAt: occurredAt}
}
