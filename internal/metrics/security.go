package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SecurityDimension names one axis of the keystore's composite security
// score.
type SecurityDimension string

const (
	DimensionQuantumResistance    SecurityDimension = "quantum_resistance"
	DimensionClassicalSecurity    SecurityDimension = "classical_security"
	DimensionSideChannelResistance SecurityDimension = "side_channel_resistance"
	DimensionAdaptiveDefense      SecurityDimension = "adaptive_defense"
	DimensionKeyHygiene           SecurityDimension = "key_hygiene"
	DimensionOverall              SecurityDimension = "overall"
)

// SecurityMetrics records the keystore's composite security score and its
// constituent dimensions, plus the threat level driving adaptive defense.
type SecurityMetrics interface {
	// RecordScore records the current value (0-100) of one scoring dimension.
	RecordScore(ctx context.Context, dimension SecurityDimension, value float64)

	// RecordThreatLevel records the current ordinal threat level.
	RecordThreatLevel(ctx context.Context, level int)
}

type securityMetrics struct {
	score       metric.Float64Gauge
	threatLevel metric.Int64Gauge
}

// NewSecurityMetrics creates a SecurityMetrics implementation using the
// provided meter provider, with metric names prefixed by namespace.
func NewSecurityMetrics(meterProvider metric.MeterProvider, namespace string) (SecurityMetrics, error) {
	meter := meterProvider.Meter(namespace)

	score, err := meter.Float64Gauge(
		fmt.Sprintf("%s_security_score", namespace),
		metric.WithDescription("Composite security score by dimension, 0-100"),
		metric.WithUnit("{score}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create security score gauge: %w", err)
	}

	threatLevel, err := meter.Int64Gauge(
		fmt.Sprintf("%s_threat_level", namespace),
		metric.WithDescription("Current adaptive threat level, 1 (low) to 5 (critical)"),
		metric.WithUnit("{level}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create threat level gauge: %w", err)
	}

	return &securityMetrics{score: score, threatLevel: threatLevel}, nil
}

func (s *securityMetrics) RecordScore(ctx context.Context, dimension SecurityDimension, value float64) {
	s.score.Record(ctx, value, metric.WithAttributes(attribute.String("dimension", string(dimension))))
}

func (s *securityMetrics) RecordThreatLevel(ctx context.Context, level int) {
	s.threatLevel.Record(ctx, int64(level))
}

// NoOpSecurityMetrics is a no-op implementation for when metrics are disabled.
type NoOpSecurityMetrics struct{}

// NewNoOpSecurityMetrics creates a no-op SecurityMetrics implementation.
func NewNoOpSecurityMetrics() SecurityMetrics { return &NoOpSecurityMetrics{} }

func (NoOpSecurityMetrics) RecordScore(context.Context, SecurityDimension, float64) {}
func (NoOpSecurityMetrics) RecordThreatLevel(context.Context, int)                  {}
