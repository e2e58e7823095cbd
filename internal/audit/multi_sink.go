package audit

import (
	"context"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// MultiSink fans a single audit event out to every wrapped sink, recording
// to all of them and returning the first error encountered (after still
// attempting every sink).
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink builds a fanout over the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Record writes event to every wrapped sink.
func (m *MultiSink) Record(ctx context.Context, event domain.AuditEvent) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Record(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
