package audit

import (
	"context"
	"log/slog"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// TracingSink mirrors every audit event into structured logs, in addition
// to whatever durable sink is also recording it. It never returns an error:
// a logging failure must never block the operation being audited.
type TracingSink struct {
	logger *slog.Logger
}

// NewTracingSink builds a sink that logs through logger.
func NewTracingSink(logger *slog.Logger) *TracingSink {
	return &TracingSink{logger: logger}
}

// Record logs event once: at error level for the action kinds that
// represent a security-relevant failure, at info level for all others.
func (s *TracingSink) Record(ctx context.Context, event domain.AuditEvent) error {
	attrs := []any{
		slog.String("action", string(event.Action)),
		slog.String("actor", event.Actor),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if event.KeyID != nil {
		attrs = append(attrs, slog.String("key_id", string(*event.KeyID)))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	switch event.Action {
	case domain.AuditDecryptionFailed, domain.AuditEncryptionBlocked:
		s.logger.ErrorContext(ctx, "audit event", attrs...)
	default:
		s.logger.InfoContext(ctx, "audit event", attrs...)
	}
	return nil
}
