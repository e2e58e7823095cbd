package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	keystoreDomain "github.com/allisson/citadel/internal/keystore/domain"
	"github.com/allisson/citadel/internal/keystore/service"
)

// ExpirationReport summarizes one expiration sweep.
type ExpirationReport struct {
	Expired  []keystoreDomain.KeyId
	Warnings []keystoreDomain.KeyId
	Failed   map[keystoreDomain.KeyId]error
	Skipped  int
}

func newExpirationReport() ExpirationReport {
	return ExpirationReport{Failed: map[keystoreDomain.KeyId]error{}}
}

// RotationDueReport summarizes Active keys the current threat level's
// effective policy requires rotation for. It is report-only: the sweeper
// never rotates a key itself, even when the effective policy sets
// auto_rotate, leaving the decision to the operator or to a caller that
// explicitly invokes Keystore.Rotate.
type RotationDueReport struct {
	KeyIDs      []keystoreDomain.KeyId
	Reasons     map[keystoreDomain.KeyId]string
	ThreatLevel keystoreDomain.ThreatLevel
}

// Sweeper checks every key against its effective policy each time Run is
// called (it does no scheduling of its own),
// expiring keys that have outlived their grace period or max lifetime, and
// reporting keys the current threat level's effective policy has marked due
// for rotation.
type Sweeper struct {
	keystore  *Keystore
	keys      KeyRepository
	policies  PolicyRepository
	audit     AuditSink
	threat    ThreatAssessor
	adapter   PolicyAdapter
	evaluator service.PolicyEngine
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeper builds a sweeper over the given keystore.
func NewSweeper(
	keystore *Keystore,
	keys KeyRepository,
	policies PolicyRepository,
	audit AuditSink,
	threat ThreatAssessor,
	adapter PolicyAdapter,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		keystore:  keystore,
		keys:      keys,
		policies:  policies,
		audit:     audit,
		threat:    threat,
		adapter:   adapter,
		evaluator: service.PolicyEngine{},
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one full sweep: expire_due_keys followed by
// check_adaptive_rotation_due, logging a summary of each. Only the
// expiration sweep is audited (by ExpireDueKeys).
func (s *Sweeper) Run(ctx context.Context) error {
	report, err := s.ExpireDueKeys(ctx)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "expiration sweep complete",
		slog.Int("expired", len(report.Expired)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("skipped", report.Skipped),
	)

	rotation, err := s.CheckAdaptiveRotationDue(ctx)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "adaptive rotation check complete",
		slog.String("threat_level", rotation.ThreatLevel.String()),
		slog.Int("due", len(rotation.KeyIDs)),
	)
	return nil
}

// ExpireDueKeys runs the two-phase expiration scan: Rotated-state keys past
// their grace period, then Active-state keys past their max lifetime. Every
// key that is policy-bound and due is moved to Expired; failures are
// collected rather than aborting the sweep, so one bad key cannot block
// every other key's check. A single ExpirationCheckRun audit event
// summarizes the whole sweep.
func (s *Sweeper) ExpireDueKeys(ctx context.Context) (ExpirationReport, error) {
	report := newExpirationReport()
	now := s.now()

	var rotated, active []*keystoreDomain.KeyMetadata
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rotated, err = s.keys.ListByState(gctx, keystoreDomain.KeyStateRotated)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = s.keys.ListByState(gctx, keystoreDomain.KeyStateActive)
		return err
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	// Both lists are in hand before any key is scanned, so the two scans
	// below can run against report without a lock.
	s.scanPhase(ctx, rotated, now, &report)
	s.scanPhase(ctx, active, now, &report)

	s.emitReport(ctx, report)
	return report, nil
}

func (s *Sweeper) scanPhase(ctx context.Context, keys []*keystoreDomain.KeyMetadata, now time.Time, report *ExpirationReport) {
	for _, key := range keys {
		if key.PolicyID == nil {
			report.Skipped++
			continue
		}

		base, err := s.policies.Get(ctx, *key.PolicyID)
		if err != nil {
			report.Failed[key.ID] = err
			continue
		}
		effective := s.adapter.Adapt(*base, s.threat.Level())

		result := service.CheckExpiration(effective, *key, now)
		switch result.Decision {
		case service.ExpirationRequired:
			if err := s.keystore.Expire(ctx, key.ID); err != nil {
				report.Failed[key.ID] = err
				continue
			}
			report.Expired = append(report.Expired, key.ID)
			s.logger.InfoContext(ctx, "expired key", slog.String("key_id", string(key.ID)))
		case service.ExpirationWarning:
			report.Warnings = append(report.Warnings, key.ID)
		default:
			report.Skipped++
		}
	}
}

func (s *Sweeper) emitReport(ctx context.Context, report ExpirationReport) {
	_ = s.audit.Record(ctx, keystoreDomain.AuditEvent{
		Action:     keystoreDomain.AuditExpirationCheckRun,
		Actor:      "sweeper",
		Success:    len(report.Failed) == 0,
		OccurredAt: s.now(),
		Fields: map[string]string{
			"expired_count": fmt.Sprintf("%d", len(report.Expired)),
			"warning_count": fmt.Sprintf("%d", len(report.Warnings)),
			"failed_count":  fmt.Sprintf("%d", len(report.Failed)),
		},
	})
}

// CheckAdaptiveRotationDue evaluates every Active, policy-bound key against
// its threat-adapted effective policy and collects those the policy engine
// marks RotationNeeded or UsageLimitExceeded, annotated with the reason and
// the threat level in effect at evaluation time. Even when the effective
// policy sets auto_rotate, this method never rotates a key itself: it only
// reports, keeping the core deterministic and side-effect-free beyond what
// Encrypt/Decrypt already do. Acting on the report (or not) is the
// operator's call.
func (s *Sweeper) CheckAdaptiveRotationDue(ctx context.Context) (RotationDueReport, error) {
	level := s.threat.Level()
	report := RotationDueReport{ThreatLevel: level, Reasons: map[keystoreDomain.KeyId]string{}}

	active, err := s.keys.ListByState(ctx, keystoreDomain.KeyStateActive)
	if err != nil {
		return report, err
	}

	now := s.now()
	for _, key := range active {
		if key.PolicyID == nil {
			continue
		}
		base, err := s.policies.Get(ctx, *key.PolicyID)
		if err != nil {
			continue
		}
		effective := s.adapter.Adapt(*base, level)

		verdict := s.evaluator.Evaluate(effective, *key, now)
		if !service.NeedsRotation(verdict) {
			continue
		}
		report.KeyIDs = append(report.KeyIDs, key.ID)
		report.Reasons[key.ID] = fmt.Sprintf("%s (threat level %s)", verdict.Reason, level.String())
	}
	return report, nil
}
