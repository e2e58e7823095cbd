// Package service implements the keystore's adaptive threat scoring, policy
// evaluation and adaptation, and the per-policy cache the façade reads when
// it evaluates a key's policy (on Encrypt, and on Expire for policy-bound
// keys).
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// AuditSink is the subset of the keystore's audit sink the assessor needs to
// record PolicyEvaluated events on every level change. Declared locally
// (rather than imported from usecase) so service has no dependency on the
// package that composes it.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// LevelTransition records one change of escalation level, for operator
// visibility via ThreatAssessor.History.
type LevelTransition struct {
	OccurredAt time.Time
	From       domain.ThreatLevel
	To         domain.ThreatLevel
	Score      float64
	Reason     string
}

// maxHistory bounds the retained transition history regardless of how long
// the assessor has been running.
const maxHistory = 1000

// ThreatAssessor maintains a rolling, decaying score over recorded threat
// events and derives a hysteresis-gated ThreatLevel from it. Safe for
// concurrent use.
type ThreatAssessor struct {
	mu         sync.RWMutex
	window     time.Duration
	decayRate  float64
	hysteresis float64
	thresholds [4]float64

	events   []domain.ThreatEvent
	level    domain.ThreatLevel
	override *domain.ThreatLevel
	history  []LevelTransition

	audit AuditSink
	now   func() time.Time
}

// NewThreatAssessor builds an assessor starting at ThreatLevelLow with no
// audit sink attached. Use WithAuditSink to attach one.
func NewThreatAssessor(now func() time.Time) *ThreatAssessor {
	if now == nil {
		now = time.Now
	}
	return &ThreatAssessor{
		window:     domain.DefaultThreatWindow,
		decayRate:  domain.DefaultThreatDecayRate,
		hysteresis: domain.DefaultThreatHysteresis,
		thresholds: domain.DefaultThreatThresholds,
		level:      domain.ThreatLevelLow,
		now:        now,
	}
}

// WithAuditSink attaches sink so every level change is recorded as a
// PolicyEvaluated audit event. Returns a for chaining.
func (a *ThreatAssessor) WithAuditSink(sink AuditSink) *ThreatAssessor {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.audit = sink
	return a
}

// WithWindow overrides the default rolling event window. Returns a for
// chaining.
func (a *ThreatAssessor) WithWindow(window time.Duration) *ThreatAssessor {
	a.mu.Lock()
	defer a.mu.Unlock()
	if window > 0 {
		a.window = window
	}
	return a
}

// WithDecayRate overrides the default per-minute decay multiplier. Returns a
// for chaining.
func (a *ThreatAssessor) WithDecayRate(rate float64) *ThreatAssessor {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rate > 0 {
		a.decayRate = rate
	}
	return a
}

// WithHysteresis overrides the default de-escalation hysteresis fraction.
// Returns a for chaining.
func (a *ThreatAssessor) WithHysteresis(hysteresis float64) *ThreatAssessor {
	a.mu.Lock()
	defer a.mu.Unlock()
	if hysteresis > 0 {
		a.hysteresis = hysteresis
	}
	return a
}

// WithThresholds overrides the default [Guarded, Elevated, High, Critical]
// score boundaries. Returns a for chaining.
func (a *ThreatAssessor) WithThresholds(thresholds [4]float64) *ThreatAssessor {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thresholds = thresholds
	return a
}

// RecordEvent appends a threat event to the rolling window, evicting
// expired events and events beyond domain.MaxThreatEvents, then
// re-evaluates the escalation level. Manual escalation/de-escalation events
// are kept in the window like any other, but step the level directly by one
// instead of re-evaluating it from the score.
//
// Recording never drops an event: the assessor's monotone-escalation
// guarantee (a sufficiently severe event strictly raises the level) would
// not hold if events could be silently throttled away.
func (a *ThreatAssessor) RecordEvent(ctx context.Context, event domain.ThreatEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events = append(a.events, event)
	a.pruneLocked()

	switch event.Kind {
	case domain.ThreatEventManualEscalation:
		a.stepLocked(ctx, 1, "manual escalation")
	case domain.ThreatEventManualDeescalation:
		a.stepLocked(ctx, -1, "manual de-escalation")
	default:
		a.reevaluateLocked(ctx)
	}
}

func (a *ThreatAssessor) pruneLocked() {
	now := a.now()
	cutoff := now.Add(-a.window)

	kept := a.events[:0]
	for _, e := range a.events {
		if e.OccurredAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	a.events = kept

	if len(a.events) > domain.MaxThreatEvents {
		a.events = a.events[len(a.events)-domain.MaxThreatEvents:]
	}
}

// scoreLocked sums each event's severity decayed by elapsed whole minutes
// since it occurred. Must be called with a.mu held.
func (a *ThreatAssessor) scoreLocked() float64 {
	now := a.now()
	var total float64
	for _, e := range a.events {
		elapsedMin := math.Floor(now.Sub(e.OccurredAt).Minutes())
		if elapsedMin < 0 {
			elapsedMin = 0
		}
		total += e.Severity * math.Pow(a.decayRate, elapsedMin)
	}
	return total
}

// rawTargetLocked returns the level the current score alone would justify,
// ignoring hysteresis and any override. thresholds[i] lower-bounds level
// i+2 (Guarded=2 .. Critical=5); Low has no lower bound.
func (a *ThreatAssessor) rawTargetLocked(score float64) domain.ThreatLevel {
	target := domain.ThreatLevelLow
	for i, threshold := range a.thresholds {
		if score >= threshold {
			target = domain.ThreatLevel(i + 2)
		}
	}
	return target
}

// reevaluateLocked escalates immediately when the score crosses a threshold
// (the monotone-escalation guarantee has no hysteresis), but only
// de-escalates past a level's threshold once
// the score has fallen more than the hysteresis fraction below it — this
// keeps a score oscillating around a boundary from flapping the level back
// and forth. De-escalation can walk down multiple levels in one call if the
// score clears every intervening level's hysteresis bar.
func (a *ThreatAssessor) reevaluateLocked(ctx context.Context) {
	if a.override != nil {
		return
	}
	score := a.scoreLocked()
	current := a.level
	rawTarget := a.rawTargetLocked(score)

	if rawTarget > current {
		a.transitionLocked(ctx, current, rawTarget, score,
			fmt.Sprintf("score %.1f crossed threshold for %s", score, rawTarget))
		return
	}
	if rawTarget == current {
		return
	}

	candidate := current
	for candidate > domain.ThreatLevelLow {
		idx := int(candidate) - 2 // threshold index lower-bounding `candidate`
		deescalateBelow := a.thresholds[idx] * (1 - a.hysteresis)
		if score < deescalateBelow {
			candidate--
			continue
		}
		break
	}
	if candidate != current {
		a.transitionLocked(ctx, current, candidate, score,
			fmt.Sprintf("score %.1f fell below de-escalation bar for %s", score, current))
	}
}

// stepLocked moves the level by delta (+1 escalate, -1 de-escalate),
// clamped to [Low, Critical], bypassing score-driven hysteresis entirely.
func (a *ThreatAssessor) stepLocked(ctx context.Context, delta int, reason string) {
	current := a.level
	if a.override != nil {
		current = *a.override
	}
	next := domain.ThreatLevel(int(current) + delta)
	if next < domain.ThreatLevelLow {
		next = domain.ThreatLevelLow
	}
	if next > domain.ThreatLevelCritical {
		next = domain.ThreatLevelCritical
	}
	a.level = next
	a.override = nil
	if next != current {
		a.transitionLocked(ctx, current, next, a.scoreLocked(), reason)
	}
}

// transitionLocked commits a level change by setting a.level to `to`,
// appends it to history, and records an audit event if a sink is attached.
func (a *ThreatAssessor) transitionLocked(ctx context.Context, from, to domain.ThreatLevel, score float64, reason string) {
	a.level = to
	entry := LevelTransition{
		OccurredAt: a.now(),
		From:       from,
		To:         to,
		Score:      score,
		Reason:     reason,
	}
	a.history = append(a.history, entry)
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}

	if a.audit != nil {
		_ = a.audit.Record(ctx, domain.AuditEvent{
			Action:     domain.AuditPolicyEvaluated,
			Reason:     fmt.Sprintf("threat level %s -> %s (%s)", from, to, reason),
			OccurredAt: entry.OccurredAt,
			Fields: map[string]string{
				"score":     fmt.Sprintf("%.2f", score),
				"from_level": from.String(),
				"to_level":   to.String(),
			},
		})
	}
}

// Score returns the current decayed threat score.
func (a *ThreatAssessor) Score() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scoreLocked()
}

// Level returns the current escalation level, honoring any manual override.
func (a *ThreatAssessor) Level() domain.ThreatLevel {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.override != nil {
		return *a.override
	}
	return a.level
}

// History returns a copy of the assessor's retained level transitions,
// oldest first.
func (a *ThreatAssessor) History() []LevelTransition {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]LevelTransition, len(a.history))
	copy(out, a.history)
	return out
}

// Override pins the level regardless of score until ClearOverride is called.
func (a *ThreatAssessor) Override(level domain.ThreatLevel) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.override = &level
}

// ClearOverride returns the assessor to score-driven evaluation.
func (a *ThreatAssessor) ClearOverride() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.override = nil
	a.reevaluateLocked(context.Background())
}
