package audit

import (
	"context"
	"sync"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// Sink records audit events. Implementations are responsible for their own
// durability; the hash chain linking entries together is maintained per
// sink by ChainedSink.
type Sink interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// EntryWriter is implemented by sinks capable of persisting a fully formed
// chain Entry, as opposed to a bare AuditEvent.
type EntryWriter interface {
	WriteEntry(ctx context.Context, entry Entry) error
	Entries(ctx context.Context) ([]Entry, error)
}

// ChainedSink wraps an EntryWriter, computing each event's chain entry
// before handing it to the underlying writer. The sequence counter and
// previous hash are held in memory, guarded by a mutex — a process restart
// re-derives them from the underlying writer's existing entries.
type ChainedSink struct {
	mu       sync.Mutex
	writer   EntryWriter
	seq      uint64
	prevHash string
}

// NewChainedSink builds a ChainedSink over writer, replaying its existing
// entries to resume the chain from where it left off.
func NewChainedSink(ctx context.Context, writer EntryWriter) (*ChainedSink, error) {
	entries, err := writer.Entries(ctx)
	if err != nil {
		return nil, err
	}

	s := &ChainedSink{writer: writer, prevHash: GenesisHashHex()}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		s.seq = last.Sequence + 1
		s.prevHash = last.Hash
	}
	return s, nil
}

// Record appends event to the chain and persists it via the writer.
func (s *ChainedSink) Record(ctx context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := nextEntry(s.seq, s.prevHash, event)
	if err != nil {
		return err
	}
	if err := s.writer.WriteEntry(ctx, entry); err != nil {
		return err
	}
	s.seq++
	s.prevHash = entry.Hash
	return nil
}

// Entries returns every entry recorded through this sink, for verification.
func (s *ChainedSink) Entries(ctx context.Context) ([]Entry, error) {
	return s.writer.Entries(ctx)
}
