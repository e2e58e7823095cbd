// Package audit implements tamper-evident audit logging for the keystore: a
// SHA-256 hash chain over each sink's entries, and slog, in-memory, and
// file-backed sinks to write that chain to.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// genesisHash seeds every sink's chain so entry 0's PrevHash is never empty.
var genesisHash = sha256.Sum256([]byte(domain.AuditGenesisSeed))

// Entry is one link in a sink's hash chain: an audit event plus the
// sequence number and hash linking it to the entry before it.
type Entry struct {
	Sequence  uint64            `json:"sequence"`
	PrevHash  string            `json:"prev_hash"`
	Hash      string            `json:"hash"`
	Event     domain.AuditEvent `json:"event"`
}

// canonicalEventBytes returns a deterministic JSON encoding of the fields
// that feed the hash, independent of the event's Fields map iteration order.
func canonicalEventBytes(seq uint64, prevHash string, event domain.AuditEvent) ([]byte, error) {
	type canonical struct {
		Sequence uint64            `json:"sequence"`
		PrevHash string            `json:"prev_hash"`
		Event    domain.AuditEvent `json:"event"`
	}
	return json.Marshal(canonical{Sequence: seq, PrevHash: prevHash, Event: event})
}

// nextEntry builds the next chain entry given the previous entry's hash (or
// the genesis hash for sequence 0).
func nextEntry(seq uint64, prevHash string, event domain.AuditEvent) (Entry, error) {
	data, err := canonicalEventBytes(seq, prevHash, event)
	if err != nil {
		return Entry{}, err
	}
	sum := sha256.Sum256(data)
	return Entry{
		Sequence: seq,
		PrevHash: prevHash,
		Hash:     hex.EncodeToString(sum[:]),
		Event:    event,
	}, nil
}

// GenesisHashHex returns the hex-encoded genesis hash every chain starts from.
func GenesisHashHex() string {
	return hex.EncodeToString(genesisHash[:])
}

// VerifyChain recomputes every entry's hash in order and confirms each
// entry's PrevHash matches the previous entry's Hash (or the genesis hash
// for the first entry). Returns the index of the first broken entry, or -1
// if the chain is intact.
func VerifyChain(entries []Entry) int {
	prevHash := GenesisHashHex()
	for i, e := range entries {
		if e.PrevHash != prevHash {
			return i
		}
		recomputed, err := nextEntry(e.Sequence, e.PrevHash, e.Event)
		if err != nil || recomputed.Hash != e.Hash {
			return i
		}
		prevHash = e.Hash
	}
	return -1
}
