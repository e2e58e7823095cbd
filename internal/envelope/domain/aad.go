package domain

import "encoding/binary"

// AAD TLV tags: T=u8, L=u16 BE, V=bytes.
const (
	AADTagSenderID      byte = 1
	AADTagRecipientID   byte = 2
	AADTagRoute         byte = 3
	AADTagTimestampMs   byte = 4 // u64 BE, 8 bytes
	AADTagSequence      byte = 5 // u64 BE, 8 bytes
	AADTagMsgID         byte = 6 // 16 bytes
	maxTLVValueLen           = 65535
)

// AADBuilder assembles the canonical TLV-encoded AAD convention. Raw bytes
// are always accepted as AAD at the envelope boundary; this builder exists
// purely to give callers a structured, collision-free way to bind request
// metadata without rolling their own framing.
type AADBuilder struct {
	buf []byte
}

// NewAADBuilder starts a new AAD buffer with the fixed "citadel|aad|v1" prefix.
func NewAADBuilder() *AADBuilder {
	return &AADBuilder{buf: []byte(AADPrefix)}
}

// Add appends a single TLV record. Returns ErrAADTooLarge if value exceeds
// 65535 bytes.
func (b *AADBuilder) Add(tag byte, value []byte) (*AADBuilder, error) {
	if len(value) > maxTLVValueLen {
		return b, ErrAADTooLarge
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(value)))
	b.buf = append(b.buf, tag)
	b.buf = append(b.buf, lenBuf[:]...)
	b.buf = append(b.buf, value...)
	return b, nil
}

// SenderID appends the SenderId TLV record.
func (b *AADBuilder) SenderID(id string) (*AADBuilder, error) { return b.Add(AADTagSenderID, []byte(id)) }

// RecipientID appends the RecipientId TLV record.
func (b *AADBuilder) RecipientID(id string) (*AADBuilder, error) {
	return b.Add(AADTagRecipientID, []byte(id))
}

// Route appends the Route TLV record.
func (b *AADBuilder) Route(route string) (*AADBuilder, error) { return b.Add(AADTagRoute, []byte(route)) }

// TimestampUnixMs appends the TimestampUnixMs TLV record as a big-endian u64.
func (b *AADBuilder) TimestampUnixMs(ms uint64) (*AADBuilder, error) {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], ms)
	return b.Add(AADTagTimestampMs, v[:])
}

// Sequence appends the Sequence TLV record as a big-endian u64.
func (b *AADBuilder) Sequence(seq uint64) (*AADBuilder, error) {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], seq)
	return b.Add(AADTagSequence, v[:])
}

// MsgID appends the MsgId TLV record. id must be exactly 16 bytes.
func (b *AADBuilder) MsgID(id [16]byte) (*AADBuilder, error) { return b.Add(AADTagMsgID, id[:]) }

// Bytes returns the assembled AAD.
func (b *AADBuilder) Bytes() []byte { return b.buf }
