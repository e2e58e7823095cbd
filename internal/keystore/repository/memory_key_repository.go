// Package repository implements persistence for key metadata and policies.
//
// Provides an in-memory implementation for tests and ephemeral deployments,
// and a file-backed implementation that durably persists each key as its
// own JSON document via an atomic temp-file-then-rename write.
package repository

import (
	"context"
	"sync"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// MemoryKeyRepository stores key metadata in a guarded in-memory map. Safe
// for concurrent use.
type MemoryKeyRepository struct {
	mu   sync.RWMutex
	keys map[domain.KeyId]*domain.KeyMetadata
}

// NewMemoryKeyRepository builds an empty in-memory key repository.
func NewMemoryKeyRepository() *MemoryKeyRepository {
	return &MemoryKeyRepository{keys: make(map[domain.KeyId]*domain.KeyMetadata)}
}

// Get returns a copy of the stored key, or domain.ErrKeyNotFound.
func (r *MemoryKeyRepository) Get(_ context.Context, id domain.KeyId) (*domain.KeyMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.keys[id]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	clone := *k
	return &clone, nil
}

// Put inserts or replaces the key's record.
func (r *MemoryKeyRepository) Put(_ context.Context, key *domain.KeyMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *key
	r.keys[key.ID] = &clone
	return nil
}

// Delete removes the key's record. A missing key is not an error.
func (r *MemoryKeyRepository) Delete(_ context.Context, id domain.KeyId) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.keys, id)
	return nil
}

// List returns every stored key.
func (r *MemoryKeyRepository) List(_ context.Context) ([]*domain.KeyMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.KeyMetadata, 0, len(r.keys))
	for _, k := range r.keys {
		clone := *k
		out = append(out, &clone)
	}
	return out, nil
}

// ListByState returns every stored key in the given state.
func (r *MemoryKeyRepository) ListByState(_ context.Context, state domain.KeyState) ([]*domain.KeyMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.KeyMetadata
	for _, k := range r.keys {
		if k.State == state {
			clone := *k
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ListByParent returns every stored key whose ParentID matches id.
func (r *MemoryKeyRepository) ListByParent(_ context.Context, id domain.KeyId) ([]*domain.KeyMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.KeyMetadata
	for _, k := range r.keys {
		if k.ParentID != nil && *k.ParentID == id {
			clone := *k
			out = append(out, &clone)
		}
	}
	return out, nil
}
