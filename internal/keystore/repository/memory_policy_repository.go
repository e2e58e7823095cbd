package repository

import (
	"context"
	"sync"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// MemoryPolicyRepository stores key policies in a guarded in-memory map.
type MemoryPolicyRepository struct {
	mu       sync.RWMutex
	policies map[domain.PolicyId]*domain.KeyPolicy
}

// NewMemoryPolicyRepository builds an empty in-memory policy repository.
func NewMemoryPolicyRepository() *MemoryPolicyRepository {
	return &MemoryPolicyRepository{policies: make(map[domain.PolicyId]*domain.KeyPolicy)}
}

// Get returns a copy of the stored policy, or domain.ErrPolicyNotFound.
func (r *MemoryPolicyRepository) Get(_ context.Context, id domain.PolicyId) (*domain.KeyPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[id]
	if !ok {
		return nil, domain.ErrPolicyNotFound
	}
	clone := *p
	return &clone, nil
}

// Put inserts or replaces a policy.
func (r *MemoryPolicyRepository) Put(_ context.Context, policy *domain.KeyPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *policy
	r.policies[policy.ID] = &clone
	return nil
}

// List returns every stored policy.
func (r *MemoryPolicyRepository) List(_ context.Context) ([]*domain.KeyPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.KeyPolicy, 0, len(r.policies))
	for _, p := range r.policies {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}
