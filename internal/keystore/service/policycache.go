package service

import (
	"context"
	"sync"

	"github.com/allisson/citadel/internal/keystore/domain"
)

// policyLoader fetches a policy from durable storage on a cache miss.
type policyLoader interface {
	Get(ctx context.Context, id domain.PolicyId) (*domain.KeyPolicy, error)
}

// PolicyCache holds the active set of base policies in memory, refreshed
// lazily from storage on miss. Thread-safe access is backed by a sync.Map,
// the same pattern the keystore's forerunner uses to hold decrypted key
// material resident without a single coarse lock serializing every lookup.
type PolicyCache struct {
	loader policyLoader
	cache  sync.Map // domain.PolicyId -> *domain.KeyPolicy
}

// NewPolicyCache builds an empty cache backed by loader.
func NewPolicyCache(loader policyLoader) *PolicyCache {
	return &PolicyCache{loader: loader}
}

// Get returns the policy for id, populating the cache from storage on miss.
func (c *PolicyCache) Get(ctx context.Context, id domain.PolicyId) (*domain.KeyPolicy, error) {
	if v, ok := c.cache.Load(id); ok {
		return v.(*domain.KeyPolicy), nil
	}

	policy, err := c.loader.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Store(id, policy)
	return policy, nil
}

// Invalidate evicts id from the cache, forcing the next Get to reload it.
func (c *PolicyCache) Invalidate(id domain.PolicyId) {
	c.cache.Delete(id)
}

// Clear evicts every cached policy.
func (c *PolicyCache) Clear() {
	c.cache.Clear()
}
