package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/citadel/internal/keystore/domain"
)

type countingPolicyLoader struct {
	policy *domain.KeyPolicy
	calls  int
}

func (l *countingPolicyLoader) Get(_ context.Context, id domain.PolicyId) (*domain.KeyPolicy, error) {
	l.calls++
	if l.policy == nil {
		return nil, domain.ErrPolicyNotFound
	}
	return l.policy, nil
}

func TestPolicyCache_LoadsOnceThenHitsCache(t *testing.T) {
	loader := &countingPolicyLoader{policy: &domain.KeyPolicy{ID: "p1", Name: "default"}}
	cache := NewPolicyCache(loader)

	p1, err := cache.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "default", p1.Name)

	p2, err := cache.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "default", p2.Name)

	assert.Equal(t, 1, loader.calls)
}

func TestPolicyCache_InvalidateForcesReload(t *testing.T) {
	loader := &countingPolicyLoader{policy: &domain.KeyPolicy{ID: "p1"}}
	cache := NewPolicyCache(loader)

	_, err := cache.Get(context.Background(), "p1")
	require.NoError(t, err)
	cache.Invalidate("p1")
	_, err = cache.Get(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls)
}

func TestPolicyCache_PropagatesNotFound(t *testing.T) {
	loader := &countingPolicyLoader{}
	cache := NewPolicyCache(loader)

	_, err := cache.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}
