package domain

import "testing"

import "github.com/stretchr/testify/assert"

func TestCanTransition_LawfulPaths(t *testing.T) {
	cases := []struct {
		from, to KeyState
		want     bool
	}{
		{KeyStatePending, KeyStateActive, true},
		{KeyStatePending, KeyStateDestroyed, true},
		{KeyStatePending, KeyStateRotated, false},
		{KeyStateActive, KeyStateRotated, true},
		{KeyStateActive, KeyStateRevoked, true},
		{KeyStateActive, KeyStateExpired, true},
		{KeyStateActive, KeyStateDestroyed, false},
		{KeyStateRotated, KeyStateExpired, true},
		{KeyStateRotated, KeyStateActive, true},
		{KeyStateRotated, KeyStateRevoked, false},
		{KeyStateExpired, KeyStateDestroyed, true},
		{KeyStateExpired, KeyStateActive, false},
		{KeyStateRevoked, KeyStateDestroyed, true},
		{KeyStateDestroyed, KeyStateActive, false},
		{KeyStateDestroyed, KeyStateDestroyed, false},
	}
	for _, c := range cases {
		got := CanTransition(c.from, c.to)
		assert.Equalf(t, c.want, got, "%s -> %s", c.from, c.to)
	}
}

func TestKeyState_CanEncryptCanDecrypt(t *testing.T) {
	assert.True(t, KeyStateActive.CanEncrypt())
	assert.False(t, KeyStateRotated.CanEncrypt())
	assert.False(t, KeyStatePending.CanEncrypt())

	assert.True(t, KeyStateActive.CanDecrypt())
	assert.True(t, KeyStateRotated.CanDecrypt())
	assert.False(t, KeyStatePending.CanDecrypt())
	assert.False(t, KeyStateDestroyed.CanDecrypt())
}
