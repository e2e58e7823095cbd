package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyID_UniqueAndHexEncoded(t *testing.T) {
	a := NewKeyID()
	b := NewKeyID()
	assert.NotEqual(t, a, b)
	assert.Len(t, string(a), 32)
}

func TestKeyTypeSet_Contains(t *testing.T) {
	s := NewKeyTypeSet(KeyTypeKeyEncrypting, KeyTypeDataEncrypting)
	assert.True(t, s.Contains(KeyTypeKeyEncrypting))
	assert.False(t, s.Contains(KeyTypeRoot))
}
