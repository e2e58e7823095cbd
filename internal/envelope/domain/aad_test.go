package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAADBuilder_BuildsCanonicalPrefix(t *testing.T) {
	b := NewAADBuilder()
	assert.True(t, strings.HasPrefix(string(b.Bytes()), AADPrefix))
}

func TestAADBuilder_FieldsChain(t *testing.T) {
	b := NewAADBuilder()
	_, err := b.SenderID("alice")
	require.NoError(t, err)
	_, err = b.RecipientID("bob")
	require.NoError(t, err)
	_, err = b.Route("edge-1")
	require.NoError(t, err)
	_, err = b.TimestampUnixMs(1234)
	require.NoError(t, err)
	_, err = b.Sequence(7)
	require.NoError(t, err)
	_, err = b.MsgID([16]byte{1, 2, 3})
	require.NoError(t, err)

	out := b.Bytes()
	assert.Greater(t, len(out), len(AADPrefix))
}

func TestAADBuilder_RejectsOversizedValue(t *testing.T) {
	b := NewAADBuilder()
	_, err := b.Add(AADTagRoute, make([]byte, maxTLVValueLen+1))
	assert.ErrorIs(t, err, ErrAADTooLarge)
}

func TestBuildContext_Format(t *testing.T) {
	ctx := BuildContext("prod", "transfer")
	assert.Equal(t, "citadel|ctx|v1|prod|transfer", string(ctx))
}
