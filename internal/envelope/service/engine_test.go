package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/citadel/internal/envelope/domain"
)

func TestEngine_SealOpen_Roundtrip(t *testing.T) {
	engine := NewEngine()
	pk, sk, err := engine.GenerateKeypair()
	require.NoError(t, err)
	assert.Len(t, pk, domain.HybridPublicKeySize)
	assert.Len(t, sk, domain.HybridSecretKeySize)

	aad := []byte("a")
	ctx := []byte("c")
	plaintext := []byte("hello")

	ciphertext, err := engine.Seal(pk, plaintext, aad, ctx)
	require.NoError(t, err)
	assert.Len(t, ciphertext, domain.MinFrameSize+len(plaintext))

	got, err := engine.Open(sk, ciphertext, aad, ctx)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEngine_Seal_OutputIsNonDeterministic(t *testing.T) {
	engine := NewEngine()
	pk, _, err := engine.GenerateKeypair()
	require.NoError(t, err)

	c1, err := engine.Seal(pk, []byte("hello"), []byte("a"), []byte("c"))
	require.NoError(t, err)
	c2, err := engine.Seal(pk, []byte("hello"), []byte("a"), []byte("c"))
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "fresh ephemeral key and nonce must vary each call")
}

func TestEngine_Open_UniformErrorAcrossFailureModes(t *testing.T) {
	engine := NewEngine()
	pk, sk, err := engine.GenerateKeypair()
	require.NoError(t, err)
	otherPk, otherSk, err := engine.GenerateKeypair()
	require.NoError(t, err)
	_ = otherPk

	aad := []byte("a")
	ctx := []byte("c")
	ciphertext, err := engine.Seal(pk, []byte("hello"), aad, ctx)
	require.NoError(t, err)

	cases := map[string]func() ([]byte, []byte, []byte, []byte){
		"wrong aad": func() ([]byte, []byte, []byte, []byte) {
			return sk, ciphertext, []byte("A"), ctx
		},
		"wrong ctx": func() ([]byte, []byte, []byte, []byte) {
			return sk, ciphertext, aad, []byte("C")
		},
		"wrong key": func() ([]byte, []byte, []byte, []byte) {
			return otherSk, ciphertext, aad, ctx
		},
		"truncated": func() ([]byte, []byte, []byte, []byte) {
			return sk, ciphertext[:len(ciphertext)-1], aad, ctx
		},
		"flipped byte in header": func() ([]byte, []byte, []byte, []byte) {
			tampered := append([]byte{}, ciphertext...)
			tampered[0] ^= 0xFF
			return sk, tampered, aad, ctx
		},
		"flipped byte in tag": func() ([]byte, []byte, []byte, []byte) {
			tampered := append([]byte{}, ciphertext...)
			tampered[len(tampered)-1] ^= 0xFF
			return sk, tampered, aad, ctx
		},
	}

	var firstErr error
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			sk, ct, aad, ctx := fn()
			_, err := engine.Open(sk, ct, aad, ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrOpenFailed)
			if firstErr == nil {
				firstErr = err
			}
			assert.Equal(t, firstErr.Error(), err.Error(), "display string must be identical across failure modes")
		})
	}
}

func TestEngine_DecodeFrame_RejectsBadHeader(t *testing.T) {
	engine := NewEngine()
	pk, _, err := engine.GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := engine.Seal(pk, []byte("x"), nil, nil)
	require.NoError(t, err)

	for i := 0; i < domain.HeaderSize; i++ {
		tampered := append([]byte{}, ciphertext...)
		tampered[i] ^= 0xFF
		_, err := domain.DecodeFrame(tampered)
		assert.ErrorIs(t, err, domain.ErrOpenFailed, "header byte %d mismatch must be rejected", i)
	}
}

func TestEngine_Seal_EmptyAADAndContextAccepted(t *testing.T) {
	engine := NewEngine()
	pk, sk, err := engine.GenerateKeypair()
	require.NoError(t, err)

	ciphertext, err := engine.Seal(pk, []byte("payload"), nil, nil)
	require.NoError(t, err)

	got, err := engine.Open(sk, ciphertext, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}
