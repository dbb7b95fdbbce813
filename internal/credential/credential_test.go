package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct{ ok bool }

func (s stubValidator) ValidateKey(context.Context, string) bool { return s.ok }

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-abc123xyz9")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk-abc")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc123xyz9", opened)
}

func TestSealerRejectsTamperedPayload(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-abc123xyz9")
	require.NoError(t, err)

	tampered := "A" + sealed[1:]
	if tampered == sealed {
		tampered = "B" + sealed[1:]
	}
	_, err = sealer.Open(tampered)
	assert.Error(t, err)
}

func TestSealerRejectsWrongSecret(t *testing.T) {
	sealer, err := NewSealer("secret-one")
	require.NoError(t, err)
	other, err := NewSealer("secret-two")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-abc123xyz9")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)
}

func TestNewCredential(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	cred, err := New("user-1", "sk-abc123xyz9", sealer)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.ID)
	assert.Equal(t, "xyz9", cred.KeyLast4)
	assert.Equal(t, HashKey("sk-abc123xyz9"), cred.KeyHash)
	assert.Equal(t, StatusActive, cred.Status)

	_, err = New("", "sk-x", sealer)
	assert.ErrorIs(t, err, ErrEmptyOwner)
	_, err = New("user-1", "  ", sealer)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestServiceCreateValidatesKey(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	svc := NewService(sealer, stubValidator{ok: false})
	_, err = svc.Create(context.Background(), "user-1", "sk-bad")
	assert.Error(t, err)

	svc = NewService(sealer, stubValidator{ok: true})
	cred, err := svc.Create(context.Background(), "user-1", "sk-good-key1")
	require.NoError(t, err)

	opened, err := svc.Open(cred)
	require.NoError(t, err)
	assert.Equal(t, "sk-good-key1", opened)

	cred.Status = StatusRevoked
	_, err = svc.Open(cred)
	assert.Error(t, err)
}
