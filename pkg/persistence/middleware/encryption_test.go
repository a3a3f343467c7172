package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/aretw0/tutorgraph/pkg/adapters/memory"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/persistence/middleware"
	"github.com/aretw0/tutorgraph/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, middleware.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptionMiddleware_RoundTrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	session := &domain.Session{
		ID:        "secure-session",
		Owner:     "ada",
		Topics:    []string{"hash maps"},
		Persona:   "socratic",
		StartedAt: started,
		History:   []domain.Message{domain.UserMessage("secret-question")},
	}

	require.NoError(t, secureStore.Save(ctx, session))

	// The raw record only exposes the envelope.
	raw, err := underlyingStore.Load(ctx, "secure-session")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Owner)
	assert.Empty(t, raw.History)
	assert.True(t, raw.StartedAt.Equal(started))
	assert.NotContains(t, raw.Sealed, "secret-question")

	loaded, err := secureStore.Load(ctx, "secure-session")
	require.NoError(t, err)
	assert.Empty(t, loaded.Sealed)
	assert.Equal(t, "ada", loaded.Owner)
	assert.Equal(t, []string{"hash maps"}, loaded.Topics)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "secret-question", loaded.History[0].Text)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	mwOld, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	secureStoreOld := mwOld(underlyingStore)

	ctx := context.Background()
	session := &domain.Session{ID: "rotation-session", Owner: "encrypted-with-old-key"}
	require.NoError(t, secureStoreOld.Save(ctx, session))

	mwNew, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	secureStoreNew := mwNew(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "rotation-session")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "encrypted-with-old-key", loaded.Owner)

	// Saving again seals with the new key only.
	loaded.Owner = "encrypted-with-new-key"
	require.NoError(t, secureStoreNew.Save(ctx, loaded))

	_, err = secureStoreOld.Load(ctx, "rotation-session")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainSessions(t *testing.T) {
	underlyingStore := memory.NewStore()
	require.NoError(t, underlyingStore.Save(context.Background(), &domain.Session{ID: "plain"}))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	_, err = mw(underlyingStore).Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	tests.SessionStoreContractTest(t, mw(memory.NewStore()))
}

func TestChain_PIIThenEncryption(t *testing.T) {
	underlyingStore := memory.NewStore()
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	require.NoError(t, err)

	store := middleware.Chain(underlyingStore, pii, enc)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.Session{
		ID:      "chained",
		History: []domain.Message{domain.UserMessage("reach me at ada@example.org")},
	}))

	loaded, err := store.Load(ctx, "chained")
	require.NoError(t, err)
	assert.Equal(t, "reach me at ***", loaded.History[0].Text)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	fromHex, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromHex)

	fromBase64, err := middleware.ParseKey(" " + base64.StdEncoding.EncodeToString(key) + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, fromBase64)

	_, err = middleware.ParseKey("too-short")
	assert.Error(t, err)
}
