package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SessionStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.SessionStore.
func SessionStoreContractTest(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405.000000")

	sample := func(id string) *domain.Session {
		return &domain.Session{
			ID:        id,
			Owner:     "user-1",
			Topics:    []string{"배열", "해시"},
			Persona:   "초보자",
			StartedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
			History: []domain.Message{
				domain.UserMessage("안녕하세요"),
				domain.AssistantMessage("무엇을 도와드릴까요?"),
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		id := prefix + "-roundtrip"
		s := sample(id)
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, s.Owner, loaded.Owner)
		assert.Equal(t, s.Topics, loaded.Topics)
		assert.Equal(t, s.Persona, loaded.Persona)
		assert.True(t, s.StartedAt.Equal(loaded.StartedAt))
		assert.Nil(t, loaded.EndedAt)
		assert.Equal(t, s.History, loaded.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		id := prefix + "-overwrite"
		s := sample(id)
		require.NoError(t, store.Save(ctx, s))

		ended := s.StartedAt.Add(time.Hour)
		s.EndedAt = &ended
		s.History = append(s.History, domain.UserMessage("더 알려주세요"))
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, loaded.EndedAt)
		assert.True(t, ended.Equal(*loaded.EndedAt))
		assert.Len(t, loaded.History, 3)
		assert.False(t, loaded.Active())
	})

	t.Run("Isolation", func(t *testing.T) {
		id := prefix + "-isolation"
		s := sample(id)
		require.NoError(t, store.Save(ctx, s))

		s.Topics[0] = "mutated"
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "배열", loaded.Topics[0], "the store must not alias caller memory")

		loaded.History[0].Text = "mutated"
		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "안녕하세요", again.History[0].Text)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, store.Save(ctx, sample(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := prefix+"-list-1", prefix+"-list-2"
		require.NoError(t, store.Save(ctx, sample(id1)))
		require.NoError(t, store.Save(ctx, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("Concurrent Saves", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := prefix + "-concurrent-" + string(rune('a'+i))
				assert.NoError(t, store.Save(ctx, sample(id)))
			}(i)
		}
		wg.Wait()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		for i := 0; i < 8; i++ {
			assert.Contains(t, ids, prefix+"-concurrent-"+string(rune('a'+i)))
		}
	})
}
