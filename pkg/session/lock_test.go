package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/tutorgraph/pkg/adapters/memory"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	store := memory.NewStore()
	mgr := NewManager(store)
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = store.Save(ctx, &domain.Session{ID: sid})
		_ = mgr.AppendHistory(ctx, sid, domain.UserMessage("hi"))
		_, _ = mgr.End(ctx, sid)
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
