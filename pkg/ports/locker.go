package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on a session across service replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// expires after ttl even if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
