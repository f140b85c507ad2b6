package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker guards an output base name while a run renders to it, so that two
// runs handed the same name cannot interleave their file writes. The memory
// implementation covers a single process; the Redis implementation
// coordinates replicas behind one output area.
type Locker interface {
	// Lock acquires the lock for key, blocking until acquired or ctx is
	// canceled. The TTL bounds how long a crashed holder can wedge the key.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
