package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// Locker implements ports.Locker with one slot per key. It coordinates runs
// inside a single process; the TTL only matters across processes and is
// ignored here.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

// Lock blocks until the key's slot is free or ctx is done. The returned
// unlock is idempotent.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-slot })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
