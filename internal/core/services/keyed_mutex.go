package services

import (
	"context"
	"sync"

	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
)

// KeyedMutex is the in-process SummaryLock used when aggregation runs on a
// single instance. Multi-instance deployments swap in the redis-backed lock.
type KeyedMutex struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewKeyedMutex creates an in-process keyed lock.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{held: make(map[string]chan struct{})}
}

// Ensure KeyedMutex implements the SummaryLock interface
var _ portsrepo.SummaryLock = (*KeyedMutex)(nil)

// Lock blocks until the key is free or ctx is done.
func (m *KeyedMutex) Lock(ctx context.Context, key string) (portsrepo.Unlocker, error) {
	for {
		m.mu.Lock()
		waitCh, taken := m.held[key]
		if !taken {
			ch := make(chan struct{})
			m.held[key] = ch
			m.mu.Unlock()
			return &keyedUnlocker{owner: m, key: key, ch: ch}, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-waitCh:
			// Holder released; race for the key again.
		}
	}
}

type keyedUnlocker struct {
	owner *KeyedMutex
	key   string
	ch    chan struct{}
	once  sync.Once
}

// Unlock releases the key. Safe to call more than once.
func (u *keyedUnlocker) Unlock(context.Context) error {
	u.once.Do(func() {
		u.owner.mu.Lock()
		delete(u.owner.held, u.key)
		u.owner.mu.Unlock()
		close(u.ch)
	})
	return nil
}
