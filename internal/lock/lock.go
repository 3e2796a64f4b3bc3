// Package lock provides short lived keyed mutual exclusion across requests.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLocked is returned by TryLock when another holder owns the key.
var ErrLocked = errors.New("lock already held")

// Unlock releases a lock obtained from TryLock.
type Unlock func(ctx context.Context) error

// Locker hands out non-blocking keyed locks. A lock expires after ttl even if
// its holder never releases it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}

// localLocker is an in-process Locker for single instance deployments.
type localLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocal creates an in-process Locker.
func NewLocal() Locker {
	return &localLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// TryLock implements Locker.
func (l *localLocker) TryLock(_ context.Context, key string, ttl time.Duration) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiry, ok := l.held[key]; ok && now.Before(expiry) {
		return nil, ErrLocked
	}

	expiry := now.Add(ttl)
	l.held[key] = expiry

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// a holder whose lock lapsed must not release the next holder's lock
		if held, ok := l.held[key]; ok && held.Equal(expiry) {
			delete(l.held, key)
		}
		return nil
	}, nil
}
