package session

import (
	"sync"
	"time"
)

// LockManager serializes message processing per user to prevent lost updates
// when several webhook deliveries for the same user id arrive concurrently.
type LockManager struct {
	mu      sync.Mutex
	mutexes map[string]*userLock
}

// userLock's refs and lastUsed are guarded by LockManager.mu, so Cleanup can
// never delete a lock that a goroutine has fetched but not yet acquired.
type userLock struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

func NewLockManager() *LockManager {
	return &LockManager{
		mutexes: make(map[string]*userLock),
	}
}

// WithLock executes fn while holding the per-user mutex. Concurrent messages
// from the same user are serialized; different users run in parallel.
func (m *LockManager) WithLock(userID string, fn func()) {
	m.mu.Lock()
	ul, ok := m.mutexes[userID]
	if !ok {
		ul = &userLock{}
		m.mutexes[userID] = ul
	}
	ul.refs++
	ul.lastUsed = time.Now()
	m.mu.Unlock()

	ul.mu.Lock()
	defer func() {
		ul.mu.Unlock()
		m.mu.Lock()
		ul.refs--
		m.mu.Unlock()
	}()
	fn()
}

// Cleanup removes idle locks not used within maxAge to prevent memory leaks.
// Locks that are held, or that a waiter has already fetched, are spared.
func (m *LockManager) Cleanup(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for userID, ul := range m.mutexes {
		if ul.refs == 0 && now.Sub(ul.lastUsed) > maxAge {
			delete(m.mutexes, userID)
		}
	}
}
