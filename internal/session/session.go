// Package session holds per-user booking dialogue state.
//
// A session exists only while a user is mid-way through the booking
// dialogue: it is created on the first booking-intent message, advanced one
// field per accepted message, and deleted on completion or cancellation.
package session

import (
	"sync"
	"time"
)

// Step names one stage of the booking dialogue.
type Step string

const (
	StepCategory  Step = "category"
	StepTreatment Step = "treatment"
	StepName      Step = "name"
	StepPhone     Step = "phone"
	StepDate      Step = "date"
	StepTime      Step = "time"
	StepNotes     Step = "notes"
)

// Session is one user's progress through the booking dialogue. Fields only
// ever contains keys for steps already passed.
type Session struct {
	UserID    string
	Step      Step
	Fields    map[Step]string
	UpdatedAt time.Time
}

// New creates a session positioned at the first step.
func New(userID string) *Session {
	return &Session{
		UserID:    userID,
		Step:      StepCategory,
		Fields:    make(map[Step]string),
		UpdatedAt: time.Now(),
	}
}

// Store is the session persistence abstraction. The reference backing is an
// in-memory map; a distributed deployment can swap in a shared keyed store
// without touching step logic.
type Store interface {
	Get(userID string) (*Session, bool)
	Set(userID string, s *Session)
	Delete(userID string)
}

// MemoryStore keeps sessions in process memory with an inactivity TTL.
// Sessions idle past the TTL read as absent, so an abandoned dialogue
// resets to "no session" instead of lingering forever. State does not
// survive restarts and is not shared across instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// DefaultTTL is applied when NewMemoryStore is given a non-positive ttl.
const DefaultTTL = 30 * time.Minute

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (ms *MemoryStore) Get(userID string) (*Session, bool) {
	ms.mu.RLock()
	s, ok := ms.sessions[userID]
	ms.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(s.UpdatedAt) > ms.ttl {
		ms.Delete(userID)
		return nil, false
	}
	return s, true
}

func (ms *MemoryStore) Set(userID string, s *Session) {
	s.UpdatedAt = time.Now()
	ms.mu.Lock()
	ms.sessions[userID] = s
	ms.mu.Unlock()
}

func (ms *MemoryStore) Delete(userID string) {
	ms.mu.Lock()
	delete(ms.sessions, userID)
	ms.mu.Unlock()
}

// Sweep removes expired sessions and reports how many were dropped.
func (ms *MemoryStore) Sweep() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for userID, s := range ms.sessions {
		if time.Since(s.UpdatedAt) > ms.ttl {
			delete(ms.sessions, userID)
			removed++
		}
	}
	return removed
}
