package session

import (
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store keeps live sessions in process memory. Update runs fn under the
// store lock so every action on a session completes before the next starts.
type Store interface {
	Put(s *Session)
	Update(id string, fn func(s *Session) error) error
	// Replace swaps the session id for the one fn derives from it, under a
	// single lock.
	Replace(id string, fn func(s *Session) (*Session, error)) error
	Delete(id string) bool
	// Expire removes sessions created before cutoff and returns their ids.
	Expire(cutoff time.Time) []string
	Len() int
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewInMemoryStore() Store {
	return &memoryStore{sessions: map[string]*Session{}}
}

func (m *memoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *memoryStore) Update(id string, fn func(s *Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

func (m *memoryStore) Replace(id string, fn func(s *Session) (*Session, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	next, err := fn(s)
	if err != nil {
		return err
	}
	delete(m.sessions, id)
	m.sessions[next.ID] = next
	return nil
}

func (m *memoryStore) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *memoryStore) Expire(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var gone []string
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			gone = append(gone, id)
		}
	}
	return gone
}

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
