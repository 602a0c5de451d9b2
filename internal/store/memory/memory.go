// Package memory provides the process-lifetime in-memory store. All state
// is lost on restart, which is the intended durability model.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quacklabs/quack/internal/store"
)

// Store keeps users, sessions, and rooms in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*store.User
	sessions map[string]*store.Session
	rooms    map[string]*store.Room
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[string]*store.User),
		sessions: make(map[string]*store.Session),
		rooms:    make(map[string]*store.Room),
	}
}

// CreateUser registers a user with a generated id.
func (s *Store) CreateUser(_ context.Context, name string) (*store.User, error) {
	u := &store.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()

	cp := *u
	return &cp, nil
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(_ context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdateUserName changes a user's display name.
func (s *Store) UpdateUserName(_ context.Context, id, name string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Name = name
	cp := *u
	return &cp, nil
}

// CreateSession mints an opaque token bound to a user.
func (s *Store) CreateSession(_ context.Context, userID string) (*store.Session, error) {
	sess := &store.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	cp := *sess
	return &cp, nil
}

// GetSession resolves a token to its session record.
func (s *Store) GetSession(_ context.Context, token string) (*store.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

// CreateRoom records a room under the given id.
func (s *Store) CreateRoom(_ context.Context, id string) (*store.Room, error) {
	r := &store.Room{
		ID:        id,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.rooms[r.ID] = r
	s.mu.Unlock()

	cp := *r
	return &cp, nil
}

// GetRoom retrieves a room by id.
func (s *Store) GetRoom(_ context.Context, id string) (*store.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListRooms returns all room records.
func (s *Store) ListRooms(_ context.Context) ([]*store.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*store.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		cp := *r
		rooms = append(rooms, &cp)
	}
	return rooms, nil
}

// DeleteRoom removes a room record if present.
func (s *Store) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.rooms, id)
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
