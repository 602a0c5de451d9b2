package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a user, session, or room does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered participant.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Session maps an opaque bearer token to a user.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
}

// Room is a two-party chat room record. Membership is runtime state owned
// by the room channel hub, not the store.
type Room struct {
	ID        string
	CreatedAt time.Time
}

// UserStore handles user identities and profiles.
type UserStore interface {
	// CreateUser registers a user with a display name and generated id.
	CreateUser(ctx context.Context, name string) (*User, error)

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id string) (*User, error)

	// UpdateUserName changes a user's display name.
	UpdateUserName(ctx context.Context, id, name string) (*User, error)
}

// SessionStore handles bearer session tokens.
type SessionStore interface {
	// CreateSession mints an opaque token bound to a user.
	CreateSession(ctx context.Context, userID string) (*Session, error)

	// GetSession resolves a token to its session record.
	GetSession(ctx context.Context, token string) (*Session, error)
}

// RoomStore handles room records.
type RoomStore interface {
	// CreateRoom records a room under the given id.
	CreateRoom(ctx context.Context, id string) (*Room, error)

	// GetRoom retrieves a room by id.
	GetRoom(ctx context.Context, id string) (*Room, error)

	// ListRooms returns all room records.
	ListRooms(ctx context.Context) ([]*Room, error)

	// DeleteRoom removes a room record. Deleting a missing room is a
	// no-op, so a leave racing a concurrent eviction stays harmless.
	DeleteRoom(ctx context.Context, id string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	SessionStore
	RoomStore

	// Close releases any underlying resources.
	Close() error
}
