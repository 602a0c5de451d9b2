package core

import "errors"

// Admission errors. Each one maps to a distinct policy-violation close
// reason at the transport boundary.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("user already in room")
)

// ErrNotSubmittable is returned by Relay for inbound variants that only
// the server may mint. Such events are dropped, never fatal.
var ErrNotSubmittable = errors.New("event type not client-submittable")
