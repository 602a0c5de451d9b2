// Package protocol defines the JSON wire events exchanged over a room
// channel. Both the server relay and the client sync engine speak this
// vocabulary, so it lives outside internal/.
package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the event union.
type EventType string

const (
	// EventMessage carries the full current content of a participant's
	// message box. The protocol is state-sync: every keystroke re-sends
	// the whole content, never a diff.
	EventMessage EventType = "message"
	// EventSysJoin announces a participant joining, with the refreshed
	// member profile list. Server-originated only.
	EventSysJoin EventType = "sys-join"
	// EventSysUpdate refreshes the member profile list without a join,
	// e.g. after a profile edit. Server-originated only.
	EventSysUpdate EventType = "sys-update"
	// EventSysLeave announces a participant leaving, with the remaining
	// member profile list. Server-originated only.
	EventSysLeave EventType = "sys-leave"
	// EventData relays an opaque payload map (pings, reactions, custom
	// signals) to every subscriber.
	EventData EventType = "data"
	// EventPropagate asks the server to re-broadcast current membership
	// as a sys-update. Carries no payload.
	EventPropagate EventType = "propagate"
)

// Data payload keys understood by the client sync engine.
const (
	DataKeyPing     = "ping"
	DataKeyReaction = "reaction"
)

// Profile is a user's display identity as seen by room peers.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is the tagged union flowing over a room channel. Fields beyond
// Type are populated per variant; unused fields stay zero and are elided
// from the encoding.
type Event struct {
	Type    EventType      `json:"type"`
	UserID  string         `json:"userId,omitempty"`
	Content string         `json:"content,omitempty"`
	Users   []Profile      `json:"users,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Message builds a content-sync event. Blank content is legal and means
// "cleared".
func Message(userID, content string) Event {
	return Event{Type: EventMessage, UserID: userID, Content: content}
}

// SysJoin builds a join announcement with the full member list.
func SysJoin(userID string, users []Profile) Event {
	return Event{Type: EventSysJoin, UserID: userID, Users: users}
}

// SysUpdate builds a membership refresh announcement.
func SysUpdate(userID string, users []Profile) Event {
	return Event{Type: EventSysUpdate, UserID: userID, Users: users}
}

// SysLeave builds a leave announcement with the remaining member list.
func SysLeave(userID string, users []Profile) Event {
	return Event{Type: EventSysLeave, UserID: userID, Users: users}
}

// Ping builds a data event carrying an attention ping.
func Ping(userID string) Event {
	return Event{Type: EventData, UserID: userID, Data: map[string]any{DataKeyPing: true}}
}

// Reaction builds a data event carrying a reaction value.
func Reaction(userID, reaction string) Event {
	return Event{Type: EventData, UserID: userID, Data: map[string]any{DataKeyReaction: reaction}}
}

// Propagate builds a membership refresh request.
func Propagate() Event {
	return Event{Type: EventPropagate}
}

// IsPing reports whether a data event carries a truthy ping payload.
func (e Event) IsPing() bool {
	if e.Type != EventData {
		return false
	}
	v, ok := e.Data[DataKeyPing].(bool)
	return ok && v
}

// ReactionValue extracts the reaction from a data event, if present.
func (e Event) ReactionValue() (string, bool) {
	if e.Type != EventData {
		return "", false
	}
	v, ok := e.Data[DataKeyReaction].(string)
	return v, ok && v != ""
}

// ClientSubmittable reports whether clients may send this variant inbound.
// The sys-* variants are minted by the server only.
func (t EventType) ClientSubmittable() bool {
	switch t {
	case EventMessage, EventData, EventPropagate:
		return true
	default:
		return false
	}
}

// Known reports whether the type belongs to the closed union.
func (t EventType) Known() bool {
	switch t {
	case EventMessage, EventSysJoin, EventSysUpdate, EventSysLeave, EventData, EventPropagate:
		return true
	default:
		return false
	}
}

// Decode parses a wire event and rejects unknown variants.
func Decode(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if !ev.Type.Known() {
		return Event{}, fmt.Errorf("decode event: unknown type %q", ev.Type)
	}
	return ev, nil
}

// Encode serializes an event for the wire.
func (e Event) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return raw, nil
}
