// Package core implements the room session protocol: per-room broadcast
// channels with two-party capacity, admission checks, membership
// lifecycle events, and relay of participant-submitted events.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quacklabs/quack/internal/store"
	"github.com/quacklabs/quack/pkg/protocol"
)

// DefaultIdleTTL is how long a room may sit without any connected member
// before the janitor evicts its record.
const DefaultIdleTTL = 5 * time.Minute

// Hub owns every active room channel and evicts idle rooms.
type Hub struct {
	store   store.Store
	log     *zerolog.Logger
	idleTTL time.Duration

	mu       sync.Mutex
	channels map[string]*channel
	// idleSince records when a room last dropped to zero members. Rooms
	// absent from this map fall back to their CreatedAt.
	idleSince map[string]time.Time
}

// NewHub constructs a hub over the given store. idleTTL <= 0 selects
// DefaultIdleTTL.
func NewHub(st store.Store, logger *zerolog.Logger, idleTTL time.Duration) *Hub {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Hub{
		store:     st,
		log:       logger,
		idleTTL:   idleTTL,
		channels:  make(map[string]*channel),
		idleSince: make(map[string]time.Time),
	}
}

// Join admits a user into a room channel. On success the room's members,
// the caller included, receive a sys-join carrying the refreshed profile
// list, and the caller gets a subscription to all future broadcasts.
//
// Admission fails with ErrRoomNotFound, ErrRoomFull, or ErrAlreadyInRoom;
// authentication is the transport's concern and happens before Join.
func (h *Hub) Join(ctx context.Context, roomID, userID string) (*Subscription, error) {
	if _, err := h.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("lookup room: %w", err)
	}

	// Membership mutation happens under the hub lock so a join cannot
	// land on a channel being torn down by a concurrent last leave.
	h.mu.Lock()
	ch, ok := h.channels[roomID]
	if !ok {
		ch = newChannel(roomID)
		h.channels[roomID] = ch
	}
	sub, members, err := ch.add(userID)
	if err == nil {
		delete(h.idleSince, roomID)
	}
	h.mu.Unlock()
	if err != nil {
		return nil, err
	}

	profiles := h.resolveProfiles(ctx, members)
	ch.broadcast(protocol.SysJoin(userID, profiles))

	h.log.Info().Str("room_id", roomID).Str("user_id", userID).
		Int("members", len(members)).Msg("user joined room")
	return sub, nil
}

// Leave removes a subscription from its room, broadcasts sys-leave with
// the remaining member list, and tears the channel down if it is now
// empty. Safe to call when the room record has already been evicted and
// after a failed or duplicate join.
func (h *Hub) Leave(ctx context.Context, sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	ch, ok := h.channels[sub.RoomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	remaining, removed := ch.remove(sub)
	if removed && len(remaining) == 0 {
		delete(h.channels, sub.RoomID)
		h.idleSince[sub.RoomID] = time.Now()
	}
	h.mu.Unlock()

	if !removed {
		return
	}
	if len(remaining) > 0 {
		ch.broadcast(protocol.SysLeave(sub.UserID, h.resolveProfiles(ctx, remaining)))
	}

	h.log.Info().Str("room_id", sub.RoomID).Str("user_id", sub.UserID).
		Int("members", len(remaining)).Msg("user left room")
}

// Relay processes an inbound event from a subscriber. The event is
// re-stamped with the subscriber's authenticated id; a client-claimed
// userId is never trusted. Propagate requests turn into a sys-update
// broadcast with the current profile list; message and data events are
// fanned out as-is. Non-submittable variants return ErrNotSubmittable so
// the transport can drop them without closing the connection.
func (h *Hub) Relay(ctx context.Context, sub *Subscription, ev protocol.Event) error {
	if !ev.Type.ClientSubmittable() {
		return ErrNotSubmittable
	}

	h.mu.Lock()
	ch, ok := h.channels[sub.RoomID]
	h.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}

	ev.UserID = sub.UserID

	if ev.Type == protocol.EventPropagate {
		members := ch.members()
		ch.broadcast(protocol.SysUpdate(sub.UserID, h.resolveProfiles(ctx, members)))
		return nil
	}

	ch.broadcast(ev)
	return nil
}

// MemberCount reports how many users are connected to a room.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.Lock()
	ch, ok := h.channels[roomID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return ch.memberCount()
}

// Run drives the idle-room janitor until the context is cancelled. Rooms
// with zero connected members for longer than the idle TTL are deleted
// from the room registry.
func (h *Hub) Run(ctx context.Context) {
	interval := h.idleTTL / 2
	if interval < time.Second {
		interval = h.idleTTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.evictIdleRooms(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) evictIdleRooms(ctx context.Context) {
	rooms, err := h.store.ListRooms(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("janitor: list rooms")
		return
	}

	cutoff := time.Now().Add(-h.idleTTL)
	for _, room := range rooms {
		h.mu.Lock()
		_, active := h.channels[room.ID]
		idle, tracked := h.idleSince[room.ID]
		h.mu.Unlock()

		if active {
			continue
		}
		if !tracked {
			idle = room.CreatedAt
		}
		if idle.After(cutoff) {
			continue
		}

		if err := h.store.DeleteRoom(ctx, room.ID); err != nil {
			h.log.Warn().Err(err).Str("room_id", room.ID).Msg("janitor: delete room")
			continue
		}
		h.mu.Lock()
		delete(h.idleSince, room.ID)
		h.mu.Unlock()
		h.log.Info().Str("room_id", room.ID).Msg("evicted idle room")
	}
}

// resolveProfiles maps member ids to display profiles. A member whose
// user record vanished is skipped rather than failing the broadcast.
func (h *Hub) resolveProfiles(ctx context.Context, memberIDs []string) []protocol.Profile {
	profiles := make([]protocol.Profile, 0, len(memberIDs))
	for _, id := range memberIDs {
		u, err := h.store.GetUser(ctx, id)
		if err != nil {
			h.log.Warn().Err(err).Str("user_id", id).Msg("resolve member profile")
			continue
		}
		profiles = append(profiles, protocol.Profile{ID: u.ID, Name: u.Name})
	}
	return profiles
}
