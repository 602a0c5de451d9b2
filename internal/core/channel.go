package core

import (
	"sync"

	"github.com/quacklabs/quack/pkg/protocol"
)

// MaxRoomMembers is the hard capacity of every room.
const MaxRoomMembers = 2

// subscriberBuffer sizes each subscription's event channel. A subscriber
// that falls this far behind starts losing events rather than stalling
// the room.
const subscriberBuffer = 16

// Subscription is one connection's view of a room channel. Events carries
// every broadcast for the room, including events originated by this
// subscriber; disambiguating self-echo is the client's job.
type Subscription struct {
	UserID string
	RoomID string
	Events chan protocol.Event
}

// channel is the per-room fan-out registry. It owns the authoritative
// member set; the store only records room existence.
type channel struct {
	id string

	mu   sync.Mutex
	subs map[string]*Subscription
	// order preserves join order for member list snapshots.
	order []string
}

func newChannel(id string) *channel {
	return &channel{
		id:   id,
		subs: make(map[string]*Subscription),
	}
}

// add admits a user, enforcing capacity and single-membership. The caller
// receives the new subscription plus a join-order snapshot of member ids.
func (c *channel) add(userID string) (*Subscription, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.subs[userID]; exists {
		return nil, nil, ErrAlreadyInRoom
	}
	if len(c.subs) >= MaxRoomMembers {
		return nil, nil, ErrRoomFull
	}

	sub := &Subscription{
		UserID: userID,
		RoomID: c.id,
		Events: make(chan protocol.Event, subscriberBuffer),
	}
	c.subs[userID] = sub
	c.order = append(c.order, userID)

	return sub, c.memberSnapshot(), nil
}

// remove drops a subscription and closes its event channel. Returns the
// remaining member ids and whether the subscription was actually present.
func (c *channel) remove(sub *Subscription) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.subs[sub.UserID]
	if !ok || current != sub {
		return c.memberSnapshot(), false
	}

	delete(c.subs, sub.UserID)
	for i, id := range c.order {
		if id == sub.UserID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	close(sub.Events)

	return c.memberSnapshot(), true
}

// broadcast fans an event out to every current subscriber, the originator
// included. Slow consumers are dropped rather than blocking the room.
func (c *channel) broadcast(ev protocol.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		select {
		case sub.Events <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}

func (c *channel) memberCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// members returns member ids in join order.
func (c *channel) members() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memberSnapshot()
}

// memberSnapshot copies the join-order member list. Caller holds c.mu.
func (c *channel) memberSnapshot() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
