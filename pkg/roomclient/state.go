package roomclient

import (
	"strings"
	"time"

	"github.com/quacklabs/quack/pkg/protocol"
)

// handleEvent reconciles one inbound event into local state. State is
// mutated under the lock; callbacks fire after it is released so a
// callback may call back into the client.
func (c *Client) handleEvent(ev protocol.Event) {
	switch ev.Type {
	case protocol.EventSysJoin:
		c.reconcilePeer(ev.Users, true)
	case protocol.EventSysUpdate:
		c.reconcilePeer(ev.Users, false)
	case protocol.EventSysLeave:
		c.handlePeerLeft()
	case protocol.EventMessage:
		c.handleMessage(ev)
	case protocol.EventData:
		c.handleData(ev)
	case protocol.EventPropagate:
		// Server-side request variant; nothing to reconcile.
	}
}

// reconcilePeer recomputes the peer profile as the first listed member
// whose id differs from the local identity. joinCue selects the one-shot
// "peer joined" callback over the quiet update callback.
func (c *Client) reconcilePeer(users []protocol.Profile, joinCue bool) {
	var next *protocol.Profile
	for _, u := range users {
		if u.ID != c.self.ID {
			cp := u
			next = &cp
			break
		}
	}

	c.mu.Lock()
	c.peer = next
	c.mu.Unlock()

	if next == nil {
		return
	}
	if joinCue {
		c.dispatcher.firePeerJoined(*next)
	} else {
		c.dispatcher.firePeerUpdated(*next)
	}
}

func (c *Client) handlePeerLeft() {
	c.mu.Lock()
	c.peer = nil
	c.peerMessage = ""
	c.stopPeerTimerLocked()
	typingChanged := c.peerTyping
	c.peerTyping = false
	state := ClassifyTyping(c.selfTyping, c.peerTyping)
	c.mu.Unlock()

	c.dispatcher.firePeerLeft()
	if typingChanged {
		c.dispatcher.fireTyping(state)
	}
}

// handleMessage applies a peer content sync. Self-originated echoes are
// ignored: the broadcast includes the sender, and filtering is the
// client's responsibility.
func (c *Client) handleMessage(ev protocol.Event) {
	if ev.UserID == c.self.ID {
		return
	}

	blank := strings.TrimSpace(ev.Content) == ""

	c.mu.Lock()
	dir := TypedForward
	if len(ev.Content) < len(c.peerMessage) {
		dir = TypedBackward
	}
	c.peerMessage = ev.Content

	var typingChanged bool
	if blank {
		// An explicit clear stops the pending timer instead of letting
		// a stale one fire later.
		c.stopPeerTimerLocked()
		typingChanged = c.peerTyping
		c.peerTyping = false
	} else {
		typingChanged = !c.peerTyping
		c.peerTyping = true
		c.restartPeerTimerLocked()
	}
	state := ClassifyTyping(c.selfTyping, c.peerTyping)
	c.mu.Unlock()

	c.dispatcher.firePeerMessage(ev.Content, dir)
	if typingChanged {
		c.dispatcher.fireTyping(state)
	}
}

func (c *Client) handleData(ev protocol.Event) {
	if ev.IsPing() && ev.UserID != c.self.ID {
		c.dispatcher.firePing()
	}
	if v, ok := ev.ReactionValue(); ok && KnownReaction(v) {
		// Reactions fire for any sender, self included, for visual
		// parity on both sides.
		c.dispatcher.fireReaction(v)
	}
}

// Timer discipline: a new qualifying event always stops the pending
// timer before scheduling a replacement, so two live timers for the same
// flag cannot exist.

func (c *Client) restartSelfTimerLocked() {
	if c.selfTimer != nil {
		c.selfTimer.Stop()
	}
	c.selfTimer = time.AfterFunc(c.typingInterval(), c.expireSelfTyping)
}

func (c *Client) restartPeerTimerLocked() {
	if c.peerTimer != nil {
		c.peerTimer.Stop()
	}
	c.peerTimer = time.AfterFunc(c.typingInterval(), c.expirePeerTyping)
}

func (c *Client) stopSelfTimerLocked() {
	if c.selfTimer != nil {
		c.selfTimer.Stop()
		c.selfTimer = nil
	}
}

func (c *Client) stopPeerTimerLocked() {
	if c.peerTimer != nil {
		c.peerTimer.Stop()
		c.peerTimer = nil
	}
}

func (c *Client) expireSelfTyping() {
	c.mu.Lock()
	if !c.selfTyping {
		c.mu.Unlock()
		return
	}
	c.selfTyping = false
	c.selfTimer = nil
	state := ClassifyTyping(c.selfTyping, c.peerTyping)
	c.mu.Unlock()

	c.dispatcher.fireTyping(state)
}

func (c *Client) expirePeerTyping() {
	c.mu.Lock()
	if !c.peerTyping {
		c.mu.Unlock()
		return
	}
	c.peerTyping = false
	c.peerTimer = nil
	state := ClassifyTyping(c.selfTyping, c.peerTyping)
	c.mu.Unlock()

	c.dispatcher.fireTyping(state)
}

func (c *Client) typingInterval() time.Duration {
	if c.cfg.TypingInterval > 0 {
		return c.cfg.TypingInterval
	}
	return 2 * time.Second
}
