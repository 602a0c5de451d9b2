// Package roomclient is the client-side sync engine for a room channel.
// It owns one connection per room view, translates local intent into
// outbound events, and reconciles the inbound stream into presence,
// typing, and message state. It never mutates shared state directly;
// every mutation travels as an event.
package roomclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/quacklabs/quack/pkg/protocol"
)

// SessionCookie is the name of the bearer session cookie.
const SessionCookie = "session"

// Client maintains one room channel connection and its derived local
// state. Create with NewClient, wire callbacks, then Connect.
type Client struct {
	cfg        Config
	self       protocol.Profile
	logger     Logger
	dispatcher Dispatcher

	writeMu sync.Mutex // serializes outbound frames

	mu          sync.Mutex
	conn        *websocket.Conn
	connected   bool
	connecting  bool
	cancel      context.CancelFunc
	peer        *protocol.Profile
	peerMessage string
	selfTyping  bool
	peerTyping  bool
	selfTimer   *time.Timer
	peerTimer   *time.Timer
}

// NewClient constructs a client for the given identity. Use
// DefaultConfig() as a starting point for cfg.
func NewClient(cfg Config, self protocol.Profile) *Client {
	return &Client{
		cfg:    cfg,
		self:   self,
		logger: noopLogger{},
	}
}

// SetLogger overrides the logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l != nil {
		c.logger = l
	}
}

// Callback registration. Callbacks run on the read loop goroutine.

func (c *Client) OnPeerJoined(fn func(protocol.Profile))       { c.dispatcher.SetOnPeerJoined(fn) }
func (c *Client) OnPeerUpdated(fn func(protocol.Profile))      { c.dispatcher.SetOnPeerUpdated(fn) }
func (c *Client) OnPeerLeft(fn func())                         { c.dispatcher.SetOnPeerLeft(fn) }
func (c *Client) OnPeerMessage(fn func(string, TypeDirection)) { c.dispatcher.SetOnPeerMessage(fn) }
func (c *Client) OnPing(fn func())                             { c.dispatcher.SetOnPing(fn) }
func (c *Client) OnReaction(fn func(string))                   { c.dispatcher.SetOnReaction(fn) }
func (c *Client) OnTyping(fn func(TypingState))                { c.dispatcher.SetOnTyping(fn) }
func (c *Client) OnError(fn func(error))                       { c.dispatcher.SetOnError(fn) }

// Connect waits the open delay, dials the room channel, and starts the
// read loop. Cancelling ctx aborts the pending delay and, once the
// connection is live, closes it, so no stale connection outlives its
// owning view.
func (c *Client) Connect(ctx context.Context, roomID string) error {
	// The connecting flag holds the slot for the whole open delay and
	// dial, so a concurrent Connect cannot slip past the guard and leak
	// a second socket.
	c.mu.Lock()
	if c.connected || c.connecting {
		c.mu.Unlock()
		return errors.New("already connected")
	}
	c.connecting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	if c.cfg.BaseURL == "" {
		return errors.New("empty base URL")
	}
	wsURL, err := c.roomURL(roomID)
	if err != nil {
		return err
	}

	// Absorbs an immediate remount of the owning view without leaking a
	// duplicate socket.
	if c.cfg.OpenDelay > 0 {
		t := time.NewTimer(c.cfg.OpenDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	opts := &websocket.DialOptions{}
	if c.cfg.SessionToken != "" {
		opts.HTTPHeader = http.Header{
			"Cookie": []string{SessionCookie + "=" + c.cfg.SessionToken},
		}
	}

	ws, _, err := websocket.Dial(dialCtx, wsURL, opts)
	if err != nil {
		return fmt.Errorf("dial room channel: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.conn = ws
	c.cancel = cancel
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(runCtx)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-runCtx.Done():
		}
	}()
	return nil
}

// SetContent sends the full current content of the local message box.
// Non-blank content sets the local typing flag and restarts its debounce
// timer; blank content clears the flag immediately.
func (c *Client) SetContent(ctx context.Context, content string) error {
	if err := c.send(ctx, protocol.Message(c.self.ID, content)); err != nil {
		return err
	}

	blank := strings.TrimSpace(content) == ""
	c.mu.Lock()
	var changed bool
	if blank {
		c.stopSelfTimerLocked()
		changed = c.selfTyping
		c.selfTyping = false
	} else {
		changed = !c.selfTyping
		c.selfTyping = true
		c.restartSelfTimerLocked()
	}
	state := ClassifyTyping(c.selfTyping, c.peerTyping)
	c.mu.Unlock()

	if changed {
		c.dispatcher.fireTyping(state)
	}
	return nil
}

// Clear empties the local message box (the trash action).
func (c *Client) Clear(ctx context.Context) error {
	return c.SetContent(ctx, "")
}

// Ping sends an attention ping to the peer.
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, protocol.Ping(c.self.ID))
}

// React broadcasts a reaction. The sender sees its own echo too, so the
// reaction displays identically on both sides.
func (c *Client) React(ctx context.Context, reaction string) error {
	if !KnownReaction(reaction) {
		return fmt.Errorf("unknown reaction %q", reaction)
	}
	return c.send(ctx, protocol.Reaction(c.self.ID, reaction))
}

// Propagate asks the server to re-broadcast current membership, e.g.
// after a profile edit.
func (c *Client) Propagate(ctx context.Context) error {
	return c.send(ctx, protocol.Propagate())
}

// Self returns the local identity.
func (c *Client) Self() protocol.Profile {
	return c.self
}

// Peer returns the current peer profile, or nil when alone.
func (c *Client) Peer() *protocol.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peer == nil {
		return nil
	}
	cp := *c.peer
	return &cp
}

// PeerMessage returns the peer's currently displayed content.
func (c *Client) PeerMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerMessage
}

// Typing returns the combined typing classification.
func (c *Client) Typing() TypingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClassifyTyping(c.selfTyping, c.peerTyping)
}

// Close shuts the client down and discards all pending timers.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.connected = false
	c.stopSelfTimerLocked()
	c.stopPeerTimerLocked()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *Client) send(ctx context.Context, ev protocol.Event) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return errors.New("not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(ctx, conn, ev)
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		var ev protocol.Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if !isExpectedDisconnect(ctx, err) {
				c.logger.Warn("read loop exit", map[string]any{"error": err.Error()})
				c.dispatcher.fireError(err)
			}
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			return
		}

		if !ev.Type.Known() {
			// Unknown variants are ignored, never an error.
			continue
		}
		c.handleEvent(ev)
	}
}

func (c *Client) roomURL(roomID string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/room/" + roomID
	return u.String(), nil
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
