package roomclient

import "time"

// Config controls how the client connects and debounces typing.
type Config struct {
	// BaseURL is the server's HTTP base, e.g. "http://localhost:8080".
	BaseURL string

	// SessionToken is the value of the bearer session cookie.
	SessionToken string

	// OpenDelay is waited before dialing so an immediate remount of the
	// owning view does not leak a duplicate socket.
	OpenDelay time.Duration

	// TypingInterval is the inactivity window after which a typing flag
	// clears.
	TypingInterval time.Duration

	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		OpenDelay:        200 * time.Millisecond,
		TypingInterval:   2 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}
