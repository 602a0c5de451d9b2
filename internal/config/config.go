package config

import "time"

// Storage backend names.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// Storage selects the registry backend: "memory" (default, ephemeral
	// per the protocol design) or "sqlite".
	Storage      string `mapstructure:"storage" yaml:"storage"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// RoomIdleTTL is how long a memberless room survives before eviction.
	RoomIdleTTL time.Duration `mapstructure:"room_idle_ttl" yaml:"room_idle_ttl"`

	// MaxMessageBytes caps a single WebSocket frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	// AllowedOrigins lists origins allowed to send the session cookie.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// RegisterPerMinute rate-limits user registrations per client IP.
	// Zero disables the limit.
	RegisterPerMinute int `mapstructure:"register_per_minute" yaml:"register_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		Storage:           StorageMemory,
		DatabasePath:      "quack.db",
		RoomIdleTTL:       5 * time.Minute,
		MaxMessageBytes:   1 << 16,
		AllowedOrigins:    []string{"http://localhost:5173"},
		RegisterPerMinute: 30,
	}
}
