package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quacklabs/quack/internal/log"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(log.Nop(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Addr != ":8080" || cfg.Storage != StorageMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9999\"\nlog_level: debug\nroom_idle_ttl: 1m\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load(log.Nop(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
	if cfg.RoomIdleTTL != time.Minute {
		t.Fatalf("room_idle_ttl = %v", cfg.RoomIdleTTL)
	}
	// Values absent from the file keep their defaults.
	if cfg.Storage != StorageMemory || cfg.MaxMessageBytes != 1<<16 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: postgres\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(log.Nop(), path); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}
