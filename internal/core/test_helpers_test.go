package core

import (
	"testing"
	"time"

	"github.com/quacklabs/quack/pkg/protocol"
)

// mustEvent waits for the next event of the given type, skipping others.
func mustEvent(t *testing.T, ch <-chan protocol.Event, typ protocol.EventType) protocol.Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed while waiting for %q", typ)
			}
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event %q not received", typ)
		}
	}
}

// mustNoEvent asserts nothing arrives within the grace window.
func mustNoEvent(t *testing.T, ch <-chan protocol.Event) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func memberIDs(users []protocol.Profile) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
