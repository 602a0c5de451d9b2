package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quacklabs/quack/internal/log"
	"github.com/quacklabs/quack/internal/store"
	"github.com/quacklabs/quack/internal/store/memory"
	"github.com/quacklabs/quack/pkg/protocol"
)

func newTestHub(t *testing.T, idleTTL time.Duration) (*Hub, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewHub(st, log.Nop(), idleTTL), st
}

func mkUser(t *testing.T, st *memory.Store, name string) *store.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), name)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func mkRoom(t *testing.T, st *memory.Store, id string) {
	t.Helper()
	if _, err := st.CreateRoom(context.Background(), id); err != nil {
		t.Fatalf("create room %s: %v", id, err)
	}
}

func TestJoinBroadcastsMemberList(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)

	alice := mkUser(t, st, "alice")
	bob := mkUser(t, st, "bob")
	mkRoom(t, st, "oak-river-wren")

	subA, err := hub.Join(ctx, "oak-river-wren", alice.ID)
	if err != nil {
		t.Fatalf("join alice: %v", err)
	}
	ev := mustEvent(t, subA.Events, protocol.EventSysJoin)
	if ev.UserID != alice.ID || len(ev.Users) != 1 || ev.Users[0].ID != alice.ID {
		t.Fatalf("unexpected solo join event: %+v", ev)
	}

	subB, err := hub.Join(ctx, "oak-river-wren", bob.ID)
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}

	// Both sides see the second join with the full member list in join
	// order and resolved display names.
	for _, sub := range []*Subscription{subA, subB} {
		ev := mustEvent(t, sub.Events, protocol.EventSysJoin)
		if ev.UserID != bob.ID {
			t.Fatalf("join event not attributed to bob: %+v", ev)
		}
		ids := memberIDs(ev.Users)
		if len(ids) != 2 || ids[0] != alice.ID || ids[1] != bob.ID {
			t.Fatalf("unexpected member list: %v", ids)
		}
		if ev.Users[0].Name != "alice" || ev.Users[1].Name != "bob" {
			t.Fatalf("profiles not resolved: %+v", ev.Users)
		}
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	hub, st := newTestHub(t, 0)
	alice := mkUser(t, st, "alice")

	if _, err := hub.Join(context.Background(), "ghost-room", alice.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomCapacity(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "full-house")

	a := mkUser(t, st, "a")
	b := mkUser(t, st, "b")
	c := mkUser(t, st, "c")

	if _, err := hub.Join(ctx, "full-house", a.ID); err != nil {
		t.Fatalf("join a: %v", err)
	}
	if _, err := hub.Join(ctx, "full-house", b.ID); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if _, err := hub.Join(ctx, "full-house", c.ID); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if n := hub.MemberCount("full-house"); n != MaxRoomMembers {
		t.Fatalf("member count = %d after rejected join", n)
	}
}

func TestDuplicateJoinRejected(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "solo")
	alice := mkUser(t, st, "alice")

	sub, err := hub.Join(ctx, "solo", alice.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := hub.Join(ctx, "solo", alice.ID); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("expected ErrAlreadyInRoom, got %v", err)
	}

	// The live subscription survives the rejected duplicate.
	mustEvent(t, sub.Events, protocol.EventSysJoin)
	if n := hub.MemberCount("solo"); n != 1 {
		t.Fatalf("member count = %d", n)
	}
}

func TestRejoinAfterLeave(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "revolving-door")
	alice := mkUser(t, st, "alice")

	sub, err := hub.Join(ctx, "revolving-door", alice.ID)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	hub.Leave(ctx, sub)

	sub2, err := hub.Join(ctx, "revolving-door", alice.ID)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	ev := mustEvent(t, sub2.Events, protocol.EventSysJoin)
	if len(ev.Users) != 1 || ev.Users[0].ID != alice.ID {
		t.Fatalf("unexpected rejoin event: %+v", ev)
	}
}

func TestLeaveBroadcastsRemaining(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "pond")
	alice := mkUser(t, st, "alice")
	bob := mkUser(t, st, "bob")

	subA, _ := hub.Join(ctx, "pond", alice.ID)
	subB, err := hub.Join(ctx, "pond", bob.ID)
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}
	mustEvent(t, subA.Events, protocol.EventSysJoin)
	mustEvent(t, subA.Events, protocol.EventSysJoin)
	mustEvent(t, subB.Events, protocol.EventSysJoin)

	hub.Leave(ctx, subB)

	ev := mustEvent(t, subA.Events, protocol.EventSysLeave)
	if ev.UserID != bob.ID {
		t.Fatalf("leave not attributed to bob: %+v", ev)
	}
	ids := memberIDs(ev.Users)
	if len(ids) != 1 || ids[0] != alice.ID {
		t.Fatalf("leaver still in member list: %v", ids)
	}

	// The leaver's event channel closes so its write loop can exit.
	mustNoEvent(t, subB.Events)
	if n := hub.MemberCount("pond"); n != 1 {
		t.Fatalf("member count = %d", n)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "idem")
	alice := mkUser(t, st, "alice")

	sub, err := hub.Join(ctx, "idem", alice.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	hub.Leave(ctx, sub)
	hub.Leave(ctx, sub)
	hub.Leave(ctx, nil)
}

func TestRelayRestampsUserID(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "stamp")
	alice := mkUser(t, st, "alice")
	bob := mkUser(t, st, "bob")

	subA, _ := hub.Join(ctx, "stamp", alice.ID)
	subB, err := hub.Join(ctx, "stamp", bob.ID)
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}

	forged := protocol.Message(bob.ID, "hello")
	if err := hub.Relay(ctx, subA, forged); err != nil {
		t.Fatalf("relay: %v", err)
	}

	ev := mustEvent(t, subB.Events, protocol.EventMessage)
	if ev.UserID != alice.ID {
		t.Fatalf("claimed sender id survived relay: %+v", ev)
	}
	if ev.Content != "hello" {
		t.Fatalf("content mangled: %q", ev.Content)
	}

	// The broadcast includes the originator.
	echo := mustEvent(t, subA.Events, protocol.EventMessage)
	if echo.UserID != alice.ID {
		t.Fatalf("unexpected echo: %+v", echo)
	}
}

func TestRelayRejectsServerVariants(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "strict")
	alice := mkUser(t, st, "alice")

	sub, err := hub.Join(ctx, "strict", alice.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	mustEvent(t, sub.Events, protocol.EventSysJoin)

	for _, ev := range []protocol.Event{
		protocol.SysJoin(alice.ID, nil),
		protocol.SysUpdate(alice.ID, nil),
		protocol.SysLeave(alice.ID, nil),
	} {
		if err := hub.Relay(ctx, sub, ev); !errors.Is(err, ErrNotSubmittable) {
			t.Fatalf("%s: expected ErrNotSubmittable, got %v", ev.Type, err)
		}
	}
	mustNoEvent(t, sub.Events)
}

func TestPropagateBroadcastsSysUpdate(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	mkRoom(t, st, "rename")
	alice := mkUser(t, st, "alice")
	bob := mkUser(t, st, "bob")

	subA, _ := hub.Join(ctx, "rename", alice.ID)
	subB, err := hub.Join(ctx, "rename", bob.ID)
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}

	if _, err := st.UpdateUserName(ctx, alice.ID, "alicia"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := hub.Relay(ctx, subA, protocol.Propagate()); err != nil {
		t.Fatalf("relay propagate: %v", err)
	}

	ev := mustEvent(t, subB.Events, protocol.EventSysUpdate)
	if len(ev.Users) != 2 || ev.Users[0].Name != "alicia" {
		t.Fatalf("sys-update missing refreshed profile: %+v", ev.Users)
	}
}

func TestIdleRoomEviction(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 20*time.Millisecond)
	mkRoom(t, st, "stale")
	mkRoom(t, st, "busy")
	alice := mkUser(t, st, "alice")

	if _, err := hub.Join(ctx, "busy", alice.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	hub.evictIdleRooms(ctx)

	if _, err := st.GetRoom(ctx, "stale"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("stale room not evicted: %v", err)
	}
	if _, err := st.GetRoom(ctx, "busy"); err != nil {
		t.Fatalf("occupied room evicted: %v", err)
	}
}

func TestEvictionWaitsForIdleTTLAfterLastLeave(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, time.Hour)
	mkRoom(t, st, "lingering")
	alice := mkUser(t, st, "alice")

	sub, err := hub.Join(ctx, "lingering", alice.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	hub.Leave(ctx, sub)

	// The room just went idle; with a long TTL the janitor leaves it alone.
	hub.evictIdleRooms(ctx)
	if _, err := st.GetRoom(ctx, "lingering"); err != nil {
		t.Fatalf("freshly idle room evicted: %v", err)
	}
}
