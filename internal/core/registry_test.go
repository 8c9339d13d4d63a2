package core

import (
	"testing"
	"time"
)

func TestRegistryConnectDefaults(t *testing.T) {
	reg := NewRegistry()

	sess := reg.Connect("c1")
	if sess.Name != DefaultName || sess.Room != DefaultRoom {
		t.Fatalf("unexpected defaults: %+v", sess)
	}
	if sess.Privileged || sess.Muted(time.Now()) {
		t.Fatalf("fresh session carries moderation state: %+v", sess)
	}
	if reg.Count() != 1 {
		t.Fatalf("count = %d", reg.Count())
	}
}

func TestRegistryUnknownIDIsNoOp(t *testing.T) {
	reg := NewRegistry()

	reg.SetName("ghost", "x")
	reg.SetRoom("ghost", "002")
	reg.SetPrivileged("ghost", true)
	reg.Mute("ghost", time.Now().Add(time.Hour))
	reg.Remove("ghost")

	if _, ok := reg.Get("ghost"); ok {
		t.Fatal("unknown id materialized a session")
	}
}

func TestRegistryFindByNameFirstMatch(t *testing.T) {
	reg := NewRegistry()
	reg.Connect("c1")
	reg.Connect("c2")
	reg.Connect("c3")
	reg.SetName("c2", "dave")
	reg.SetName("c3", "dave")

	sess, ok := reg.FindByName("dave")
	if !ok || sess.ID != "c2" {
		t.Fatalf("expected earliest-connected match, got %+v", sess)
	}

	// Case-sensitive: no folding on lookup.
	if _, ok := reg.FindByName("Dave"); ok {
		t.Fatal("lookup folded case")
	}
}

func TestRegistryRemoveDropsModerationState(t *testing.T) {
	reg := NewRegistry()
	reg.Connect("c1")
	reg.SetPrivileged("c1", true)
	reg.Mute("c1", time.Now().Add(time.Hour))

	reg.Remove("c1")

	if _, ok := reg.Get("c1"); ok {
		t.Fatal("session survived removal")
	}

	// Reconnecting with the same id starts clean.
	sess := reg.Connect("c1")
	if sess.Privileged || sess.Muted(time.Now()) {
		t.Fatalf("moderation state leaked across connections: %+v", sess)
	}
}

func TestSessionMuted(t *testing.T) {
	now := time.Now()

	s := Session{}
	if s.Muted(now) {
		t.Fatal("zero expiry counts as muted")
	}
	s.MutedUntil = now.Add(-time.Second)
	if s.Muted(now) {
		t.Fatal("past expiry counts as muted")
	}
	s.MutedUntil = now.Add(time.Second)
	if !s.Muted(now) {
		t.Fatal("future expiry not muted")
	}
}
