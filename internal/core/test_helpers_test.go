package core

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomrelay/relay-server/internal/history"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNotice waits for a system chat notice containing the substring.
func mustNotice(t *testing.T, ch <-chan *Event, contains string) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil || ev.Kind != EventRoomMessage || !ev.Message.System {
				continue
			}
			if strings.Contains(ev.Message.Body, contains) {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected system notice containing %q not received", contains)
	return nil
}

func expectNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

type fakeAuth struct{}

func (fakeAuth) Verify(username, password string) bool {
	return username == "root" && password == "secret"
}

type fakeKeepAlive struct {
	mu      sync.Mutex
	enabled bool
	kicks   int
}

func (f *fakeKeepAlive) Enable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enabled {
		return false
	}
	f.enabled = true
	return true
}

func (f *fakeKeepAlive) Disable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return false
	}
	f.enabled = false
	return true
}

func (f *fakeKeepAlive) Kick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks++
}

func (f *fakeKeepAlive) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func newTestHub(t *testing.T) (*Hub, *history.MemoryLog, *fakeKeepAlive) {
	t.Helper()

	opts := DefaultOptions()
	opts.KickDelay = 50 * time.Millisecond

	mem := history.NewMemoryLog()
	keep := &fakeKeepAlive{enabled: true}
	logger := zerolog.Nop()
	hub := NewHub(NewRegistry(), NewRoomIndex(), mem, fakeAuth{}, keep, opts, &logger)
	return hub, mem, keep
}
