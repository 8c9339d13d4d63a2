package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryLog is the process-local log. It applies the same trim and TTL
// semantics as the durable backend; its contents are lost on restart.
type MemoryLog struct {
	mu    sync.RWMutex
	rooms map[string][]Message
}

// NewMemoryLog constructs an empty in-process log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{rooms: make(map[string][]Message)}
}

// Append stores the message and trims the room to MaxEntries.
func (l *MemoryLog) Append(_ context.Context, msg Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := append(l.rooms[msg.Room], msg)
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	l.rooms[msg.Room] = entries
	return nil
}

// Recent returns the visible window. Expired entries are filtered at
// read time even if the sweep has not reclaimed them yet.
func (l *MemoryLog) Recent(_ context.Context, room string) ([]Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cutoff := time.Now().Add(-TTL)
	out := make([]Message, 0, len(l.rooms[room]))
	for _, msg := range l.rooms[room] {
		if msg.SentAt.After(cutoff) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

// Clear drops the room's entries immediately.
func (l *MemoryLog) Clear(_ context.Context, room string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, room)
	return nil
}

// Close implements Log. The in-process log holds no resources.
func (l *MemoryLog) Close() error { return nil }

// Sweep blocks, physically evicting TTL-expired entries every
// interval until the context is cancelled. The durable backend expires
// entries natively and needs no sweep.
func (l *MemoryLog) Sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictExpired(time.Now())
		}
	}
}

func (l *MemoryLog) evictExpired(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-TTL)
	for room, entries := range l.rooms {
		kept := entries[:0]
		for _, msg := range entries {
			if msg.SentAt.After(cutoff) {
				kept = append(kept, msg)
			}
		}
		if len(kept) == 0 {
			delete(l.rooms, room)
			continue
		}
		l.rooms[room] = kept
	}
}
