// Package history implements the per-room message log: bounded to the
// newest entries, time-expiring, with a durable Redis backend and an
// in-process fallback.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxEntries is the per-room bound; the oldest entry is trimmed
	// when an append would exceed it.
	MaxEntries = 200
	// TTL is the maximum age an entry stays visible to reads.
	TTL = 6 * time.Hour
	// TTLBuffer extends the durable list's expiry past the TTL so the
	// list always outlives its newest member.
	TTLBuffer = time.Hour
)

// Message is one stored chat entry. Immutable once appended.
type Message struct {
	ID     string    `json:"id"`
	Room   string    `json:"room"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
	System bool      `json:"system,omitempty"`
}

// NewMessage assigns the id and timestamp at append time.
func NewMessage(room, author, body string, system bool) Message {
	return Message{
		ID:     uuid.NewString(),
		Room:   room,
		Author: author,
		Body:   body,
		SentAt: time.Now(),
		System: system,
	}
}

// Log is the per-room message log contract.
type Log interface {
	// Append stores one message in the room's log.
	Append(ctx context.Context, msg Message) error

	// Recent returns the room's visible window: oldest first, at most
	// MaxEntries, every entry younger than TTL at read time.
	Recent(ctx context.Context, room string) ([]Message, error)

	// Clear removes all entries for the room, independent of TTL.
	Clear(ctx context.Context, room string) error

	// Close releases backend resources.
	Close() error
}
