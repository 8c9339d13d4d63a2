package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// defaultCallTimeout bounds each durable-backend call; past it the
	// operation lands in the local log instead of blocking.
	defaultCallTimeout = 2 * time.Second
	// defaultCooldown is how long the circuit stays open after a
	// durable-backend failure before the next attempt.
	defaultCooldown = 30 * time.Second
)

// Failover routes log operations to the durable backend and silently
// substitutes the local log when the backend is unavailable. Append,
// Recent and Clear never surface backend errors to the caller;
// degraded durability is the only observable difference.
type Failover struct {
	primary Log
	local   *MemoryLog
	log     *zerolog.Logger

	timeout  time.Duration
	cooldown time.Duration

	mu        sync.Mutex
	downUntil time.Time
}

// NewFailover wraps a durable log with a local fallback. primary may
// be nil, which pins every operation to the local log.
func NewFailover(primary Log, local *MemoryLog, logger *zerolog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		local:    local,
		log:      logger,
		timeout:  defaultCallTimeout,
		cooldown: defaultCooldown,
	}
}

// Local exposes the fallback log so its sweep can be scheduled.
func (f *Failover) Local() *MemoryLog { return f.local }

func (f *Failover) primaryAvailable() bool {
	if f.primary == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Now().After(f.downUntil)
}

func (f *Failover) markDown(op string, err error) {
	f.mu.Lock()
	f.downUntil = time.Now().Add(f.cooldown)
	f.mu.Unlock()
	f.log.Warn().Err(err).Str("op", op).Dur("cooldown", f.cooldown).
		Msg("durable message store unavailable, using local fallback")
}

// Append is total: a backend failure opens the circuit and stores the
// message locally instead.
func (f *Failover) Append(ctx context.Context, msg Message) error {
	if f.primaryAvailable() {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.primary.Append(callCtx, msg)
		cancel()
		if err == nil {
			return nil
		}
		f.markDown("append", err)
	}
	return f.local.Append(ctx, msg)
}

// Recent merges the durable window with fallback-origin entries so
// messages stored while the circuit was open stay visible once the
// backend recovers. Duplicates collapse on message id; the result is
// timestamp-ascending and capped at MaxEntries.
func (f *Failover) Recent(ctx context.Context, room string) ([]Message, error) {
	var durable []Message
	if f.primaryAvailable() {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		msgs, err := f.primary.Recent(callCtx, room)
		cancel()
		if err != nil {
			f.markDown("recent", err)
		} else {
			durable = msgs
		}
	}

	local, _ := f.local.Recent(ctx, room)
	if len(durable) == 0 {
		return local, nil
	}
	if len(local) == 0 {
		return durable, nil
	}

	seen := make(map[string]struct{}, len(durable))
	merged := make([]Message, 0, len(durable)+len(local))
	for _, msg := range durable {
		seen[msg.ID] = struct{}{}
		merged = append(merged, msg)
	}
	for _, msg := range local {
		if _, dup := seen[msg.ID]; !dup {
			merged = append(merged, msg)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].SentAt.Before(merged[j].SentAt) })
	if len(merged) > MaxEntries {
		merged = merged[len(merged)-MaxEntries:]
	}
	return merged, nil
}

// Clear empties both stores; a backend failure only degrades
// durability, never the caller.
func (f *Failover) Clear(ctx context.Context, room string) error {
	if f.primaryAvailable() {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.primary.Clear(callCtx, room)
		cancel()
		if err != nil {
			f.markDown("clear", err)
		}
	}
	return f.local.Clear(ctx, room)
}

// Close closes the durable backend if one is configured.
func (f *Failover) Close() error {
	if f.primary != nil {
		return f.primary.Close()
	}
	return nil
}
