package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const listKeyPrefix = "room:"

// RedisLog persists each room's log as one Redis list. Appends trim
// the list to MaxEntries and refresh its expiry to TTL plus a buffer,
// so the list outlives its newest member; Redis reclaims expired lists
// natively.
type RedisLog struct {
	client *redis.Client
}

// NewRedisLog wraps an existing Redis client.
func NewRedisLog(client *redis.Client) *RedisLog {
	return &RedisLog{client: client}
}

func listKey(room string) string {
	return listKeyPrefix + room + ":log"
}

// Append pushes the serialized message, trims to the newest MaxEntries
// and refreshes the list expiry, all in one transaction.
func (l *RedisLog) Append(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := listKey(msg.Room)
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -MaxEntries, -1)
		pipe.Expire(ctx, key, TTL+TTLBuffer)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", key, err)
	}
	return nil
}

// Recent reads the full list and drops entries past the TTL; the list
// expiry lags the per-entry TTL by design, so age is re-checked here.
func (l *RedisLog) Recent(ctx context.Context, room string) ([]Message, error) {
	key := listKey(room)
	raw, err := l.client.LRange(ctx, key, -MaxEntries, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	cutoff := time.Now().Add(-TTL)
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// Skip entries written by an incompatible version.
			continue
		}
		if msg.SentAt.After(cutoff) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

// Clear deletes the room's list.
func (l *RedisLog) Clear(ctx context.Context, room string) error {
	if err := l.client.Del(ctx, listKey(room)).Err(); err != nil {
		return fmt.Errorf("clear %s: %w", listKey(room), err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (l *RedisLog) Close() error {
	return l.client.Close()
}

// Ping reports whether the backend is reachable.
func (l *RedisLog) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
