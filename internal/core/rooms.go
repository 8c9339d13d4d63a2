package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"
)

// Rooms form a fixed numeric namespace: "001" through "100". Every id
// is addressable even while empty.
const (
	RoomMin = 1
	RoomMax = 100
)

var roomIDPattern = regexp.MustCompile(`^[0-9]{3}$`)

// ValidateRoomID checks the 3-digit pattern and the 001-100 range.
func ValidateRoomID(id string) error {
	if !roomIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrBadRoom, id)
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < RoomMin || n > RoomMax {
		return fmt.Errorf("%w: %q out of range", ErrBadRoom, id)
	}
	return nil
}

// RoomIndex maps each room id to its current occupants. It is derived
// state, denormalized from the registry for O(1) fanout; a room's set
// exists iff it is non-empty.
type RoomIndex struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client
}

// NewRoomIndex constructs an empty index.
func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[string]map[string]*Client)}
}

// Join inserts the client into the room's set, creating it on first
// occupant.
func (x *RoomIndex) Join(c *Client, room string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	set, ok := x.rooms[room]
	if !ok {
		set = make(map[string]*Client)
		x.rooms[room] = set
	}
	set[c.ID] = c
}

// Leave removes the client from the room's set, dropping the set when
// it empties. Returns false if the client was not a member.
func (x *RoomIndex) Leave(c *Client, room string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	set, ok := x.rooms[room]
	if !ok {
		return false
	}
	if _, member := set[c.ID]; !member {
		return false
	}
	delete(set, c.ID)
	if len(set) == 0 {
		delete(x.rooms, room)
	}
	return true
}

// Members returns a snapshot of the room's occupants.
func (x *RoomIndex) Members(room string) []*Client {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]*Client, 0, len(x.rooms[room]))
	for _, c := range x.rooms[room] {
		out = append(out, c)
	}
	return out
}

// MemberCount returns the room's occupant count.
func (x *RoomIndex) MemberCount(room string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.rooms[room])
}

// Counts lists occupied rooms with member counts, room id ascending.
func (x *RoomIndex) Counts() []RoomCount {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]RoomCount, 0, len(x.rooms))
	for room, set := range x.rooms {
		out = append(out, RoomCount{Room: room, Users: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room < out[j].Room })
	return out
}

// Broadcast fans an event out to every current occupant of the room.
func (x *RoomIndex) Broadcast(room string, ev *Event) {
	for _, c := range x.Members(room) {
		c.send(ev)
	}
}

// Each visits every connected client across all rooms.
func (x *RoomIndex) Each(fn func(*Client)) {
	x.mu.RLock()
	clients := make([]*Client, 0, len(x.rooms))
	for _, set := range x.rooms {
		for _, c := range set {
			clients = append(clients, c)
		}
	}
	x.mu.RUnlock()

	for _, c := range clients {
		fn(c)
	}
}
