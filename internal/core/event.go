package core

import (
	"time"

	"github.com/roomrelay/relay-server/internal/history"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomMessage delivers a chat message (live or replayed).
	EventRoomMessage EventKind = iota
	// EventRoomJoined confirms the client's own room change.
	EventRoomJoined
	// EventRoomLeft confirms the client left a room.
	EventRoomLeft
	// EventUserJoined notifies room occupants about an arrival.
	EventUserJoined
	// EventUserLeft notifies room occupants about a departure.
	EventUserLeft
	// EventRoomsList carries the occupied-rooms listing.
	EventRoomsList
	// EventError notifies the client about a domain error.
	EventError
	// EventKeepAlive is the periodic liveness ping.
	EventKeepAlive
)

// RoomCount is one entry of the rooms listing.
type RoomCount struct {
	Room  string
	Users int
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	User    string
	Message history.Message
	Rooms   []RoomCount
	Error   *CoreError
	At      time.Time
}
