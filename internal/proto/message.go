// Package proto defines the wire-level session contract. Event names
// and payload shapes are the compatibility surface; timestamps travel
// as Unix milliseconds.
package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeChatMessage    = "chat-message"
	InboundTypeJoinRoom       = "join-room"
	InboundTypeLeaveRoom      = "leave-room"
	InboundTypeUpdateUsername = "update-username"
	InboundTypeGetRooms       = "get-rooms"
	InboundTypeDisconnect     = "disconnect"

	OutboundTypeChatMessage   = "chat-message"
	OutboundTypeRoomJoined    = "room-joined"
	OutboundTypeRoomLeft      = "room-left"
	OutboundTypeUserJoined    = "user-joined"
	OutboundTypeUserLeft      = "user-left"
	OutboundTypeRoomsList     = "rooms-list"
	OutboundTypeError         = "error"
	OutboundTypeKeepAlivePing = "keep-alive-ping"
)

// ChatMessageData is an inbound chat payload. Room and username are
// hints only; the server-side session is authoritative for both.
type ChatMessageData struct {
	Room     string `json:"room,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

// JoinRoomData requests a move into a room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// LeaveRoomData requests a move out of a room.
type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

// UpdateUsernameData changes the display name.
type UpdateUsernameData struct {
	Name string `json:"name"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ChatMessageEvent delivers one chat message, live or replayed.
type ChatMessageEvent struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Room      string `json:"room"`
	Timestamp int64  `json:"timestamp"`
	IsSystem  bool   `json:"isSystem,omitempty"`
}

// RoomJoinedEvent confirms the client's own room change.
type RoomJoinedEvent struct {
	RoomID string `json:"roomId"`
}

// RoomLeftEvent confirms the client left a room.
type RoomLeftEvent struct {
	RoomID string `json:"roomId"`
}

// UserJoinedEvent notifies a room about an arrival.
type UserJoinedEvent struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// UserLeftEvent notifies a room about a departure.
type UserLeftEvent struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// RoomInfo is one entry of the rooms listing.
type RoomInfo struct {
	ID        string `json:"id"`
	UserCount int    `json:"userCount"`
}

// RoomsListEvent lists occupied rooms, id ascending.
type RoomsListEvent struct {
	Rooms []RoomInfo `json:"rooms"`
}

// ErrorEvent describes a client-visible rejection.
type ErrorEvent struct {
	Message string `json:"message"`
}

// KeepAlivePingEvent is the periodic liveness signal.
type KeepAlivePingEvent struct {
	Timestamp int64 `json:"timestamp"`
}
