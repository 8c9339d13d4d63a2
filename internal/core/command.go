package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandChatMessage sends a chat message to the client's room.
	CommandChatMessage CommandKind = iota
	// CommandJoinRoom moves the client into a room.
	CommandJoinRoom
	// CommandLeaveRoom moves the client back to the default room.
	CommandLeaveRoom
	// CommandSetName updates the client's display name.
	CommandSetName
	// CommandListRooms requests the occupied-rooms listing.
	CommandListRooms
	// CommandDisconnect asks the server to drop the connection.
	CommandDisconnect
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	Name string
	Body string
}
