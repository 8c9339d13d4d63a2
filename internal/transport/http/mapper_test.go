package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/roomrelay/relay-server/internal/core"
	"github.com/roomrelay/relay-server/internal/history"
	"github.com/roomrelay/relay-server/internal/proto"
)

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name    string
		inbound proto.Inbound
		want    core.Command
	}{
		{
			name:    "chat message",
			inbound: proto.Inbound{Type: proto.InboundTypeChatMessage, Data: json.RawMessage(`{"message":"hi"}`)},
			want:    core.Command{Kind: core.CommandChatMessage, Body: "hi"},
		},
		{
			name:    "join room",
			inbound: proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: json.RawMessage(`{"roomId":"042"}`)},
			want:    core.Command{Kind: core.CommandJoinRoom, Room: "042"},
		},
		{
			name:    "leave room",
			inbound: proto.Inbound{Type: proto.InboundTypeLeaveRoom, Data: json.RawMessage(`{"roomId":"042"}`)},
			want:    core.Command{Kind: core.CommandLeaveRoom, Room: "042"},
		},
		{
			name:    "update username",
			inbound: proto.Inbound{Type: proto.InboundTypeUpdateUsername, Data: json.RawMessage(`{"name":"dave"}`)},
			want:    core.Command{Kind: core.CommandSetName, Name: "dave"},
		},
		{
			name:    "get rooms",
			inbound: proto.Inbound{Type: proto.InboundTypeGetRooms},
			want:    core.Command{Kind: core.CommandListRooms},
		},
		{
			name:    "disconnect",
			inbound: proto.Inbound{Type: proto.InboundTypeDisconnect},
			want:    core.Command{Kind: core.CommandDisconnect},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, rejection, err := inboundToCommand(tc.inbound)
			if err != nil {
				t.Fatalf("inboundToCommand: %v", err)
			}
			if rejection != nil {
				t.Fatalf("unexpected rejection: %+v", rejection)
			}
			if cmd == nil || *cmd != tc.want {
				t.Fatalf("command = %+v, want %+v", cmd, tc.want)
			}
		})
	}
}

func TestInboundToCommandSessionIsAuthoritative(t *testing.T) {
	// Room and username hints on chat payloads are discarded.
	inbound := proto.Inbound{
		Type: proto.InboundTypeChatMessage,
		Data: json.RawMessage(`{"room":"099","username":"spoofed","message":"hi"}`),
	}
	cmd, rejection, err := inboundToCommand(inbound)
	if err != nil || rejection != nil {
		t.Fatalf("inboundToCommand: %v, %+v", err, rejection)
	}
	if cmd.Room != "" || cmd.Name != "" {
		t.Fatalf("hints leaked into the command: %+v", cmd)
	}
}

func TestInboundToCommandRejections(t *testing.T) {
	tests := []struct {
		name    string
		inbound proto.Inbound
	}{
		{"empty chat message", proto.Inbound{Type: proto.InboundTypeChatMessage, Data: json.RawMessage(`{}`)}},
		{"join without room", proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: json.RawMessage(`{}`)}},
		{"leave without room", proto.Inbound{Type: proto.InboundTypeLeaveRoom, Data: json.RawMessage(`{}`)}},
		{"rename without name", proto.Inbound{Type: proto.InboundTypeUpdateUsername, Data: json.RawMessage(`{}`)}},
		{"unknown type", proto.Inbound{Type: "subscribe"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, rejection, err := inboundToCommand(tc.inbound)
			if err != nil {
				t.Fatalf("inboundToCommand: %v", err)
			}
			if cmd != nil {
				t.Fatalf("command produced from bad input: %+v", cmd)
			}
			if rejection == nil || rejection.Message == "" {
				t.Fatal("missing rejection")
			}
		})
	}
}

func TestInboundToCommandMalformedData(t *testing.T) {
	inbound := proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: json.RawMessage(`{"roomId":42}`)}
	if _, _, err := inboundToCommand(inbound); err == nil {
		t.Fatal("malformed payload accepted")
	}
}

func TestOutboundFromEvent(t *testing.T) {
	sent := time.UnixMilli(1712000000000)

	tests := []struct {
		name     string
		ev       core.Event
		wantType string
		wantData any
	}{
		{
			name: "room message",
			ev: core.Event{Kind: core.EventRoomMessage, Message: history.Message{
				Room: "007", Author: "ann", Body: "hi", SentAt: sent,
			}},
			wantType: proto.OutboundTypeChatMessage,
			wantData: proto.ChatMessageEvent{Username: "ann", Message: "hi", Room: "007", Timestamp: sent.UnixMilli()},
		},
		{
			name: "system notice",
			ev: core.Event{Kind: core.EventRoomMessage, Message: history.Message{
				Room: "007", Author: "server", Body: "chat history cleared by an administrator", SentAt: sent, System: true,
			}},
			wantType: proto.OutboundTypeChatMessage,
			wantData: proto.ChatMessageEvent{
				Username: "server", Message: "chat history cleared by an administrator",
				Room: "007", Timestamp: sent.UnixMilli(), IsSystem: true,
			},
		},
		{
			name:     "room joined",
			ev:       core.Event{Kind: core.EventRoomJoined, Room: "042"},
			wantType: proto.OutboundTypeRoomJoined,
			wantData: proto.RoomJoinedEvent{RoomID: "042"},
		},
		{
			name:     "room left",
			ev:       core.Event{Kind: core.EventRoomLeft, Room: "042"},
			wantType: proto.OutboundTypeRoomLeft,
			wantData: proto.RoomLeftEvent{RoomID: "042"},
		},
		{
			name:     "user joined",
			ev:       core.Event{Kind: core.EventUserJoined, Room: "042", User: "dave"},
			wantType: proto.OutboundTypeUserJoined,
			wantData: proto.UserJoinedEvent{Username: "dave", Room: "042"},
		},
		{
			name:     "user left",
			ev:       core.Event{Kind: core.EventUserLeft, Room: "042", User: "dave"},
			wantType: proto.OutboundTypeUserLeft,
			wantData: proto.UserLeftEvent{Username: "dave", Room: "042"},
		},
		{
			name:     "error",
			ev:       core.Event{Kind: core.EventError, Error: &core.CoreError{Code: core.ErrCodeBadRoom, Message: "room id must be 001-100"}},
			wantType: proto.OutboundTypeError,
			wantData: proto.ErrorEvent{Message: "room id must be 001-100"},
		},
		{
			name:     "keep-alive ping",
			ev:       core.Event{Kind: core.EventKeepAlive, At: sent},
			wantType: proto.OutboundTypeKeepAlivePing,
			wantData: proto.KeepAlivePingEvent{Timestamp: sent.UnixMilli()},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := outboundFromEvent(&tc.ev)
			if out.Type != tc.wantType {
				t.Fatalf("type = %q, want %q", out.Type, tc.wantType)
			}
			if out.Data != tc.wantData {
				t.Fatalf("data = %+v, want %+v", out.Data, tc.wantData)
			}
		})
	}
}

func TestOutboundFromEventRoomsList(t *testing.T) {
	ev := core.Event{Kind: core.EventRoomsList, Rooms: []core.RoomCount{
		{Room: "003", Users: 2},
		{Room: "042", Users: 1},
	}}

	out := outboundFromEvent(&ev)
	if out.Type != proto.OutboundTypeRoomsList {
		t.Fatalf("type = %q", out.Type)
	}
	list, ok := out.Data.(proto.RoomsListEvent)
	if !ok {
		t.Fatalf("data = %T", out.Data)
	}
	want := []proto.RoomInfo{{ID: "003", UserCount: 2}, {ID: "042", UserCount: 1}}
	if len(list.Rooms) != len(want) {
		t.Fatalf("rooms = %+v", list.Rooms)
	}
	for i := range want {
		if list.Rooms[i] != want[i] {
			t.Fatalf("rooms[%d] = %+v, want %+v", i, list.Rooms[i], want[i])
		}
	}
}
