package http

import (
	"encoding/json"

	"github.com/roomrelay/relay-server/internal/core"
	"github.com/roomrelay/relay-server/internal/history"
	"github.com/roomrelay/relay-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.ErrorEvent, error) {
	switch inbound.Type {
	case proto.InboundTypeChatMessage:
		var data proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Message == "" {
			return nil, &proto.ErrorEvent{Message: "message is required"}, nil
		}
		return &core.Command{Kind: core.CommandChatMessage, Body: data.Message}, nil, nil
	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.ErrorEvent{Message: "roomId is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: data.RoomID}, nil, nil
	case proto.InboundTypeLeaveRoom:
		var data proto.LeaveRoomData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.RoomID == "" {
			return nil, &proto.ErrorEvent{Message: "roomId is required"}, nil
		}
		return &core.Command{Kind: core.CommandLeaveRoom, Room: data.RoomID}, nil, nil
	case proto.InboundTypeUpdateUsername:
		var data proto.UpdateUsernameData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Name == "" {
			return nil, &proto.ErrorEvent{Message: "name is required"}, nil
		}
		return &core.Command{Kind: core.CommandSetName, Name: data.Name}, nil, nil
	case proto.InboundTypeGetRooms:
		return &core.Command{Kind: core.CommandListRooms}, nil, nil
	case proto.InboundTypeDisconnect:
		return &core.Command{Kind: core.CommandDisconnect}, nil, nil
	default:
		return nil, &proto.ErrorEvent{Message: "unknown message type"}, nil
	}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeChatMessage,
			Data: chatMessageEvent(ev.Message),
		}
	case core.EventRoomJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomJoined,
			Data: proto.RoomJoinedEvent{RoomID: ev.Room},
		}
	case core.EventRoomLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomLeft,
			Data: proto.RoomLeftEvent{RoomID: ev.Room},
		}
	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.UserJoinedEvent{Username: ev.User, Room: ev.Room},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.UserLeftEvent{Username: ev.User, Room: ev.Room},
		}
	case core.EventRoomsList:
		rooms := make([]proto.RoomInfo, 0, len(ev.Rooms))
		for _, rc := range ev.Rooms {
			rooms = append(rooms, proto.RoomInfo{ID: rc.Room, UserCount: rc.Users})
		}
		return proto.Outbound{
			Type: proto.OutboundTypeRoomsList,
			Data: proto.RoomsListEvent{Rooms: rooms},
		}
	case core.EventKeepAlive:
		return proto.Outbound{
			Type: proto.OutboundTypeKeepAlivePing,
			Data: proto.KeepAlivePingEvent{Timestamp: ev.At.UnixMilli()},
		}
	case core.EventError:
		msg := "internal error"
		if ev.Error != nil {
			msg = ev.Error.Message
		}
		return proto.Outbound{
			Type: proto.OutboundTypeError,
			Data: proto.ErrorEvent{Message: msg},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Data: proto.ErrorEvent{Message: "unknown event"}}
	}
}

func chatMessageEvent(msg history.Message) proto.ChatMessageEvent {
	return proto.ChatMessageEvent{
		Username:  msg.Author,
		Message:   msg.Body,
		Room:      msg.Room,
		Timestamp: msg.SentAt.UnixMilli(),
		IsSystem:  msg.System,
	}
}
