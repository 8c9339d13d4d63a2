package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/roomrelay/relay-server/internal/history"
)

const (
	// CommandPrefix marks a chat payload as a server command. The
	// prefix match is case-sensitive.
	CommandPrefix = "server!"
	// authToken starts the admin credential payload.
	authToken = "admin-login"
	// SystemAuthor is the display name on system notices.
	SystemAuthor = "server"
)

const helpText = "commands: " + CommandPrefix + "{power-down|power-on|status|help} " +
	"| admin: " + CommandPrefix + "{clear|list|mute <name>|kick <name>|ban <name>}"

// interpret routes a chat payload through the command machinery.
// Returns false when the payload is plain chat and should be stored
// and broadcast.
func (h *Hub) interpret(c *Client, sess Session, body string) bool {
	if strings.HasPrefix(body, CommandPrefix) {
		h.runCommand(c, sess, strings.TrimSpace(body[len(CommandPrefix):]))
		return true
	}
	if strings.HasPrefix(body, authToken+"#") {
		// Malformed credential payloads fall through to plain chat.
		return h.tryLogin(c, sess, body)
	}
	return false
}

func (h *Hub) tryLogin(c *Client, sess Session, body string) bool {
	parts := strings.Split(body, "#")
	if len(parts) != 2 {
		return false
	}
	creds := strings.Split(parts[1], ":")
	if len(creds) != 2 {
		return false
	}

	// Never broadcast, never stored: only the sender hears back.
	if h.auth.Verify(creds[0], creds[1]) {
		h.registry.SetPrivileged(c.ID, true)
		h.notify(c, sess.Room, "admin privileges granted")
		h.log.Info().Str("session_id", c.ID).Str("name", sess.Name).Msg("admin login")
	} else {
		h.notify(c, sess.Room, "invalid admin credentials")
		h.log.Warn().Str("session_id", c.ID).Msg("failed admin login")
	}
	return true
}

func (h *Hub) runCommand(c *Client, sess Session, rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		h.notify(c, sess.Room, helpText)
		return
	}
	verb := fields[0]

	// Power and status literals match case-insensitively and are not
	// privilege-gated.
	switch strings.ToLower(verb) {
	case "power-down":
		h.powerToggle(c, sess, false)
		return
	case "power-on":
		h.powerToggle(c, sess, true)
		return
	case "status":
		h.notify(c, sess.Room, "keep-alive is "+onOff(h.keep.Enabled()))
		return
	case "help":
		h.notify(c, sess.Room, helpText)
		return
	}

	// Unrecognized verbs get the usage notice regardless of privilege;
	// the gate applies only to real moderation commands.
	switch verb {
	case "clear", "list", "mute", "kick", "ban":
	default:
		h.notify(c, sess.Room, "unknown command "+verb+"; "+helpText)
		return
	}

	if !sess.Privileged {
		h.notify(c, sess.Room, "permission denied")
		return
	}

	switch verb {
	case "clear":
		h.clearRoom(sess)
	case "list":
		h.listOccupants(c, sess)
	case "mute", "kick", "ban":
		h.moderate(c, sess, verb, targetName(rest, verb))
	}
}

func targetName(rest, verb string) string {
	return strings.TrimSpace(strings.TrimPrefix(rest, verb))
}

func (h *Hub) powerToggle(c *Client, sess Session, on bool) {
	var changed bool
	if on {
		changed = h.keep.Enable()
	} else {
		changed = h.keep.Disable()
	}
	if !changed {
		h.notify(c, sess.Room, "keep-alive is already "+onOff(on))
		return
	}
	h.broadcastNotice(sess.Room, "keep-alive "+onOff(on))
	h.notify(c, sess.Room, "keep-alive is now "+onOff(on))
	h.log.Info().Bool("enabled", on).Str("by", sess.Name).Msg("keep-alive toggled")
}

func (h *Hub) clearRoom(sess Session) {
	room := sess.Room
	h.dispatchRoom(room, func(ctx context.Context) {
		if err := h.history.Clear(ctx, room); err != nil {
			h.log.Error().Err(err).Str("room", room).Msg("clear history")
		}
		h.rooms.Broadcast(room, h.noticeEvent(room, "chat history cleared by an administrator"))
	})
	h.log.Info().Str("room", room).Str("by", sess.Name).Msg("history cleared")
}

func (h *Hub) listOccupants(c *Client, sess Session) {
	names := make([]string, 0, h.rooms.MemberCount(sess.Room))
	for _, member := range h.rooms.Members(sess.Room) {
		ms, ok := h.registry.Get(member.ID)
		if !ok {
			continue
		}
		name := ms.Name
		if ms.Privileged {
			name += " (admin)"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	h.notify(c, sess.Room, "room "+sess.Room+": "+strings.Join(names, ", "))
}

func (h *Hub) moderate(c *Client, sess Session, verb, target string) {
	if target == "" {
		h.notify(c, sess.Room, "usage: "+CommandPrefix+verb+" <name>")
		return
	}
	victim, ok := h.registry.FindByName(target)
	if !ok {
		h.notify(c, sess.Room, "user "+target+" not found")
		return
	}
	victimClient, ok := h.client(victim.ID)
	if !ok {
		h.notify(c, sess.Room, "user "+target+" not found")
		return
	}

	now := time.Now()
	switch verb {
	case "mute":
		h.registry.Mute(victim.ID, now.Add(h.opts.MuteDuration))
		h.notify(victimClient, victim.Room, "you have been muted by an administrator")
		h.notify(c, sess.Room, "muted "+target+" for "+h.opts.MuteDuration.String())
	case "kick":
		h.notify(victimClient, victim.Room, "you have been kicked by an administrator")
		h.scheduleDrop(victimClient)
		h.notify(c, sess.Room, "kicked "+target)
	case "ban":
		h.registry.Mute(victim.ID, now.Add(h.opts.BanDuration))
		h.notify(victimClient, victim.Room, "you have been banned by an administrator")
		h.scheduleDrop(victimClient)
		h.notify(c, sess.Room, "banned "+target+" for "+h.opts.BanDuration.String())
	}
	h.log.Info().Str("action", verb).Str("target", target).Str("by", sess.Name).Msg("moderation")
}

// scheduleDrop disconnects the client after the grace delay, leaving
// time for the notice to reach it first.
func (h *Hub) scheduleDrop(c *Client) {
	time.AfterFunc(h.opts.KickDelay, func() {
		h.UnregisterClient(c)
		c.ForceClose()
	})
}

// notify sends a private system notice to one client.
func (h *Hub) notify(c *Client, room, text string) {
	c.send(h.noticeEvent(room, text))
}

// broadcastNotice sends a system notice to a whole room. Notices are
// never appended to the log.
func (h *Hub) broadcastNotice(room, text string) {
	h.rooms.Broadcast(room, h.noticeEvent(room, text))
}

func (h *Hub) noticeEvent(room, text string) *Event {
	return &Event{
		Kind:    EventRoomMessage,
		Room:    room,
		Message: history.NewMessage(room, SystemAuthor, text, true),
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
