package core

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomrelay/relay-server/internal/history"
)

// Authenticator checks the static admin credential.
type Authenticator interface {
	Verify(username, password string) bool
}

// KeepAlive is the liveness scheduler as the hub sees it.
type KeepAlive interface {
	Enable() bool
	Disable() bool
	Kick()
	Enabled() bool
}

// Options tune the moderation timings.
type Options struct {
	MuteDuration time.Duration
	BanDuration  time.Duration
	// KickDelay is the grace between the kick notice and the forced
	// disconnect, so the notice can still be delivered.
	KickDelay time.Duration
}

// DefaultOptions returns the standard moderation timings.
func DefaultOptions() Options {
	return Options{
		MuteDuration: 5 * time.Minute,
		BanDuration:  24 * time.Hour,
		KickDelay:    500 * time.Millisecond,
	}
}

type envelope struct {
	client *Client
	cmd    *Command
}

// Hub serializes all session and room mutations on a single event
// loop. Log appends and history replays run on per-room dispatch
// queues so a suspended backend call never blocks the loop or other
// rooms.
type Hub struct {
	registry *Registry
	rooms    *RoomIndex
	history  history.Log
	auth     Authenticator
	keep     KeepAlive
	opts     Options
	log      *zerolog.Logger

	inbox chan envelope
	done  chan struct{}

	// smu spans each atomic step: a loop event, a forced drop from the
	// kick timer, or the transport's register/teardown. No two steps
	// interleave their registry and room index mutations.
	smu sync.Mutex

	cmu     sync.RWMutex
	clients map[string]*Client

	qmu      sync.RWMutex
	queues   map[string]chan func(context.Context)
	qstopped bool
}

// NewHub wires the hub with its injected state objects.
func NewHub(registry *Registry, rooms *RoomIndex, hist history.Log, auth Authenticator, keep KeepAlive, opts Options, logger *zerolog.Logger) *Hub {
	return &Hub{
		registry: registry,
		rooms:    rooms,
		history:  hist,
		auth:     auth,
		keep:     keep,
		opts:     opts,
		log:      logger,
		inbox:    make(chan envelope, 256),
		done:     make(chan struct{}),
		clients:  make(map[string]*Client),
		queues:   make(map[string]chan func(context.Context)),
	}
}

// Registry exposes the session registry for the read-side HTTP layer.
func (h *Hub) Registry() *Registry { return h.registry }

// Rooms exposes the room index for the read-side HTTP layer.
func (h *Hub) Rooms() *RoomIndex { return h.rooms }

// History exposes the message log for the read-side HTTP layer.
func (h *Hub) History() history.Log { return h.history }

// KeepAliveEnabled reports the scheduler flag for the read side.
func (h *Hub) KeepAliveEnabled() bool { return h.keep.Enabled() }

// Run consumes inbound commands until the context is cancelled. Each
// command is handled as one atomic step with respect to the registry
// and room index.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopQueues()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.inbox:
			h.handle(env.client, env.cmd)
		}
	}
}

// RegisterClient creates the session, places it in the default room
// and starts pumping its commands into the event loop.
func (h *Hub) RegisterClient(c *Client) Session {
	h.smu.Lock()
	defer h.smu.Unlock()

	sess := h.registry.Connect(c.ID)

	h.cmu.Lock()
	h.clients[c.ID] = c
	h.cmu.Unlock()

	h.rooms.Join(c, sess.Room)
	c.send(&Event{Kind: EventRoomJoined, Room: sess.Room, At: time.Now()})
	h.rooms.Broadcast(sess.Room, &Event{Kind: EventUserJoined, Room: sess.Room, User: sess.Name})
	h.replayHistory(c, sess.Room)
	h.keep.Kick()

	go h.pump(c)

	h.log.Debug().Str("session_id", c.ID).Msg("session connected")
	return sess
}

// UnregisterClient is the single atomic disconnect cleanup: session,
// room membership, privilege and mute state all go together.
// Idempotent, so a forced drop racing the transport's own teardown is
// harmless. Runs as its own step, so a drop arriving off-loop cannot
// interleave with a room move in progress on the event loop.
func (h *Hub) UnregisterClient(c *Client) {
	h.smu.Lock()
	defer h.smu.Unlock()
	h.unregister(c)
}

func (h *Hub) unregister(c *Client) {
	c.release()

	sess, ok := h.registry.Get(c.ID)
	if !ok {
		return
	}

	h.registry.Remove(c.ID)
	h.rooms.Leave(c, sess.Room)

	h.cmu.Lock()
	delete(h.clients, c.ID)
	h.cmu.Unlock()

	h.rooms.Broadcast(sess.Room, &Event{Kind: EventUserLeft, Room: sess.Room, User: sess.Name})
	h.keep.Kick()

	h.log.Debug().Str("session_id", c.ID).Str("name", sess.Name).Msg("session disconnected")
}

// BroadcastKeepAlive sends the liveness ping to every connected
// session. Wired as the scheduler's fire callback.
func (h *Hub) BroadcastKeepAlive() {
	now := time.Now()
	h.rooms.Each(func(c *Client) {
		c.send(&Event{Kind: EventKeepAlive, At: now})
	})
}

func (h *Hub) pump(c *Client) {
	for {
		select {
		case <-h.done:
			return
		case <-c.Done():
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-h.done:
				return
			case <-c.Done():
				return
			}
		}
	}
}

func (h *Hub) client(id string) (*Client, bool) {
	h.cmu.RLock()
	defer h.cmu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

func (h *Hub) handle(c *Client, cmd *Command) {
	h.smu.Lock()
	defer h.smu.Unlock()

	sess, ok := h.registry.Get(c.ID)
	if !ok {
		return
	}

	switch cmd.Kind {
	case CommandChatMessage:
		h.keep.Kick()
		h.handleChat(c, sess, cmd.Body)
	case CommandJoinRoom:
		h.keep.Kick()
		h.handleJoin(c, sess, cmd.Room)
	case CommandLeaveRoom:
		h.keep.Kick()
		h.handleLeave(c, sess, cmd.Room)
	case CommandSetName:
		h.keep.Kick()
		h.handleSetName(c, sess, cmd.Name)
	case CommandListRooms:
		h.keep.Kick()
		c.send(&Event{Kind: EventRoomsList, Rooms: h.rooms.Counts(), At: time.Now()})
	case CommandDisconnect:
		h.unregister(c)
		c.ForceClose()
	}
}

func (h *Hub) handleChat(c *Client, sess Session, body string) {
	if body == "" {
		return
	}
	if h.interpret(c, sess, body) {
		return
	}

	now := time.Now()
	if sess.Muted(now) {
		remaining := int(sess.MutedUntil.Sub(now).Seconds() + 1)
		h.notify(c, sess.Room, "you are muted for another "+strconv.Itoa(remaining)+"s")
		return
	}

	room := sess.Room
	author := sess.Name
	h.dispatchRoom(room, func(ctx context.Context) {
		msg := history.NewMessage(room, author, body, false)
		if err := h.history.Append(ctx, msg); err != nil {
			h.log.Error().Err(err).Str("room", room).Msg("append message")
		}
		// Store before broadcast: a late joiner's replay can never
		// miss a message that was already delivered.
		h.rooms.Broadcast(room, &Event{Kind: EventRoomMessage, Room: room, Message: msg})
	})
}

func (h *Hub) handleJoin(c *Client, sess Session, room string) {
	if err := ValidateRoomID(room); err != nil {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRoom, err.Error())})
		return
	}
	if room == sess.Room {
		c.send(&Event{Kind: EventRoomJoined, Room: room, At: time.Now()})
		return
	}
	h.move(c, sess, room)
}

// handleLeave moves the session back to the default room; leaving the
// default room itself is a confirmed no-op.
func (h *Hub) handleLeave(c *Client, sess Session, room string) {
	if err := ValidateRoomID(room); err != nil {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRoom, err.Error())})
		return
	}
	if room != sess.Room {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "not in room "+room)})
		return
	}

	c.send(&Event{Kind: EventRoomLeft, Room: room, At: time.Now()})
	if sess.Room == DefaultRoom {
		return
	}
	h.move(c, sess, DefaultRoom)
}

// move is the atomic room change: no intermediate state where the
// session belongs to two rooms or none.
func (h *Hub) move(c *Client, sess Session, to string) {
	from := sess.Room

	h.rooms.Leave(c, from)
	h.registry.SetRoom(c.ID, to)
	h.rooms.Join(c, to)

	h.rooms.Broadcast(from, &Event{Kind: EventUserLeft, Room: from, User: sess.Name})
	c.send(&Event{Kind: EventRoomJoined, Room: to, At: time.Now()})
	h.rooms.Broadcast(to, &Event{Kind: EventUserJoined, Room: to, User: sess.Name})
	h.replayHistory(c, to)
}

func (h *Hub) handleSetName(c *Client, sess Session, name string) {
	name = strings.TrimSpace(name)
	if name == "" || name == sess.Name {
		return
	}
	h.registry.SetName(c.ID, name)
	h.broadcastNotice(sess.Room, sess.Name+" is now known as "+name)
}

// replayHistory delivers the room's recent window to one client. It
// runs on the room's dispatch queue, after any in-flight append.
func (h *Hub) replayHistory(c *Client, room string) {
	h.dispatchRoom(room, func(ctx context.Context) {
		msgs, err := h.history.Recent(ctx, room)
		if err != nil {
			h.log.Error().Err(err).Str("room", room).Msg("read history")
			return
		}
		for i := range msgs {
			c.send(&Event{Kind: EventRoomMessage, Room: room, Message: msgs[i]})
		}
	})
}

// dispatchRoom serializes work per room on a lazily started worker.
// The send never blocks: a full queue sheds the task, so one wedged
// room cannot stall the event loop or other rooms. stopQueues needs
// the write lock to close a channel, so the send cannot race the
// close.
func (h *Hub) dispatchRoom(room string, fn func(context.Context)) {
	q := h.roomQueue(room)
	if q == nil {
		return
	}
	h.qmu.RLock()
	if !h.qstopped {
		select {
		case q <- fn:
		default:
			h.log.Warn().Str("room", room).Msg("room queue full, dropping task")
		}
	}
	h.qmu.RUnlock()
}

func (h *Hub) roomQueue(room string) chan func(context.Context) {
	h.qmu.RLock()
	q, ok := h.queues[room]
	stopped := h.qstopped
	h.qmu.RUnlock()
	if stopped {
		return nil
	}
	if ok {
		return q
	}

	h.qmu.Lock()
	defer h.qmu.Unlock()
	if h.qstopped {
		return nil
	}
	if q, ok = h.queues[room]; ok {
		return q
	}
	q = make(chan func(context.Context), 64)
	h.queues[room] = q
	go roomWorker(q)
	return q
}

func roomWorker(q <-chan func(context.Context)) {
	for fn := range q {
		fn(context.Background())
	}
}

func (h *Hub) stopQueues() {
	h.qmu.Lock()
	defer h.qmu.Unlock()
	h.qstopped = true
	for _, q := range h.queues {
		close(q)
	}
}
