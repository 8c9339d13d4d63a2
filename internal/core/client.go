package core

import "sync"

// Client is a live connection as seen by the core layer. The transport
// pumps inbound commands into Commands and drains Events back out.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	done     chan struct{}
	doneOnce sync.Once

	closeOnce sync.Once
	closeFn   func()
}

// NewClient constructs a client with initialized channels. The Events
// buffer is sized for a full history replay burst.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 256),
		done:     make(chan struct{}),
	}
}

// Done is closed once the hub has released the client, so goroutines
// serving it can exit.
func (c *Client) Done() <-chan struct{} { return c.done }

// release marks the client released. Idempotent.
func (c *Client) release() {
	c.doneOnce.Do(func() { close(c.done) })
}

// SetCloseFunc installs the transport's forced-disconnect hook.
func (c *Client) SetCloseFunc(fn func()) {
	c.closeFn = fn
}

// ForceClose tears the connection down. Used for kick and ban;
// idempotent.
func (c *Client) ForceClose() {
	c.closeOnce.Do(func() {
		if c.closeFn != nil {
			c.closeFn()
		}
	})
}

// send delivers an event without blocking. Slow consumers drop.
func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
	}
}
