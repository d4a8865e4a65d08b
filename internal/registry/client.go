package registry

import (
	"sync"

	"github.com/DoyleJ11/sketch-party-backend/internal/types"
)

// Client is a connection's outbox. Many goroutines (hub, lobbies) send to it;
// only the ws writer reads from it.
type Client struct {
	ID string

	mu     sync.Mutex
	out    chan types.ServerMessage
	closed bool
}

func NewClient(id string, buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	return &Client{ID: id, out: make(chan types.ServerMessage, buffer)}
}

// Send never blocks. It reports false when the message was dropped because
// the outbox is full or already closed.
func (c *Client) Send(msg types.ServerMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *Client) Outbox() <-chan types.ServerMessage { return c.out }
