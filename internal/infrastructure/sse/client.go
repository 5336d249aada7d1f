package sse

import "sync"

// sendBufferSize bounds how far a slow consumer may fall behind before the
// manager treats the connection as dead.
const sendBufferSize = 64

// Client represents one open live-update connection for one user. It is a
// transient handle: never persisted, rebuilt from nothing on reconnect.
type Client struct {
	UserID string

	send      chan Event
	closeOnce sync.Once
}

// NewClient creates an unregistered client for the given user.
func NewClient(userID string) *Client {
	return &Client{
		UserID: userID,
		send:   make(chan Event, sendBufferSize),
	}
}

// Events returns the ordered stream of events queued for this connection.
// The channel is closed when the client is unregistered.
func (c *Client) Events() <-chan Event {
	return c.send
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
