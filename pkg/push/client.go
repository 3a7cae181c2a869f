package push

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client represents a single WebSocket connection subscribed to a fixed set
// of rooms for its lifetime.
type Client struct {
	hub   *Hub
	conn  *ws.Conn
	rooms map[string]struct{}
	send  chan []byte
}

// NewClient creates a Client tied to the given hub and connection. The room
// set is fixed at connect time: the authenticated user's private room and
// their team's room.
func NewClient(hub *Hub, conn *ws.Conn, rooms ...string) *Client {
	set := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		set[r] = struct{}{}
	}
	return &Client{
		hub:   hub,
		conn:  conn,
		rooms: set,
		send:  make(chan []byte, sendBufferSize),
	}
}

func (c *Client) inRoom(room string) bool {
	_, ok := c.rooms[room]
	return ok
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump reads and discards incoming frames. It returns on error, which
// triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump drains the send channel and writes frames to the WebSocket. It
// also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
