package websocket

import (
	"context"
	"strings"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 32
	pingInterval   = 30 * time.Second
	pingTimeout    = 10 * time.Second
	// clients only ever send close frames and pings
	readLimit = 512
)

// Client is one connected tracker screen. A client with a non-empty entity
// set only hears about those collections, plus "all" and "backup" events.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	entities map[string]bool
}

func NewClient(hub *Hub, conn *ws.Conn, entities []string) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	for _, e := range entities {
		if e = strings.TrimSpace(e); e != "" {
			if c.entities == nil {
				c.entities = make(map[string]bool)
			}
			c.entities[e] = true
		}
	}
	return c
}

// wants reports whether a change to entity should reach this client.
func (c *Client) wants(entity string) bool {
	if c.entities == nil {
		return true
	}
	return c.entities[entity] || entity == EntityAll || entity == EntityBackup
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.conn.SetReadLimit(readLimit)
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards incoming frames. Reading is still required so the
// library can answer pings and notice the close handshake.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, _, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
	}
}

// writePump forwards queued changes and pings on an interval so a tablet
// that went to sleep is dropped from the hub.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok { // unregistered
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.hub.logger.Debug("websocket ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
