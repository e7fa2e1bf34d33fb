package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Block and pose updates are
	// tiny; 64 KB leaves headroom for p2p signaling payloads.
	maxMessageSize = 64 * 1024

	// Outbound buffer per connection. A member whose buffer is full has
	// broadcasts dropped rather than stalling the room.
	sendBufferSize = 256
)

// ModeHost and ModeJoin are the accepted values of the "mode" join parameter.
const (
	ModeHost = "host"
	ModeJoin = "join"
)

// JoinParams are the connection parameters parsed from the websocket
// upgrade request.
type JoinParams struct {
	RoomID   string
	PlayerID string
	Mode     string
}

// Client wraps a single member connection. The hub owns its room membership;
// the read and write pumps own the socket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	log  *slog.Logger

	roomID   string
	playerID string
	mode     string

	// send carries raw outbound frames. The hub writes to it, writePump
	// drains it onto the socket. Closed by the hub on unregister.
	send chan []byte
}

// PlayerID reports the identity the client joined with.
func (c *Client) PlayerID() string { return c.playerID }

// RoomID reports the room the client was assigned on join.
func (c *Client) RoomID() string { return c.roomID }

// readPump pumps frames from the websocket connection to the hub.
//
// There is at most one reader per connection: all reads happen from this
// goroutine. Any read error unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("read error", "playerId", c.playerID, "error", err)
			}
			break
		}
		c.hub.inbound <- inboundFrame{client: c, data: data}
	}
}

// writePump pumps frames from the send channel to the websocket connection
// and keeps the connection alive with periodic pings.
//
// There is at most one writer per connection: all writes happen from this
// goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub unregistered this client.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warn("write error", "playerId", c.playerID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
