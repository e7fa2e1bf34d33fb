package session

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blockwarp/internal/relay"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// Outbound sends are fire-and-forget; a full buffer drops the frame
	// rather than blocking the game loop.
	outgoingBufferSize = 64
)

// conn owns one websocket connection to the relay. Inbound frames and the
// close notification are delivered as events on the controller's queue; the
// controller never touches the socket from its own goroutine.
type conn struct {
	ws       *websocket.Conn
	outgoing chan []byte
	done     chan struct{}
	once     sync.Once
}

// dial opens a websocket connection to the relay, carrying the join
// parameters as URL query values.
func dial(serverURL string, p relay.JoinParams) (*conn, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	query := u.Query()
	if p.RoomID != "" {
		query.Set("roomId", p.RoomID)
	}
	query.Set("playerId", p.PlayerID)
	query.Set("mode", p.Mode)
	u.RawQuery = query.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &conn{
		ws:       ws,
		outgoing: make(chan []byte, outgoingBufferSize),
		done:     make(chan struct{}),
	}
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return c, nil
}

// start launches the read and write pumps. Inbound traffic lands on events,
// the close notification on control.
func (c *conn) start(events, control chan<- event) {
	go c.readPump(events, control)
	go c.writePump()
}

// readPump delivers inbound frames to the event queue until the connection
// fails or closes, then delivers a single closed event.
func (c *conn) readPump(events, control chan<- event) {
	defer c.ws.Close()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			enqueueControl(control, event{kind: eventClosed, src: c})
			return
		}
		enqueueMessage(events, event{kind: eventMessage, src: c, payload: data})
	}
}

// writePump drains the outgoing buffer onto the socket and sends periodic
// pings.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.outgoing:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// send queues a frame, dropping it if the buffer is full.
func (c *conn) send(data []byte) {
	select {
	case c.outgoing <- data:
	default:
	}
}

// close shuts the connection down. Safe to call more than once.
func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
	})
}
