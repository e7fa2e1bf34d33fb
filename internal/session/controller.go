// Package session implements the client side of the multiplayer layer: one
// controller per process that owns the relay connection, the local player
// identity, and the current play mode.
//
// The controller is built for a game loop. Transport goroutines never touch
// game state; they enqueue events that Tick drains on the owning goroutine,
// which is where the collaborator callbacks fire.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"blockwarp/internal/protocol"
	"blockwarp/internal/relay"
)

// Mode is the controller's play mode.
type Mode int

const (
	ModeDisconnected Mode = iota
	ModeSinglePlayer
	ModeHost
	ModeJoinedClient
)

// ConnState is the state of the relay connection.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosed
)

// Callbacks are the controller's outbound interface to the rest of the game.
// All callbacks fire from the goroutine calling Tick; nil callbacks are
// skipped.
type Callbacks struct {
	// ApplyBlockUpdate applies a remote block edit to the world.
	ApplyBlockUpdate func(u protocol.BlockUpdate)

	// ApplyPlayerPose applies a remote player's position and rotation.
	ApplyPlayerPose func(p protocol.PlayerPose)

	// ChatReceived delivers a remote chat line.
	ChatReceived func(c protocol.Chat)

	// PlayerCountChanged reports the new roster size whenever membership
	// knowledge changes, including the drop to 1 on single-player
	// fallback.
	PlayerCountChanged func(count int)
}

// Controller owns the local session. Exactly one is created per running
// client; construct it once at startup and pass it to whatever needs it.
type Controller struct {
	serverURL string
	playerID  string
	cb        Callbacks
	log       *slog.Logger

	mu        sync.Mutex
	mode      Mode
	state     ConnState
	roomID    string
	hostID    string
	localHost bool
	players   roster
	conn      *conn

	events  chan event
	control chan event
}

// New creates a controller pointed at the relay's websocket URL. The local
// player identity is assigned here and kept for the life of the process.
func New(serverURL string, cb Callbacks, log *slog.Logger) *Controller {
	c := &Controller{
		serverURL: serverURL,
		playerID:  "player-" + uuid.NewString(),
		cb:        cb,
		log:       log,
		mode:      ModeDisconnected,
		state:     StateIdle,
		players:   make(roster),
		events:    make(chan event, messageQueueSize),
		control:   make(chan event, controlQueueSize),
	}
	c.players.add(c.playerID, false)
	return c
}

// StartSinglePlayer switches to local-only play. No network I/O is performed
// and any open connection is torn down. Idempotent.
func (c *Controller) StartSinglePlayer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enterSinglePlayerLocked()
}

func (c *Controller) enterSinglePlayerLocked() {
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	c.mode = ModeSinglePlayer
	c.state = StateIdle
	c.roomID = ""
	c.hostID = c.playerID
	c.localHost = true
	c.players = make(roster)
	c.players.add(c.playerID, true)
}

// StartHost connects to the relay as a host. The relay places hosts in the
// default room; the local player claims the host role if the room has none.
func (c *Controller) StartHost() {
	c.connect(ModeHost, "")
}

// JoinRoom connects to the relay as a client of the given room. An empty
// roomID is a no-op.
func (c *Controller) JoinRoom(roomID string) {
	if roomID == "" {
		c.log.Warn("join ignored: empty room id")
		return
	}
	c.connect(ModeJoinedClient, roomID)
}

// connect starts an asynchronous connection attempt. A second call while one
// is in flight is a no-op.
func (c *Controller) connect(mode Mode, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnecting {
		return
	}
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}

	c.mode = mode
	c.state = StateConnecting
	c.roomID = roomID
	c.localHost = mode == ModeHost
	c.hostID = ""
	if c.localHost {
		c.hostID = c.playerID
	}
	c.players = make(roster)
	c.players.add(c.playerID, c.localHost)

	params := relay.JoinParams{
		RoomID:   roomID,
		PlayerID: c.playerID,
		Mode:     relay.ModeJoin,
	}
	if mode == ModeHost {
		params.Mode = relay.ModeHost
	}

	go c.dialAttempt(mode, params)
}

// dialAttempt runs off the game loop. Success installs the connection and
// starts its pumps; failure is queued so the fallback applies on the next
// Tick, on the owning goroutine.
func (c *Controller) dialAttempt(mode Mode, params relay.JoinParams) {
	nc, err := dial(c.serverURL, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The attempt is stale if the controller moved on while dialing.
	if c.state != StateConnecting || c.mode != mode {
		if nc != nil {
			nc.close()
		}
		return
	}

	if err != nil {
		c.log.Warn("connect failed, falling back to single player", "error", err)
		enqueueControl(c.control, event{kind: eventConnectFailed})
		return
	}

	c.conn = nc
	c.state = StateOpen
	nc.start(c.events, c.control)
	c.log.Info("connected", "roomId", params.RoomID, "mode", params.Mode, "playerId", c.playerID)
}

// SendBlockUpdate transmits a block edit tagged with the local playerId.
// No-op in single-player mode or while the connection is not open.
func (c *Controller) SendBlockUpdate(x, y, z, blockType int, isPlacing bool) {
	c.sendMessage(protocol.NewBlockUpdate(c.playerID, x, y, z, blockType, isPlacing))
}

// SendPlayerPose transmits the local player's position and rotation.
// No-op in single-player mode or while the connection is not open.
func (c *Controller) SendPlayerPose(position, rotation protocol.Vec3) {
	c.sendMessage(protocol.NewPlayerPose(c.playerID, position, rotation))
}

// SendChat transmits a chat line to the current room.
func (c *Controller) SendChat(text string) {
	c.sendMessage(protocol.NewChat(c.playerID, text))
}

func (c *Controller) sendMessage(msg protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeSinglePlayer || c.mode == ModeDisconnected {
		return
	}
	if c.state != StateOpen || c.conn == nil {
		return
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		c.log.Error("encode outbound message", "type", msg.MessageType(), "error", err)
		return
	}
	c.conn.send(data)
}

// HandleRaw injects a raw inbound payload, for hosts that bridge messages
// from a transport the controller does not own. The payload is queued and
// processed on the next Tick like any other inbound message.
func (c *Controller) HandleRaw(payload []byte) {
	enqueueMessage(c.events, event{kind: eventMessage, payload: payload})
}

// Tick drains the inbound queues and applies their effects. Call it once per
// game tick from the goroutine that owns game state; all callbacks fire
// here.
func (c *Controller) Tick() {
	for {
		select {
		case ev := <-c.control:
			c.handleControl(ev)
		case ev := <-c.events:
			c.handleEvent(ev)
		default:
			return
		}
	}
}

func (c *Controller) handleControl(ev event) {
	c.mu.Lock()

	switch ev.kind {
	case eventConnectFailed:
		if c.state != StateConnecting {
			c.mu.Unlock()
			return
		}
	case eventClosed:
		if ev.src != c.conn {
			// A connection that was already replaced.
			c.mu.Unlock()
			return
		}
		c.state = StateClosed
	default:
		c.mu.Unlock()
		return
	}

	c.log.Info("connection lost, continuing in single player")
	c.enterSinglePlayerLocked()
	c.mu.Unlock()
	c.notifyCount()
}

func (c *Controller) handleEvent(ev event) {
	if ev.kind != eventMessage {
		return
	}

	c.mu.Lock()
	if ev.src != nil && ev.src != c.conn {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	msg, err := protocol.Decode(ev.payload)
	if err != nil {
		c.log.Warn("dropping inbound message", "error", err)
		return
	}
	c.apply(msg)
}

// apply routes one decoded message. Messages bearing the local playerId are
// relay echoes of our own traffic and are suppressed.
func (c *Controller) apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.BlockUpdate:
		if m.PlayerID == c.playerID {
			return
		}
		c.withRoster(func() { c.players.touch(m.PlayerID) })
		if c.cb.ApplyBlockUpdate != nil {
			c.cb.ApplyBlockUpdate(m)
		}

	case protocol.PlayerPose:
		if m.PlayerID == c.playerID {
			return
		}
		c.withRoster(func() { c.players.touch(m.PlayerID) })
		if c.cb.ApplyPlayerPose != nil {
			c.cb.ApplyPlayerPose(m)
		}

	case protocol.Chat:
		if m.PlayerID == c.playerID {
			return
		}
		if c.cb.ChatReceived != nil {
			c.cb.ChatReceived(m)
		}

	case protocol.JoinNotice:
		c.mu.Lock()
		if m.PlayerID != c.playerID {
			c.players.add(m.PlayerID, false)
		}
		c.mu.Unlock()
		c.notifyCount()

	case protocol.LeaveNotice:
		c.mu.Lock()
		c.players.remove(m.PlayerID)
		c.hostID = m.NewHost
		c.localHost = m.NewHost == c.playerID
		c.players.setHost(m.NewHost)
		c.mu.Unlock()
		c.notifyCount()

	case protocol.RoomState:
		c.mu.Lock()
		c.players = make(roster)
		for _, p := range m.Players {
			c.players.add(p.PlayerID, p.IsHost)
		}
		// The snapshot covers the whole room including us, but be
		// defensive about a relay that omits the local player.
		if _, ok := c.players[c.playerID]; !ok {
			c.players.add(c.playerID, false)
		}
		c.hostID = m.Host
		c.localHost = m.Host == c.playerID
		c.mu.Unlock()
		c.notifyCount()

	case protocol.P2PSignal, protocol.P2PRequest:
		// Passthrough kinds for a peer transport this client does not
		// run. Ignored.
		c.log.Debug("ignoring p2p message", "type", msg.MessageType())

	default:
		c.log.Debug("ignoring message", "type", msg.MessageType())
	}
}

func (c *Controller) withRoster(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

func (c *Controller) notifyCount() {
	c.mu.Lock()
	count := len(c.players)
	c.mu.Unlock()
	if c.cb.PlayerCountChanged != nil {
		c.cb.PlayerCountChanged(count)
	}
}

// IsConnected reports whether the session is playable: single-player always
// is, networked play is once the connection is open.
func (c *Controller) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == ModeSinglePlayer || c.state == StateOpen
}

// PlayerCount reports the known size of the current room, including the
// local player. Always 1 in single-player mode.
func (c *Controller) PlayerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeSinglePlayer {
		return 1
	}
	return len(c.players)
}

// LocalPlayerID reports the identity assigned at construction.
func (c *Controller) LocalPlayerID() string {
	return c.playerID
}

// CurrentHost reports the playerId of the room's host as last announced by
// the relay, empty if the room has none.
func (c *Controller) CurrentHost() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostID
}

// IsLocalPlayerHost reports whether the local player currently holds the
// host role. True in single-player mode.
func (c *Controller) IsLocalPlayerHost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeSinglePlayer {
		return true
	}
	return c.localHost
}

// Mode reports the current play mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Close tears the session down, closing the relay connection before
// releasing it. The controller is not reusable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	c.mode = ModeDisconnected
	c.state = StateClosed
}
