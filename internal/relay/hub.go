package relay

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"

	"blockwarp/internal/protocol"
)

// inboundFrame pairs a raw frame with the member that sent it.
type inboundFrame struct {
	client *Client
	data   []byte
}

// statsRequest asks the hub goroutine for a registry snapshot.
type statsRequest struct {
	reply chan []RoomStats
}

// Hub owns the room registry and routes every membership change and frame
// through a single goroutine, so a join's RoomState snapshot always reflects
// a consistent, just-updated membership set.
type Hub struct {
	registry *Registry
	log      *slog.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	stats      chan statsRequest
}

// NewHub creates a hub with an empty registry. Call Run before attaching
// connections.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame),
		stats:      make(chan statsRequest),
	}
}

// Attach wraps an upgraded websocket connection in a Client, registers it
// with the hub, and starts its read and write pumps.
func (h *Hub) Attach(conn *websocket.Conn, p JoinParams) {
	client := &Client{
		hub:      h,
		conn:     conn,
		log:      h.log,
		roomID:   p.RoomID,
		playerID: p.PlayerID,
		mode:     p.Mode,
		send:     make(chan []byte, sendBufferSize),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Stats returns a point-in-time snapshot of every live room.
func (h *Hub) Stats(ctx context.Context) ([]RoomStats, error) {
	req := statsRequest{reply: make(chan []RoomStats, 1)}
	select {
	case h.stats <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case stats := <-req.reply:
		return stats, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes registration, disconnects, and inbound frames until ctx is
// cancelled. It is the only goroutine that touches the registry.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.handleJoin(client)

		case client := <-h.unregister:
			h.handleLeave(client)

		case frame := <-h.inbound:
			h.dispatch(frame.client, frame.data)

		case req := <-h.stats:
			req.reply <- h.registry.Stats()

		case <-ctx.Done():
			return
		}
	}
}

// handleJoin adds the client to its room, notifies the other members, and
// sends the joiner a snapshot of the room as it exists after the join.
func (h *Hub) handleJoin(client *Client) {
	room := h.registry.Join(client)
	h.log.Info("player joined",
		"playerId", client.playerID, "roomId", room.ID, "players", room.Size())

	h.broadcastMessage(room, client, protocol.JoinNotice{
		Type:        protocol.TypeJoinNotice,
		PlayerID:    client.playerID,
		RoomID:      room.ID,
		PlayerCount: room.Size(),
	})
	h.sendMessage(client, room.snapshot())
}

// handleLeave removes the client from its room, destroying the room if it
// emptied and otherwise migrating the host role and notifying the remaining
// members.
func (h *Hub) handleLeave(client *Client) {
	result := h.registry.Leave(client)
	if result.Room == nil {
		// Never joined or already removed.
		return
	}
	close(client.send)

	room := result.Room
	if result.Destroyed {
		h.log.Info("room destroyed", "roomId", room.ID)
		return
	}
	if result.HostMigrated {
		h.log.Info("host migrated", "roomId", room.ID, "newHost", room.Host())
	}

	h.broadcastMessage(room, client, protocol.LeaveNotice{
		Type:        protocol.TypeLeaveNotice,
		PlayerID:    client.playerID,
		RoomID:      room.ID,
		NewHost:     room.Host(),
		PlayerCount: room.Size(),
	})
}

// dispatch routes one inbound frame by its type discriminant. Game traffic
// is relayed verbatim to the rest of the sender's room; p2p kinds are
// unicast to their target. A malformed frame is logged and dropped without
// touching the sender's membership.
func (h *Hub) dispatch(sender *Client, data []byte) {
	kind, err := protocol.Kind(data)
	if err != nil {
		h.log.Warn("dropping malformed message", "playerId", sender.playerID, "error", err)
		return
	}

	switch kind {
	case protocol.TypeBlockUpdate, protocol.TypePlayerPose, protocol.TypeChat:
		h.broadcastRaw(sender, data)

	case protocol.TypeP2PSignal:
		h.relaySignal(sender, data)

	case protocol.TypeP2PConnect:
		h.relayConnectRequest(sender, data)

	default:
		// Unrecognized types fall through to a room broadcast so newer
		// clients can talk past an older relay.
		h.log.Debug("relaying unknown message type", "type", kind, "playerId", sender.playerID)
		h.broadcastRaw(sender, data)
	}
}

// relaySignal unicasts a p2p signaling payload to its target, rewrapped with
// the sender's identity. An absent target drops the message silently.
func (h *Hub) relaySignal(sender *Client, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		h.log.Warn("dropping malformed p2p signal", "playerId", sender.playerID, "error", err)
		return
	}
	signal := msg.(protocol.P2PSignal)

	target, ok := h.registry.Lookup(signal.TargetPlayerID)
	if !ok {
		return
	}
	h.sendMessage(target, protocol.P2PSignal{
		Type:       protocol.TypeP2PSignal,
		Signal:     signal.Signal,
		SenderID:   sender.playerID,
		SignalType: signal.SignalType,
	})
}

// relayConnectRequest notifies the target player that the sender wants a
// direct connection. Same drop-if-absent rule as relaySignal.
func (h *Hub) relayConnectRequest(sender *Client, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		h.log.Warn("dropping malformed p2p request", "playerId", sender.playerID, "error", err)
		return
	}
	req := msg.(protocol.P2PConnectRequest)

	target, ok := h.registry.Lookup(req.TargetPlayerID)
	if !ok {
		return
	}
	h.sendMessage(target, protocol.P2PRequest{
		Type:          protocol.TypeP2PRequest,
		RequesterID:   sender.playerID,
		RequesterInfo: req.RequesterInfo,
	})
}

// broadcastMessage encodes a message once and sends it to every room member
// except skip.
func (h *Hub) broadcastMessage(room *Room, skip *Client, msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		h.log.Error("encode broadcast", "type", msg.MessageType(), "error", err)
		return
	}
	room.others(skip, func(member *Client) {
		h.sendRaw(member, data)
	})
}

// broadcastRaw relays a frame verbatim to every other member of the sender's
// room.
func (h *Hub) broadcastRaw(sender *Client, data []byte) {
	room, ok := h.registry.Room(sender.roomID)
	if !ok {
		return
	}
	room.others(sender, func(member *Client) {
		h.sendRaw(member, data)
	})
}

// sendMessage encodes and unicasts a message to one client.
func (h *Hub) sendMessage(client *Client, msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		h.log.Error("encode message", "type", msg.MessageType(), "error", err)
		return
	}
	h.sendRaw(client, data)
}

// sendRaw queues a frame on one client's outbound buffer. A full buffer
// drops the frame for that client only; the rest of the room is unaffected.
func (h *Hub) sendRaw(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.log.Warn("send buffer full, dropping frame", "playerId", client.playerID)
	}
}
