package relay

import "blockwarp/internal/protocol"

// Room is a named group of connections that receive each other's broadcast
// messages. A room exists only while it has members: it is created on the
// first join naming its id and deleted the instant the last member leaves.
type Room struct {
	// ID is the room identifier from the join parameters.
	ID string

	// members holds the current connections in join order. Join order is
	// what makes host migration deterministic: on host departure the
	// earliest remaining joiner inherits the role.
	members []*Client

	// host is the playerId of the current host, or empty while no member
	// has claimed the role. If set it always references a current member.
	host string
}

// Host reports the room's current host playerId, empty if none.
func (r *Room) Host() string { return r.host }

// Size reports the current member count.
func (r *Room) Size() int { return len(r.members) }

// snapshot captures the room's membership for a RoomState message.
func (r *Room) snapshot() protocol.RoomState {
	players := make([]protocol.PlayerInfo, 0, len(r.members))
	for _, m := range r.members {
		players = append(players, protocol.PlayerInfo{
			PlayerID: m.playerID,
			IsHost:   m.playerID == r.host,
		})
	}
	return protocol.RoomState{
		Type:        protocol.TypeRoomState,
		Players:     players,
		Host:        r.host,
		PlayerCount: len(r.members),
	}
}

// others visits every member except skip.
func (r *Room) others(skip *Client, visit func(*Client)) {
	for _, m := range r.members {
		if m != skip {
			visit(m)
		}
	}
}

// RoomStats is a point-in-time view of one room, served by the stats
// endpoint.
type RoomStats struct {
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
	Host        string `json:"host"`
}

// Registry is the in-memory room table plus a global playerId index used for
// p2p unicast. It is not safe for concurrent use: every call must come from
// the hub goroutine, which is what linearizes membership changes and
// broadcasts for a room.
type Registry struct {
	rooms   map[string]*Room
	clients map[string]*Client
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		clients: make(map[string]*Client),
	}
}

// Join adds a client to the room named by its join parameters, creating the
// room on first use. A client joining with mode=host claims the host role if
// the room has none. Returns the room as it exists after the join.
func (reg *Registry) Join(c *Client) *Room {
	room, ok := reg.rooms[c.roomID]
	if !ok {
		room = &Room{ID: c.roomID}
		reg.rooms[c.roomID] = room
	}

	if c.mode == ModeHost && room.host == "" {
		room.host = c.playerID
	}

	room.members = append(room.members, c)
	reg.clients[c.playerID] = c
	return room
}

// LeaveResult describes the registry state after a member departed.
type LeaveResult struct {
	// Room is the room the client left, nil if the client was unknown.
	Room *Room

	// Destroyed is true when the departure emptied the room and it no
	// longer exists.
	Destroyed bool

	// HostMigrated is true when the departing client was host and the
	// role moved to a remaining member (Room.Host names the successor).
	HostMigrated bool
}

// Leave removes a client from its room. An empty room is destroyed; in a
// surviving room the host role migrates to the earliest remaining joiner
// when the departing client held it. Migration is only ever attempted with
// members remaining, so a successor always exists.
func (reg *Registry) Leave(c *Client) LeaveResult {
	room, ok := reg.rooms[c.roomID]
	if !ok {
		return LeaveResult{}
	}

	found := false
	for i, m := range room.members {
		if m == c {
			room.members = append(room.members[:i], room.members[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return LeaveResult{}
	}

	if reg.clients[c.playerID] == c {
		delete(reg.clients, c.playerID)
	}

	result := LeaveResult{Room: room}
	if len(room.members) == 0 {
		delete(reg.rooms, room.ID)
		result.Destroyed = true
		return result
	}

	if room.host == c.playerID {
		room.host = room.members[0].playerID
		result.HostMigrated = true
	}
	return result
}

// Lookup finds a connected client by playerId, across all rooms.
func (reg *Registry) Lookup(playerID string) (*Client, bool) {
	c, ok := reg.clients[playerID]
	return c, ok
}

// Room returns the room with the given id if it exists.
func (reg *Registry) Room(id string) (*Room, bool) {
	room, ok := reg.rooms[id]
	return room, ok
}

// Stats snapshots every live room.
func (reg *Registry) Stats() []RoomStats {
	stats := make([]RoomStats, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		stats = append(stats, RoomStats{
			RoomID:      room.ID,
			PlayerCount: len(room.members),
			Host:        room.host,
		})
	}
	return stats
}
