package protocol

import "encoding/json"

// Message type discriminants. Every message carries one of these in its
// "type" field; the relay dispatches on it and the client selects the
// decoding schema from it.
const (
	TypeBlockUpdate = "block_update"
	TypePlayerPose  = "player_position"
	TypeChat        = "chat_message"
	TypeJoinNotice  = "player_joined"
	TypeLeaveNotice = "player_left"
	TypeRoomState   = "room_state"
	TypeP2PSignal   = "p2p_signal"
	TypeP2PConnect  = "request_p2p_connect"
	TypeP2PRequest  = "p2p_request"
)

// Message is implemented by every wire message kind.
type Message interface {
	MessageType() string
}

// BlockPos is an integer voxel coordinate.
type BlockPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Vec3 is a world-space position or euler rotation.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BlockUpdate announces that a player placed or removed a block.
type BlockUpdate struct {
	Type      string   `json:"type"`
	PlayerID  string   `json:"playerId"`
	Position  BlockPos `json:"position"`
	BlockType int      `json:"blockType"`
	IsPlacing bool     `json:"isPlacing"`
}

func (BlockUpdate) MessageType() string { return TypeBlockUpdate }

// NewBlockUpdate builds a tagged BlockUpdate for the given player.
func NewBlockUpdate(playerID string, x, y, z, blockType int, isPlacing bool) BlockUpdate {
	return BlockUpdate{
		Type:      TypeBlockUpdate,
		PlayerID:  playerID,
		Position:  BlockPos{X: x, Y: y, Z: z},
		BlockType: blockType,
		IsPlacing: isPlacing,
	}
}

// PlayerPose carries a player's position and rotation.
type PlayerPose struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
}

func (PlayerPose) MessageType() string { return TypePlayerPose }

// NewPlayerPose builds a tagged PlayerPose for the given player.
func NewPlayerPose(playerID string, position, rotation Vec3) PlayerPose {
	return PlayerPose{
		Type:     TypePlayerPose,
		PlayerID: playerID,
		Position: position,
		Rotation: rotation,
	}
}

// Chat is a free-text message relayed to the sender's room.
type Chat struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

func (Chat) MessageType() string { return TypeChat }

// NewChat builds a tagged Chat message for the given player.
func NewChat(playerID, text string) Chat {
	return Chat{Type: TypeChat, PlayerID: playerID, Text: text}
}

// JoinNotice is broadcast by the relay to a room when a new member joins.
type JoinNotice struct {
	Type        string `json:"type"`
	PlayerID    string `json:"playerId"`
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
}

func (JoinNotice) MessageType() string { return TypeJoinNotice }

// LeaveNotice is broadcast by the relay to the remaining members of a room
// when a member disconnects. NewHost is the room's host after any migration;
// it may be empty if the room never had one.
type LeaveNotice struct {
	Type        string `json:"type"`
	PlayerID    string `json:"playerId"`
	RoomID      string `json:"roomId"`
	NewHost     string `json:"newHost"`
	PlayerCount int    `json:"playerCount"`
}

func (LeaveNotice) MessageType() string { return TypeLeaveNotice }

// PlayerInfo is one roster entry inside a RoomState snapshot.
type PlayerInfo struct {
	PlayerID string `json:"playerId"`
	IsHost   bool   `json:"isHost"`
}

// RoomState is the snapshot the relay sends to a connection right after it
// joins, covering the room as it exists after the join.
type RoomState struct {
	Type        string       `json:"type"`
	Players     []PlayerInfo `json:"players"`
	Host        string       `json:"host"`
	PlayerCount int          `json:"playerCount"`
}

func (RoomState) MessageType() string { return TypeRoomState }

// P2PSignal is an opaque signaling payload forwarded to a single target
// player. Clients send it with TargetPlayerID set; the relay rewraps it with
// SenderID before delivery. The relay never inspects Signal.
type P2PSignal struct {
	Type           string          `json:"type"`
	TargetPlayerID string          `json:"targetPlayerId,omitempty"`
	Signal         json.RawMessage `json:"signal,omitempty"`
	SenderID       string          `json:"senderId,omitempty"`
	SignalType     string          `json:"signalType"`
}

func (P2PSignal) MessageType() string { return TypeP2PSignal }

// P2PConnectRequest asks the relay to notify TargetPlayerID that the sender
// wants a direct connection.
type P2PConnectRequest struct {
	Type           string          `json:"type"`
	TargetPlayerID string          `json:"targetPlayerId"`
	RequesterInfo  json.RawMessage `json:"requesterInfo,omitempty"`
}

func (P2PConnectRequest) MessageType() string { return TypeP2PConnect }

// P2PRequest is the relay-to-target notice produced from a P2PConnectRequest.
type P2PRequest struct {
	Type          string          `json:"type"`
	RequesterID   string          `json:"requesterId"`
	RequesterInfo json.RawMessage `json:"requesterInfo,omitempty"`
}

func (P2PRequest) MessageType() string { return TypeP2PRequest }
