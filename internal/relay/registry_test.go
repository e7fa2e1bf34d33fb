package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(roomID, playerID, mode string) *Client {
	return &Client{
		roomID:   roomID,
		playerID: playerID,
		mode:     mode,
		send:     make(chan []byte, 8),
	}
}

func TestRegistry_FirstHostJoinerBecomesHost(t *testing.T) {
	reg := NewRegistry()
	a := testClient("r1", "A", ModeHost)

	room := reg.Join(a)
	require.NotNil(t, room)
	assert.Equal(t, "A", room.Host())
	assert.Equal(t, 1, room.Size())

	snap := room.snapshot()
	assert.Equal(t, "A", snap.Host)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "A", snap.Players[0].PlayerID)
	assert.True(t, snap.Players[0].IsHost)
	assert.Equal(t, 1, snap.PlayerCount)
}

func TestRegistry_JoinModeDoesNotClaimHost(t *testing.T) {
	reg := NewRegistry()
	room := reg.Join(testClient("r1", "A", ModeJoin))
	assert.Empty(t, room.Host())
}

func TestRegistry_SecondHostDoesNotDisplaceFirst(t *testing.T) {
	reg := NewRegistry()
	reg.Join(testClient("r1", "A", ModeHost))
	room := reg.Join(testClient("r1", "B", ModeHost))
	assert.Equal(t, "A", room.Host())
	assert.Equal(t, 2, room.Size())
}

func TestRegistry_LateHostClaimsHostlessRoom(t *testing.T) {
	reg := NewRegistry()
	reg.Join(testClient("r1", "A", ModeJoin))
	room := reg.Join(testClient("r1", "B", ModeHost))
	assert.Equal(t, "B", room.Host())
}

func TestRegistry_HostMigratesToEarliestRemainingJoiner(t *testing.T) {
	reg := NewRegistry()
	a := testClient("r1", "A", ModeHost)
	b := testClient("r1", "B", ModeJoin)
	c := testClient("r1", "C", ModeJoin)
	reg.Join(a)
	reg.Join(b)
	reg.Join(c)

	result := reg.Leave(a)
	require.NotNil(t, result.Room)
	assert.False(t, result.Destroyed)
	assert.True(t, result.HostMigrated)
	assert.Equal(t, "B", result.Room.Host())
	assert.Equal(t, 2, result.Room.Size())
}

func TestRegistry_NonHostLeaveKeepsHost(t *testing.T) {
	reg := NewRegistry()
	a := testClient("r1", "A", ModeHost)
	b := testClient("r1", "B", ModeJoin)
	reg.Join(a)
	reg.Join(b)

	result := reg.Leave(b)
	assert.False(t, result.HostMigrated)
	assert.Equal(t, "A", result.Room.Host())
}

func TestRegistry_EmptyRoomIsDestroyed(t *testing.T) {
	reg := NewRegistry()
	a := testClient("r1", "A", ModeHost)
	reg.Join(a)

	result := reg.Leave(a)
	assert.True(t, result.Destroyed)
	_, ok := reg.Room("r1")
	assert.False(t, ok)

	// A later join with the same id creates a brand-new room with a
	// fresh host election.
	room := reg.Join(testClient("r1", "B", ModeHost))
	assert.Equal(t, "B", room.Host())
	assert.Equal(t, 1, room.Size())
}

func TestRegistry_LeaveUnknownClient(t *testing.T) {
	reg := NewRegistry()
	result := reg.Leave(testClient("r1", "ghost", ModeJoin))
	assert.Nil(t, result.Room)
}

func TestRegistry_LookupSpansRooms(t *testing.T) {
	reg := NewRegistry()
	a := testClient("r1", "A", ModeHost)
	b := testClient("r2", "B", ModeHost)
	reg.Join(a)
	reg.Join(b)

	got, ok := reg.Lookup("B")
	require.True(t, ok)
	assert.Same(t, b, got)

	reg.Leave(b)
	_, ok = reg.Lookup("B")
	assert.False(t, ok)

	// Leaving one room never disturbs another.
	got, ok = reg.Lookup("A")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegistry_Stats(t *testing.T) {
	reg := NewRegistry()
	reg.Join(testClient("r1", "A", ModeHost))
	reg.Join(testClient("r1", "B", ModeJoin))
	reg.Join(testClient("r2", "C", ModeJoin))

	stats := reg.Stats()
	require.Len(t, stats, 2)

	byRoom := make(map[string]RoomStats, len(stats))
	for _, s := range stats {
		byRoom[s.RoomID] = s
	}
	assert.Equal(t, RoomStats{RoomID: "r1", PlayerCount: 2, Host: "A"}, byRoom["r1"])
	assert.Equal(t, RoomStats{RoomID: "r2", PlayerCount: 1, Host: ""}, byRoom["r2"])
}
