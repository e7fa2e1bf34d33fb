package session

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwarp/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder captures callback invocations for assertions. Tests drive Tick
// from their own goroutine, so no locking is needed.
type recorder struct {
	blocks []protocol.BlockUpdate
	poses  []protocol.PlayerPose
	chats  []protocol.Chat
	counts []int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		ApplyBlockUpdate:   func(u protocol.BlockUpdate) { r.blocks = append(r.blocks, u) },
		ApplyPlayerPose:    func(p protocol.PlayerPose) { r.poses = append(r.poses, p) },
		ChatReceived:       func(c protocol.Chat) { r.chats = append(r.chats, c) },
		PlayerCountChanged: func(n int) { r.counts = append(r.counts, n) },
	}
}

func inject(t *testing.T, ctl *Controller, msg protocol.Message) {
	t.Helper()
	data, err := protocol.Encode(msg)
	require.NoError(t, err)
	ctl.HandleRaw(data)
	ctl.Tick()
}

func TestStartSinglePlayer(t *testing.T) {
	ctl := New("ws://localhost:8080/ws", Callbacks{}, testLogger())
	ctl.StartSinglePlayer()

	assert.Equal(t, ModeSinglePlayer, ctl.Mode())
	assert.True(t, ctl.IsConnected())
	assert.True(t, ctl.IsLocalPlayerHost())
	assert.Equal(t, 1, ctl.PlayerCount())
	assert.NotEmpty(t, ctl.LocalPlayerID())

	// Idempotent.
	ctl.StartSinglePlayer()
	assert.Equal(t, ModeSinglePlayer, ctl.Mode())
	assert.Equal(t, 1, ctl.PlayerCount())
}

func TestSinglePlayer_SendsAreNoOps(t *testing.T) {
	ctl := New("ws://localhost:8080/ws", Callbacks{}, testLogger())
	ctl.StartSinglePlayer()

	// No connection exists; these must not transmit or panic.
	ctl.SendBlockUpdate(1, 2, 3, 4, true)
	ctl.SendPlayerPose(protocol.Vec3{X: 1}, protocol.Vec3{})
	ctl.SendChat("into the void")

	assert.Nil(t, ctl.conn)
}

func TestJoinRoom_EmptyRoomIDIsNoOp(t *testing.T) {
	ctl := New("ws://localhost:8080/ws", Callbacks{}, testLogger())
	ctl.JoinRoom("")
	assert.Equal(t, ModeDisconnected, ctl.Mode())
	assert.Equal(t, StateIdle, ctl.state)
}

func TestConnect_WhileConnectingIsNoOp(t *testing.T) {
	ctl := New("ws://localhost:8080/ws", Callbacks{}, testLogger())
	ctl.mu.Lock()
	ctl.state = StateConnecting
	ctl.mode = ModeHost
	ctl.mu.Unlock()

	ctl.JoinRoom("r1")

	assert.Equal(t, ModeHost, ctl.Mode())
	assert.Empty(t, ctl.roomID)
}

func TestHandleRaw_RoutesBlockUpdate(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	inject(t, ctl, protocol.NewBlockUpdate("remote-1", 5, 6, 7, 2, true))

	require.Len(t, rec.blocks, 1)
	assert.Equal(t, "remote-1", rec.blocks[0].PlayerID)
	assert.Equal(t, protocol.BlockPos{X: 5, Y: 6, Z: 7}, rec.blocks[0].Position)
}

func TestHandleRaw_RoutesPlayerPose(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	inject(t, ctl, protocol.NewPlayerPose("remote-1",
		protocol.Vec3{X: 1, Y: 2, Z: 3}, protocol.Vec3{Y: 90}))

	require.Len(t, rec.poses, 1)
	assert.Equal(t, protocol.Vec3{X: 1, Y: 2, Z: 3}, rec.poses[0].Position)
}

func TestHandleRaw_SuppressesSelfEcho(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	// A relay that loops our own messages back must not mutate local
	// state through the collaborators.
	inject(t, ctl, protocol.NewBlockUpdate(ctl.LocalPlayerID(), 1, 2, 3, 4, true))
	inject(t, ctl, protocol.NewPlayerPose(ctl.LocalPlayerID(), protocol.Vec3{}, protocol.Vec3{}))
	inject(t, ctl, protocol.NewChat(ctl.LocalPlayerID(), "echo"))

	assert.Empty(t, rec.blocks)
	assert.Empty(t, rec.poses)
	assert.Empty(t, rec.chats)
}

func TestHandleRaw_MalformedPayloadDropped(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	ctl.HandleRaw([]byte(`not json`))
	ctl.HandleRaw([]byte(`{"position":{"x":1}}`)) // no discriminant
	ctl.Tick()

	assert.Empty(t, rec.blocks)
	assert.Empty(t, rec.poses)
	assert.Equal(t, 1, ctl.PlayerCount())
}

func TestHandleRaw_RosterFollowsNotices(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	inject(t, ctl, protocol.JoinNotice{
		Type: protocol.TypeJoinNotice, PlayerID: "remote-1", RoomID: "r1", PlayerCount: 2,
	})
	assert.Equal(t, 2, ctl.PlayerCount())

	inject(t, ctl, protocol.JoinNotice{
		Type: protocol.TypeJoinNotice, PlayerID: "remote-2", RoomID: "r1", PlayerCount: 3,
	})
	assert.Equal(t, 3, ctl.PlayerCount())

	inject(t, ctl, protocol.LeaveNotice{
		Type: protocol.TypeLeaveNotice, PlayerID: "remote-1", RoomID: "r1",
		NewHost: "remote-2", PlayerCount: 2,
	})
	assert.Equal(t, 2, ctl.PlayerCount())
	assert.False(t, ctl.IsLocalPlayerHost())
	assert.Equal(t, []int{2, 3, 2}, rec.counts)
}

func TestHandleRaw_RoomStateRefreshesRoster(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	inject(t, ctl, protocol.RoomState{
		Type: protocol.TypeRoomState,
		Players: []protocol.PlayerInfo{
			{PlayerID: "host-1", IsHost: true},
			{PlayerID: ctl.LocalPlayerID()},
			{PlayerID: "remote-2"},
		},
		Host:        "host-1",
		PlayerCount: 3,
	})

	assert.Equal(t, 3, ctl.PlayerCount())
	assert.False(t, ctl.IsLocalPlayerHost())
	assert.Equal(t, "host-1", ctl.CurrentHost())
}

func TestHandleRaw_HostMigrationToLocalPlayer(t *testing.T) {
	rec := &recorder{}
	ctl := New("ws://localhost:8080/ws", rec.callbacks(), testLogger())

	inject(t, ctl, protocol.JoinNotice{
		Type: protocol.TypeJoinNotice, PlayerID: "host-1", RoomID: "r1", PlayerCount: 2,
	})
	inject(t, ctl, protocol.LeaveNotice{
		Type: protocol.TypeLeaveNotice, PlayerID: "host-1", RoomID: "r1",
		NewHost: ctl.LocalPlayerID(), PlayerCount: 1,
	})

	assert.True(t, ctl.IsLocalPlayerHost())
	assert.Equal(t, 1, ctl.PlayerCount())
}

func TestClose_IsSafeWithoutConnection(t *testing.T) {
	ctl := New("ws://localhost:8080/ws", Callbacks{}, testLogger())
	ctl.StartSinglePlayer()
	ctl.Close()
	assert.Equal(t, ModeDisconnected, ctl.Mode())
	assert.False(t, ctl.IsConnected())
}

// waitFor ticks the controller until the condition holds or the deadline
// passes. Ticking from the test goroutine keeps callback state race-free.
func waitFor(t *testing.T, ctl *Controller, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		ctl.Tick()
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFallback_OnDialFailure(t *testing.T) {
	rec := &recorder{}
	// Nothing listens here; the dial fails fast.
	ctl := New("ws://127.0.0.1:1/ws", rec.callbacks(), testLogger())
	defer ctl.Close()

	ctl.StartHost()

	waitFor(t, ctl, func() bool { return ctl.Mode() == ModeSinglePlayer })
	assert.True(t, ctl.IsConnected())
	assert.True(t, ctl.IsLocalPlayerHost())
	assert.Equal(t, 1, ctl.PlayerCount())
	assert.Contains(t, rec.counts, 1)
}
