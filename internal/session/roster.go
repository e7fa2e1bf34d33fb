package session

import "time"

// remotePlayer is one roster entry. The roster is a read cache of the room's
// membership, refreshed only by join/leave notices and room snapshots from
// the relay; it always contains the local player.
type remotePlayer struct {
	playerID   string
	isHost     bool
	lastUpdate time.Time
}

// roster tracks the known members of the current room by playerId.
type roster map[string]*remotePlayer

func (r roster) add(playerID string, isHost bool) {
	r[playerID] = &remotePlayer{
		playerID:   playerID,
		isHost:     isHost,
		lastUpdate: time.Now(),
	}
}

func (r roster) remove(playerID string) {
	delete(r, playerID)
}

// touch refreshes a member's last-update time, adding the member if a pose
// arrived before its join notice.
func (r roster) touch(playerID string) {
	if p, ok := r[playerID]; ok {
		p.lastUpdate = time.Now()
		return
	}
	r.add(playerID, false)
}

// setHost marks hostID as the sole host.
func (r roster) setHost(hostID string) {
	for id, p := range r {
		p.isHost = id == hostID
	}
}
