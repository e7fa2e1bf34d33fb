package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"blockwarp/internal/relay"
)

// defaultRoomID is used when a connection omits the roomId parameter.
const defaultRoomID = "default"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// The relay is origin-agnostic: WebGL builds are served from arbitrary
	// hosts, so cross-origin upgrades are allowed.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Routes builds the relay's HTTP surface: the websocket endpoint, a health
// check, and a room stats listing.
func Routes(hub *relay.Hub, log *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ServeWs(hub, log))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/stats", statsHandler(hub))
	return mux
}

// ServeWs returns an http.HandlerFunc that parses the join parameters from
// the request query, upgrades the connection, and hands it to the hub.
//
// roomId defaults to "default"; playerId is required and its absence rejects
// the request before the upgrade.
func ServeWs(hub *relay.Hub, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := relay.JoinParams{
			RoomID:   query.Get("roomId"),
			PlayerID: query.Get("playerId"),
			Mode:     query.Get("mode"),
		}
		if params.RoomID == "" {
			params.RoomID = defaultRoomID
		}
		if params.PlayerID == "" {
			http.Error(w, "playerId is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		hub.Attach(conn, params)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Relay server is healthy."))
}

// statsHandler serves the hub's live room listing as JSON.
func statsHandler(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stats, err := hub.Stats(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}
