package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockwarp/internal/config"
	"blockwarp/internal/protocol"
	"blockwarp/internal/session"
)

// tickInterval is how often the headless client drains the controller's
// inbound queue, standing in for the game loop.
const tickInterval = 50 * time.Millisecond

// runSession drives a headless session until interrupted: it starts the
// controller in the requested mode and ticks it, printing chat and roster
// changes. Used by both the host and join commands.
func runSession(cfg *config.Config, start func(*session.Controller)) error {
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ctl *session.Controller
	ctl = session.New(cfg.ServerURL, session.Callbacks{
		ApplyBlockUpdate: func(u protocol.BlockUpdate) {
			action := "removed"
			if u.IsPlacing {
				action = "placed"
			}
			fmt.Printf("%s %s block %d at (%d, %d, %d)\n",
				u.PlayerID, action, u.BlockType, u.Position.X, u.Position.Y, u.Position.Z)
		},
		ChatReceived: func(m protocol.Chat) {
			fmt.Printf("[%s] %s\n", m.PlayerID, m.Text)
		},
		PlayerCountChanged: func(count int) {
			host := ctl.CurrentHost()
			if host == "" {
				host = "none"
			}
			fmt.Printf("players in room: %d (host: %s)\n", count, host)
		},
	}, log)
	defer ctl.Close()

	start(ctl)
	fmt.Println("local player:", ctl.LocalPlayerID())

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctl.Tick()
		case <-ctx.Done():
			return nil
		}
	}
}
