package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blockwarp/internal/config"
	"blockwarp/internal/relay"
	"blockwarp/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Long: `Run the relay server.

The relay accepts websocket connections on /ws, groups them into rooms by
the roomId query parameter, and forwards messages among room members. It
never inspects game payloads beyond the type discriminant.

Examples:
  blockwarp serve
  blockwarp serve --listen :9000
  BLOCKWARP_LISTEN_ADDR=:9000 blockwarp serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{ListenAddr: flagListen})
		if err != nil {
			return err
		}
		return runRelay(cfg)
	},
}

func runRelay(cfg *config.Config) error {
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := relay.NewHub(log)
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Routes(hub, log),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("relay server listening", "addr", cfg.ListenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVarP(&flagListen, "listen", "l", "", "address to listen on (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
