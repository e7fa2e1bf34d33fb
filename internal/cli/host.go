package cli

import (
	"github.com/spf13/cobra"

	"blockwarp/internal/config"
	"blockwarp/internal/session"
)

var hostServerURL string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a multiplayer session",
	Long: `Host a multiplayer session.

Connects to the relay in host mode and waits for other players. If the
connection fails, play continues in single-player mode.

Examples:
  blockwarp host
  blockwarp host --server ws://relay.example.com:8080/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{ServerURL: hostServerURL})
		if err != nil {
			return err
		}
		return runSession(cfg, func(ctl *session.Controller) {
			ctl.StartHost()
		})
	},
}

func init() {
	hostCmd.Flags().StringVarP(&hostServerURL, "server", "s", "", "relay websocket URL")
	rootCmd.AddCommand(hostCmd)
}
