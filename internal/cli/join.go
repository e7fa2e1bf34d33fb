package cli

import (
	"github.com/spf13/cobra"

	"blockwarp/internal/config"
	"blockwarp/internal/session"
)

var joinServerURL string

var joinCmd = &cobra.Command{
	Use:   "join <room-id>",
	Short: "Join a multiplayer session",
	Long: `Join an existing multiplayer session by room id.

Examples:
  blockwarp join default
  blockwarp join mountain-base --server ws://relay.example.com:8080/ws`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{ServerURL: joinServerURL})
		if err != nil {
			return err
		}
		return runSession(cfg, func(ctl *session.Controller) {
			ctl.JoinRoom(args[0])
		})
	},
}

func init() {
	joinCmd.Flags().StringVarP(&joinServerURL, "server", "s", "", "relay websocket URL")
	rootCmd.AddCommand(joinCmd)
}
