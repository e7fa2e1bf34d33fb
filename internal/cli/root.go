package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blockwarp/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "blockwarp",
	Short:   "Multiplayer session relay for voxel-sandbox games",
	Long: `Blockwarp coordinates multiplayer sessions for a voxel-sandbox game.

It ships a relay server that groups websocket connections into rooms and
forwards block edits, player poses, and chat among room members, plus
headless host/join clients for driving a session from the terminal.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
