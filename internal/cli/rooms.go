package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"blockwarp/internal/config"
	"blockwarp/internal/relay"
)

var roomsServerURL string

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List the relay's active rooms",
	Long: `List the relay's active rooms with member counts and hosts.

Examples:
  blockwarp rooms
  blockwarp rooms --server ws://relay.example.com:8080/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.Options{ServerURL: roomsServerURL})
		if err != nil {
			return err
		}
		return listRooms(cfg)
	},
}

func listRooms(cfg *config.Config) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(cfg.StatsURL())
	if err != nil {
		return fmt.Errorf("query relay stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay stats returned %s", resp.Status)
	}

	var stats []relay.RoomStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decode relay stats: %w", err)
	}

	if len(stats) == 0 {
		fmt.Println("No active rooms.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Room", "Players", "Host"})
	for _, s := range stats {
		host := s.Host
		if host == "" {
			host = "-"
		}
		t.AppendRow(table.Row{s.RoomID, s.PlayerCount, host})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func init() {
	roomsCmd.Flags().StringVarP(&roomsServerURL, "server", "s", "", "relay websocket URL")
	rootCmd.AddCommand(roomsCmd)
}
