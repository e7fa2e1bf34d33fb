package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
}

func TestLoad_FlagsBeatEnvironment(t *testing.T) {
	t.Setenv("BLOCKWARP_SERVER_URL", "ws://env.example.com/ws")
	t.Setenv("BLOCKWARP_LISTEN_ADDR", ":7777")

	cfg, err := Load(Options{ServerURL: "wss://flag.example.com/ws", ListenAddr: ":9999"})
	require.NoError(t, err)
	assert.Equal(t, "wss://flag.example.com/ws", cfg.ServerURL)
	assert.Equal(t, ":9999", cfg.ListenAddr)
}

func TestLoad_EnvironmentBeatsDefaults(t *testing.T) {
	t.Setenv("BLOCKWARP_SERVER_URL", "ws://env.example.com/ws")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "ws://env.example.com/ws", cfg.ServerURL)
}

func TestLoad_RejectsNonWebsocketURL(t *testing.T) {
	_, err := Load(Options{ServerURL: "http://example.com/ws"})
	assert.Error(t, err)
}

func TestStatsURL(t *testing.T) {
	cfg, err := Load(Options{ServerURL: "ws://relay.example.com:8080/ws"})
	require.NoError(t, err)
	assert.Equal(t, "http://relay.example.com:8080/stats", cfg.StatsURL())

	secure, err := Load(Options{ServerURL: "wss://relay.example.com/ws"})
	require.NoError(t, err)
	assert.Equal(t, "https://relay.example.com/stats", secure.StatsURL())
}

func TestHealthURL(t *testing.T) {
	cfg, err := Load(Options{ServerURL: "ws://relay.example.com:8080/ws"})
	require.NoError(t, err)
	assert.Equal(t, "http://relay.example.com:8080/health", cfg.HealthURL())
}
