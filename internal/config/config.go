package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Default configuration values.
const (
	DefaultServerURL  = "ws://localhost:8080/ws"
	DefaultListenAddr = ":8080"
)

// Config holds application configuration for both the relay server and the
// client commands.
type Config struct {
	// ServerURL is the relay websocket endpoint clients connect to.
	ServerURL string

	// ListenAddr is the address the relay server binds to.
	ListenAddr string
}

// Options carries CLI flag overrides into Load.
type Options struct {
	ServerURL  string
	ListenAddr string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("BLOCKWARP_SERVER_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("server URL %q must use ws or wss", serverURL)
	}

	listenAddr := opts.ListenAddr
	if listenAddr == "" {
		listenAddr = os.Getenv("BLOCKWARP_LISTEN_ADDR")
	}
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}

	return &Config{
		ServerURL:  serverURL,
		ListenAddr: listenAddr,
	}, nil
}

// StatsURL returns the relay's room stats endpoint, derived from the
// websocket URL.
func (c *Config) StatsURL() string {
	httpURL := strings.Replace(c.ServerURL, "ws", "http", 1)
	if i := strings.LastIndex(httpURL, "/ws"); i >= 0 {
		httpURL = httpURL[:i]
	}
	return httpURL + "/stats"
}

// HealthURL returns the relay's health endpoint.
func (c *Config) HealthURL() string {
	httpURL := strings.Replace(c.ServerURL, "ws", "http", 1)
	if i := strings.LastIndex(httpURL, "/ws"); i >= 0 {
		httpURL = httpURL[:i]
	}
	return httpURL + "/health"
}
