// Package config loads the server-side configuration file. The game
// catalog has its own loader; this covers the process-level settings.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// ServerConfig controls the peer link and player identity.
type ServerConfig struct {
	// Host makes this instance listen for the peer and act as the deck
	// authority; otherwise it dials PeerURL.
	Host       bool   `mapstructure:"host"`
	ListenAddr string `mapstructure:"listen_addr"`
	PeerURL    string `mapstructure:"peer_url"`

	PlayerName   string `mapstructure:"player_name"`
	OpponentName string `mapstructure:"opponent_name"`

	// SyncTimeout bounds the deck-sync wait for the joining peer.
	SyncTimeout time.Duration `mapstructure:"sync_timeout"`
	// ConnectTimeout bounds waiting for or dialing the peer.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// CatalogConfig points at the game data document.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from path, applying defaults and DEADLINE_*
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.host", false)
	v.SetDefault("server.listen_addr", ":8777")
	v.SetDefault("server.peer_url", "ws://localhost:8777")
	v.SetDefault("server.player_name", "player")
	v.SetDefault("server.opponent_name", "opponent")
	v.SetDefault("server.sync_timeout", 30*time.Second)
	v.SetDefault("server.connect_timeout", 60*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("catalog.path", "config/catalog.yaml")

	v.SetEnvPrefix("DEADLINE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Host && c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr required when hosting")
	}
	if !c.Server.Host && c.Server.PeerURL == "" {
		return fmt.Errorf("server.peer_url required when joining")
	}
	if c.Server.SyncTimeout <= 0 {
		return fmt.Errorf("server.sync_timeout must be positive")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
