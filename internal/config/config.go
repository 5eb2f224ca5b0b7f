package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// ServerConfig represents the server configuration
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
}

// ServerSettings contains server-wide settings
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"` // 0 keeps websocket upgrades alive
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// HTTP side-surface rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	// Socket rate limiting: events per second per connection. A connection
	// that exceeds the burst is closed.
	SocketEventsPerSec float64 `yaml:"socketEventsPerSec"`
	SocketEventBurst   int     `yaml:"socketEventBurst"`

	MaxRequestSize int64 `yaml:"maxRequestSize"`

	PacksDir        string `yaml:"packsDir"`
	EnableDevReload bool   `yaml:"enableDevReload"`

	EnableMetrics bool   `yaml:"enableMetrics"`
	LogLevel      string `yaml:"logLevel"`
	LogFormat     string `yaml:"logFormat"`
}

// GameSettings contains the room defaults and lifecycle tuning. Hosts may
// patch the per-room subset (lives, countdown, coins, buyback, boss HP)
// via game:configure while the room is still in the lobby.
type GameSettings struct {
	MaxLives         int `yaml:"maxLives"`
	CountdownMs      int `yaml:"countdownMs"`
	StartingCoins    int `yaml:"startingCoins"`
	BuybackCostCoins int `yaml:"buybackCostCoins"`
	BossHP           int `yaml:"bossHp"`

	MaxPlayersPerRoom int `yaml:"maxPlayersPerRoom"`
	RoomCodeLength    int `yaml:"roomCodeLength"`

	RoomIdleTimeout time.Duration `yaml:"roomIdleTimeout"`
	EndedRoomTTL    time.Duration `yaml:"endedRoomTtl"`
	NoConnectionTTL time.Duration `yaml:"noConnectionTtl"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "", // Must be set via env
			Host:            "", // Must be set via env
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,

			RateLimit:      10,
			RateLimitBurst: 20,

			SocketEventsPerSec: 20,
			SocketEventBurst:   20,

			MaxRequestSize: 1048576, // 1MB

			PacksDir:        "packs",
			EnableDevReload: false,

			EnableMetrics: false,
			LogLevel:      "info",
			LogFormat:     "json",
		},
		Game: GameSettings{
			MaxLives:         3,
			CountdownMs:      3000,
			StartingCoins:    150,
			BuybackCostCoins: 200,
			BossHP:           6,

			MaxPlayersPerRoom: 30,
			RoomCodeLength:    5,

			RoomIdleTimeout: 2 * time.Hour,
			EndedRoomTTL:    10 * time.Minute,
			NoConnectionTTL: 15 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}

	if c.Game.MaxLives < 1 {
		return fmt.Errorf("maxLives must be at least 1")
	}
	if c.Game.CountdownMs < 0 {
		return fmt.Errorf("countdownMs cannot be negative")
	}
	if c.Game.StartingCoins < 0 {
		return fmt.Errorf("startingCoins cannot be negative")
	}
	if c.Game.BuybackCostCoins < 0 {
		return fmt.Errorf("buybackCostCoins cannot be negative")
	}
	if c.Game.BossHP < 1 {
		return fmt.Errorf("bossHp must be at least 1")
	}
	if c.Game.MaxPlayersPerRoom < 1 {
		return fmt.Errorf("maxPlayersPerRoom must be at least 1")
	}
	if c.Game.RoomCodeLength < 3 {
		return fmt.Errorf("roomCodeLength must be at least 3")
	}
	if c.Game.CleanupInterval <= 0 {
		return fmt.Errorf("cleanupInterval must be positive")
	}
	if c.Server.SocketEventsPerSec <= 0 || c.Server.SocketEventBurst < 1 {
		return fmt.Errorf("socket rate limit must be positive")
	}

	return nil
}
