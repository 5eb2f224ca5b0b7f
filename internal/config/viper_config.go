package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("server")
	v.SetConfigType("yaml")

	// Add config paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/classclash")
	}

	// Enable environment variable binding
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables
	// These allow both CLASSCLASH_SERVER_PORT and PORT to work
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("server.packsdir", "PACKS_DIR")
	v.BindEnv("server.enabledevreload", "ENABLE_DEV_RELOAD")
	v.BindEnv("server.enablemetrics", "ENABLE_METRICS")
	v.BindEnv("game.maxlives", "MAX_LIVES")
	v.BindEnv("game.startingcoins", "STARTING_COINS")
	v.BindEnv("game.buybackcostcoins", "BUYBACK_COST_COINS")
	v.BindEnv("game.bosshp", "BOSS_HP")
	v.BindEnv("game.maxplayersperroom", "MAX_PLAYERS_PER_ROOM")

	// Server defaults
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "15s")
	v.SetDefault("server.idletimeout", "0s") // 0 for long-lived websockets
	v.SetDefault("server.shutdowntimeout", "30s")

	v.SetDefault("server.ratelimit", 10.0)
	v.SetDefault("server.ratelimitburst", 20)
	v.SetDefault("server.socketeventspersec", 20.0)
	v.SetDefault("server.socketeventburst", 20)

	v.SetDefault("server.maxrequestsize", 1048576) // 1MB

	v.SetDefault("server.packsdir", "packs")
	v.SetDefault("server.enabledevreload", false)
	v.SetDefault("server.enablemetrics", false)
	v.SetDefault("server.loglevel", "info")
	v.SetDefault("server.logformat", "json")

	// Game defaults
	v.SetDefault("game.maxlives", 3)
	v.SetDefault("game.countdownms", 3000)
	v.SetDefault("game.startingcoins", 150)
	v.SetDefault("game.buybackcostcoins", 200)
	v.SetDefault("game.bosshp", 6)
	v.SetDefault("game.maxplayersperroom", 30)
	v.SetDefault("game.roomcodelength", 5)
	v.SetDefault("game.roomidletimeout", "2h")
	v.SetDefault("game.endedroomttl", "10m")
	v.SetDefault("game.noconnectionttl", "15m")
	v.SetDefault("game.cleanupinterval", "5m")

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if strings.Contains(err.Error(), "no such file or directory") {
				// File doesn't exist, continue with defaults
			} else {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
		// Config file not found; continue with env vars and defaults
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if v.GetString("server.port") == "" {
		return nil, fmt.Errorf("PORT environment variable must be set")
	}
	if v.GetString("server.host") == "" {
		return nil, fmt.Errorf("HOST environment variable must be set")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
