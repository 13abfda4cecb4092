package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the session engine and its CLI need. All values
// come from the environment (optionally seeded from a .env file); the engine
// itself has no standalone config surface.
type Config struct {
	Broker BrokerConfig
	API    APIConfig
	Auth   AuthConfig
	Log    LogConfig
}

type BrokerConfig struct {
	// URL is the STOMP-over-WebSocket endpoint, e.g. ws://host:8080/ws.
	URL string
	// Heartbeat is sent and expected in both directions.
	Heartbeat time.Duration
	// ReconnectDelay is the fixed backoff between reconnect attempts.
	ReconnectDelay time.Duration
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	// Token is the bearer token issued by the auth service. The engine never
	// produces tokens, it only carries one.
	Token string
}

type LogConfig struct {
	Level string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present but never required.
func Load() (*Config, error) {
	// Ignore a missing .env; env vars and defaults cover everything.
	_ = godotenv.Load()

	viper.SetDefault("CHAT_BROKER_URL", "ws://localhost:8080/ws")
	viper.SetDefault("CHAT_API_URL", "http://localhost:8080/api/v1")
	viper.SetDefault("CHAT_API_TIMEOUT", 10*time.Second)
	viper.SetDefault("CHAT_HEARTBEAT", 4*time.Second)
	viper.SetDefault("CHAT_RECONNECT_DELAY", 5*time.Second)
	viper.SetDefault("CHAT_LOG_LEVEL", "info")
	viper.AutomaticEnv()

	cfg := &Config{
		Broker: BrokerConfig{
			URL:            viper.GetString("CHAT_BROKER_URL"),
			Heartbeat:      viper.GetDuration("CHAT_HEARTBEAT"),
			ReconnectDelay: viper.GetDuration("CHAT_RECONNECT_DELAY"),
		},
		API: APIConfig{
			BaseURL: viper.GetString("CHAT_API_URL"),
			Timeout: viper.GetDuration("CHAT_API_TIMEOUT"),
		},
		Auth: AuthConfig{
			Token: viper.GetString("CHAT_TOKEN"),
		},
		Log: LogConfig{
			Level: viper.GetString("CHAT_LOG_LEVEL"),
		},
	}
	return cfg, nil
}
