package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AuthMode selects how the pipeline obtains a Zoom credential per event.
type AuthMode string

const (
	// AuthModeCached reads a previously stored credential keyed by the
	// event's host ID (populated by the OAuth callback).
	AuthModeCached AuthMode = "cached"
	// AuthModeEmbedded exchanges the authorization code carried inside the
	// webhook payload itself.
	AuthModeEmbedded AuthMode = "embedded"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Zoom        ZoomConfig
	Slack       SlackConfig
	Credentials CredentialsConfig
	KeepAlive   KeepAliveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ZoomConfig holds Zoom OAuth app credentials and endpoints. RedirectURI
// must exactly match the URI registered with Zoom.
type ZoomConfig struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	OAuthTokenURL string
	APIBaseURL    string
	AuthMode      AuthMode
}

// SlackConfig holds the Slack bot token and destination channel.
type SlackConfig struct {
	BotToken   string
	Channel    string
	APIBaseURL string
}

// CredentialsConfig holds credential store settings.
type CredentialsConfig struct {
	TTL time.Duration
}

// KeepAliveConfig holds the periodic self-ping settings. An empty URL
// disables the pinger.
type KeepAliveConfig struct {
	URL      string
	Interval time.Duration
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	authMode := AuthMode(getEnv("ZOOM_AUTH_MODE", string(AuthModeCached)))
	if authMode != AuthModeCached && authMode != AuthModeEmbedded {
		return nil, fmt.Errorf("invalid ZOOM_AUTH_MODE %q: must be %q or %q", authMode, AuthModeCached, AuthModeEmbedded)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Zoom: ZoomConfig{
			ClientID:      getEnv("ZOOM_CLIENT_ID", ""),
			ClientSecret:  getEnv("ZOOM_CLIENT_SECRET", ""),
			RedirectURI:   getEnv("ZOOM_REDIRECT_URI", ""),
			OAuthTokenURL: getEnv("ZOOM_OAUTH_TOKEN_URL", "https://zoom.us/oauth/token"),
			APIBaseURL:    getEnv("ZOOM_API_BASE_URL", "https://api.zoom.us"),
			AuthMode:      authMode,
		},
		Slack: SlackConfig{
			BotToken:   getEnv("SLACK_BOT_TOKEN", ""),
			Channel:    getEnv("SLACK_CHANNEL", "#general"),
			APIBaseURL: getEnv("SLACK_API_BASE_URL", "https://slack.com"),
		},
		Credentials: CredentialsConfig{
			// Zoom access tokens live one hour; expire ours earlier so a
			// stale token reads as missing instead of failing downstream.
			TTL: time.Duration(getEnvInt("CREDENTIAL_TTL_MINUTES", 55)) * time.Minute,
		},
		KeepAlive: KeepAliveConfig{
			URL:      getEnv("KEEPALIVE_URL", ""),
			Interval: time.Duration(getEnvInt("KEEPALIVE_INTERVAL_MINUTES", 14)) * time.Minute,
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
