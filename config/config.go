// config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Config is the environment-driven configuration. The panel keeps no state of
// its own, so this is the whole of it: where the API lives, where the
// messaging provider lives, and how the server presents itself.
type Config struct {
	Port                string
	APIURL              string
	WhatsappProviderURL string
	AppEnv              string
	LogLevel            string
	PollInterval        time.Duration
	CookieMaxAge        time.Duration
}

// Load reads the configuration from the environment. Defaults keep a local
// setup working without a .env file.
func Load() Config {
	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		APIURL:              getEnv("API_URL", "http://localhost:3001"),
		WhatsappProviderURL: getEnv("WHATSAPP_PROVIDER_URL", "https://notifiquei.uazapi.com"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		PollInterval:        getDuration("WHATSAPP_POLL_INTERVAL", 7*time.Second),
		CookieMaxAge:        getDuration("SESSION_MAX_AGE", 7*24*time.Hour),
	}
	return cfg
}

// IsProduction reports whether cookies must be marked Secure.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// NewLogger builds the application logger from LOG_LEVEL. Unknown levels fall
// back to info.
func (c Config) NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
