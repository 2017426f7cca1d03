package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	// API is the base URL of the plant marketplace backend.
	API         string
	HTTPTimeout time.Duration

	// DataDir holds the device-local state: cart, session token, cached user.
	DataDir string

	WeatherAPIKey string

	StubPort int
}

func Load() Config {
	return Config{
		AppEnv:        getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		API:           getEnv("SPRIG_API", "http://localhost:3000"),
		HTTPTimeout:   getEnvDuration("SPRIG_HTTP_TIMEOUT", 15*time.Second),
		DataDir:       getEnv("SPRIG_DATA_DIR", defaultDataDir()),
		WeatherAPIKey: getEnv("SPRIG_WEATHER_KEY", ""),
		StubPort:      getEnvInt("SPRIG_STUB_PORT", 3000),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sprig"
	}
	return filepath.Join(home, ".sprig")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
