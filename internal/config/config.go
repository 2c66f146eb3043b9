// Package config loads and validates environment variables at startup.
// Fail-fast: an invalid value is reported before anything connects.
//
// An optional .env file in the working directory is loaded first; real
// environment variables take precedence over it.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Logging is shared by both binaries.
type Logging struct {
	Level  string
	Format string
}

// Client holds runtime configuration for the tracker CLI.
type Client struct {
	APIBaseURL  string
	HTTPTimeout time.Duration
	RefreshSpec string // cron spec for watch mode, e.g. "@every 1m"
	RedisURL    string // optional; enables push refresh in watch mode

	// LatestRefreshWins drops out-of-order list responses in watch mode,
	// where cron and change events refresh concurrently.
	LatestRefreshWins bool
	Logging           Logging
}

// Server holds runtime configuration for the reference API server.
type Server struct {
	Port        string
	GRPCPort    string
	DatabaseURL string // optional; Postgres when set, SQLite otherwise
	SQLitePath  string
	RedisURL    string // optional; enables change events
	Logging     Logging
}

func newViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	return v
}

func loadLogging(v *viper.Viper) Logging {
	return Logging{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}
}

// LoadClient reads the CLI configuration.
func LoadClient() (*Client, error) {
	v := newViper()
	v.SetDefault("TRACKER_API_BASE_URL", "http://localhost:8000")
	v.SetDefault("TRACKER_HTTP_TIMEOUT", "15s")
	v.SetDefault("TRACKER_REFRESH_SPEC", "@every 1m")
	v.SetDefault("TRACKER_LATEST_REFRESH_WINS", true)

	base := v.GetString("TRACKER_API_BASE_URL")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("TRACKER_API_BASE_URL must be an http(s) URL, got %q", base)
	}

	rawTimeout := v.GetString("TRACKER_HTTP_TIMEOUT")
	timeout, err := time.ParseDuration(rawTimeout)
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("TRACKER_HTTP_TIMEOUT must be a positive duration, got %q", rawTimeout)
	}

	spec := v.GetString("TRACKER_REFRESH_SPEC")
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("TRACKER_REFRESH_SPEC %q: %w", spec, err)
	}

	return &Client{
		APIBaseURL:  base,
		HTTPTimeout: timeout,
		RefreshSpec: spec,
		RedisURL:    v.GetString("REDIS_URL"),
		Logging:     loadLogging(v),

		LatestRefreshWins: v.GetBool("TRACKER_LATEST_REFRESH_WINS"),
	}, nil
}

// LoadServer reads the API server configuration.
func LoadServer() (*Server, error) {
	v := newViper()
	v.SetDefault("TRACKER_PORT", "8082")
	v.SetDefault("GRPC_PORT", "9082")
	v.SetDefault("TRACKER_SQLITE_PATH", "tracker.sqlite")

	cfg := &Server{
		Port:        v.GetString("TRACKER_PORT"),
		GRPCPort:    v.GetString("GRPC_PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		SQLitePath:  v.GetString("TRACKER_SQLITE_PATH"),
		RedisURL:    v.GetString("REDIS_URL"),
		Logging:     loadLogging(v),
	}

	for name, port := range map[string]string{"TRACKER_PORT": cfg.Port, "GRPC_PORT": cfg.GRPCPort} {
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("%s must be a port number, got %q", name, port)
		}
	}
	if cfg.Port == cfg.GRPCPort {
		return nil, fmt.Errorf("TRACKER_PORT and GRPC_PORT must differ, both are %s", cfg.Port)
	}
	return cfg, nil
}
