// Package config loads the client's configuration from an optional JSON
// file, with environment variables overriding whatever the file sets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/keato/btc-client/internal/wire"
)

// DefaultPort is the Bitcoin mainnet default listen port.
const DefaultPort = 8333

// Config holds every tunable the session, UI, and metrics server need.
type Config struct {
	UserAgent     string        `json:"user_agent"`
	Services      wire.Services `json:"services"`
	LastBlock     uint32        `json:"last_block"`
	Relay         bool          `json:"relay"`
	ReadTimeout   time.Duration `json:"-"`
	ReadTimeoutMS int           `json:"read_timeout_ms"`
	MetricsAddr   string        `json:"metrics_addr"`
	LogLevel      string        `json:"log_level"`
	LogJSON       bool          `json:"log_json"`
}

// Default returns the built-in configuration used when no file is present
// and no environment overrides apply.
func Default() Config {
	return Config{
		UserAgent:     "/btc-client:0.1.0/",
		Services:      wire.Services{Network: true, Witness: true},
		LastBlock:     0,
		Relay:         true,
		ReadTimeout:   100 * time.Millisecond,
		ReadTimeoutMS: 100,
		MetricsAddr:   ":9090",
		LogLevel:      "info",
		LogJSON:       false,
	}
}

// Load reads path if it exists, falling back to Default() otherwise, then
// applies environment-variable overrides. A missing file is not an error;
// a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.ReadTimeoutMS > 0 {
		cfg.ReadTimeout = time.Duration(cfg.ReadTimeoutMS) * time.Millisecond
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BTC_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("BTC_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("BTC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BTC_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogJSON = b
		}
	}
	if v := os.Getenv("BTC_RELAY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Relay = b
		}
	}
	if v := os.Getenv("BTC_READ_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ReadTimeoutMS = n
		}
	}
}
