package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Remote   RemoteConfig   `toml:"remote"`
	Steam    SteamConfig    `toml:"steam"`
	Session  SessionConfig  `toml:"session"`
}

// DatabaseConfig contains settings for the local state database.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local login callback server and the optional metrics listener.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsAddr string `toml:"metrics_addr"`
}

// RemoteConfig contains the endpoints of the remote functions the client talks to.
type RemoteConfig struct {
	SearchURL       string  `toml:"search_url"`
	PriceURL        string  `toml:"price_url"`
	TracksURL       string  `toml:"tracks_url"`
	RefreshURL      string  `toml:"refresh_url"`
	ProfileRelayURL string  `toml:"profile_relay_url"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	MarketRate      float64 `toml:"market_requests_per_second"`
}

// SteamConfig contains the Steam OpenID provider settings.
type SteamConfig struct {
	OpenIDURL       string `toml:"openid_url"`
	Realm           string `toml:"realm"`
	VerifyAssertion bool   `toml:"verify_assertion"`
}

// SessionConfig contains defaults for a new tracking session.
type SessionConfig struct {
	RefreshInterval float64 `toml:"refresh_interval"`
}

// Timeout returns the HTTP client timeout for remote calls.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CallbackURL returns the local URL Steam redirects back to after login.
func (s ServerConfig) CallbackURL() string {
	return fmt.Sprintf("http://%s:%d/callback", s.Host, s.Port)
}

// Addr returns the listen address of the callback server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides endpoint and storage settings from STEAMWATCH_* environment variables.
func (c *Config) ApplyEnv() error {
	overrides := map[string]*string{
		"STEAMWATCH_DB_PATH":       &c.Database.Path,
		"STEAMWATCH_SEARCH_URL":    &c.Remote.SearchURL,
		"STEAMWATCH_PRICE_URL":     &c.Remote.PriceURL,
		"STEAMWATCH_TRACKS_URL":    &c.Remote.TracksURL,
		"STEAMWATCH_REFRESH_URL":   &c.Remote.RefreshURL,
		"STEAMWATCH_PROFILE_RELAY": &c.Remote.ProfileRelayURL,
		"STEAMWATCH_METRICS_ADDR":  &c.Server.MetricsAddr,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*target = v
		}
	}

	if v, ok := os.LookupEnv("STEAMWATCH_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: STEAMWATCH_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}
