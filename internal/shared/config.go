package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Spotify SpotifyConfig `toml:"spotify"`
	Storage StorageConfig `toml:"storage"`
	Workers WorkersConfig `toml:"workers"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	Name string `toml:"name"`
}

// SpotifyConfig contains Spotify application credentials and endpoints.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	HostURL      string `toml:"host_url"` // host[:port] the OAuth redirect points at
	UserID       string `toml:"user_id"`  // owner of playlists created from the callback flow
	APIURL       string `toml:"api_url"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
}

// StorageConfig selects and configures the snapshot store.
type StorageConfig struct {
	Driver           string `toml:"driver"` // azure or memory
	ConnectionString string `toml:"connection_string"`
}

// WorkersConfig sizes the background export pool.
type WorkersConfig struct {
	Count     int     `toml:"count"`
	QueueSize int     `toml:"queue_size"`
	RateLimit float64 `toml:"rate_limit"` // jobs per second
}

// RedirectURI returns the OAuth callback URL registered with Spotify.
func (c SpotifyConfig) RedirectURI() string {
	return fmt.Sprintf("http://%s/callback", c.HostURL)
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A missing file is reported as [ErrMissingConfig]; fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
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

type envOverride struct {
	names []string
	field *string
}

// envOverrides lists the environment variables that replace config fields.
// Lowercase names are accepted for compatibility with existing .env files; the uppercase name wins when both are set.
func (c *Config) envOverrides() []envOverride {
	return []envOverride{
		{[]string{"host_url", "HOST_URL"}, &c.Spotify.HostURL},
		{[]string{"client_id", "CLIENT_ID"}, &c.Spotify.ClientID},
		{[]string{"client_secret", "CLIENT_SECRET"}, &c.Spotify.ClientSecret},
		{[]string{"spotify_user_id", "SPOTIFY_USER_ID"}, &c.Spotify.UserID},
		{[]string{"blob_storage_connection_string", "BLOB_STORAGE_CONNECTION_STRING"}, &c.Storage.ConnectionString},
		{[]string{"STORAGE_DRIVER"}, &c.Storage.Driver},
	}
}

// ApplyEnv loads envFiles (a missing file is not an error) and overlays any recognized environment variables onto the config.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}

	for _, o := range c.envOverrides() {
		for _, name := range o.names {
			if v, ok := os.LookupEnv(name); ok && v != "" {
				*o.field = v
			}
		}
	}

	if raw, ok := os.LookupEnv("PORT"); ok && raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: PORT must be a number, got %q", ErrInvalidConfig, raw)
		}
		c.Server.Port = port
	}

	return nil
}
