package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values loaded from config.toml.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvArtistsSource       = "HITSCOPE_ARTISTS"
	EnvPredictionsSource   = "HITSCOPE_PREDICTIONS"
	EnvDatabasePath        = "HITSCOPE_DB"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Data        DataConfig        `toml:"data"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Spotify     SpotifyClientConf `toml:"spotify"`
	Tiers       TierConfig        `toml:"tiers"`
	Revenue     RevenueConfig     `toml:"revenue"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify client-credentials settings.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	APIURL       string `toml:"api_url"`
}

// HasCredentials reports whether both halves of the client credential pair are set.
func (c SpotifyConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// DataConfig points at the two precomputed JSON payloads. Values are file paths or http(s) URLs.
type DataConfig struct {
	Artists     string `toml:"artists"`
	Predictions string `toml:"predictions"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	PersistCache bool   `toml:"persist_cache"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      int      `toml:"rate_limit"` // requests per minute per IP, 0 disables
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SpotifyClientConf tunes the Spotify HTTP client.
type SpotifyClientConf struct {
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
	TokenMarginSeconds int     `toml:"token_margin_seconds"`
	BreakerFailures    int     `toml:"breaker_failures"`
}

// Timeout returns the request timeout, defaulting to 10s.
func (s SpotifyClientConf) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// TokenMargin returns the safety margin subtracted from token lifetimes, defaulting to 300s.
func (s SpotifyClientConf) TokenMargin() time.Duration {
	if s.TokenMarginSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(s.TokenMarginSeconds) * time.Second
}

// TierConfig holds the minimum popularity of each song tier. Anything below Mid is a bust.
type TierConfig struct {
	Hit  float64 `toml:"hit"`
	Good float64 `toml:"good"`
	Mid  float64 `toml:"mid"`
}

// RevenueConfig holds the stakeholder split and platform cut constants used by the revenue model.
type RevenueConfig struct {
	StreamPayout           float64 `toml:"stream_payout"`
	SpotifyCut             float64 `toml:"spotify_cut"`
	PhysicalDistributorCut float64 `toml:"physical_distributor_cut"`
	Label                  float64 `toml:"label"`
	Artist                 float64 `toml:"artist"`
	Songwriter             float64 `toml:"songwriter"`
	Publisher              float64 `toml:"publisher"`
	Producer               float64 `toml:"producer"`
	Manager                float64 `toml:"manager"`
	TourVenue              float64 `toml:"tour_venue"`
	MerchCost              float64 `toml:"merch_cost"`
}

// LogConfig controls log verbosity and the TUI log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile (if it exists) into the process environment and overlays the
// recognised variables onto config. A missing env file is not an error.
func ApplyEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	overrides := []struct {
		key    string
		target *string
	}{
		{EnvSpotifyClientID, &config.Credentials.Spotify.ClientID},
		{EnvSpotifyClientSecret, &config.Credentials.Spotify.ClientSecret},
		{EnvArtistsSource, &config.Data.Artists},
		{EnvPredictionsSource, &config.Data.Predictions},
		{EnvDatabasePath, &config.Database.Path},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.target = v
		}
	}

	return nil
}
