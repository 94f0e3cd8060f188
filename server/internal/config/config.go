package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultStreamInterval = 5 * time.Second
	DefaultAllowOrigin    = "*"
)

// Environment variables that override file values.
const (
	EnvHTTPPort = "TODO_HTTP_PORT"
	EnvBaseURL  = "TODO_BASE_URL"
	EnvLogLevel = "TODO_LOG_LEVEL"
)

// Config holds the configuration parsed from the `server:` section of the
// config file.
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API listens on (default 8080).
	HTTPPort int `yaml:"http_port" toml:"http_port"`

	// BaseURL, when set, is used verbatim as the prefix of every href.
	// When empty the base is taken from each request's scheme and Host.
	BaseURL string `yaml:"base_url" toml:"base_url"`

	Log    LogConfig    `yaml:"log" toml:"log"`
	Stream StreamConfig `yaml:"stream" toml:"stream"`
	CORS   CORSConfig   `yaml:"cors" toml:"cors"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// StreamConfig controls the WebSocket todo stream.
type StreamConfig struct {
	// Interval is how often the full list is pushed even without changes.
	Interval time.Duration `yaml:"interval" toml:"interval"`
}

// CORSConfig controls cross-origin headers on API responses.
type CORSConfig struct {
	AllowOrigin string `yaml:"allow_origin" toml:"allow_origin"`
}

// StreamBaseURL returns the base used for links pushed over the WebSocket
// stream, where there is no request to derive one from.
func (s ServerConfig) StreamBaseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", s.HTTPPort)
}

// Default returns the built-in configuration with environment overrides
// applied, for running without a config file.
func Default() (*Config, error) {
	cfg := defaults()
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// Load reads and parses the config file at path, returning the server configuration.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Log: LogConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
			},
			Stream: StreamConfig{
				Interval: DefaultStreamInterval,
			},
			CORS: CORSConfig{
				AllowOrigin: DefaultAllowOrigin,
			},
		},
	}
}

// applyEnv overlays TODO_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a port number", EnvHTTPPort, v)
		}
		cfg.Server.HTTPPort = port
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Server.Log.Level = v
	}
	return nil
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server.base_url %q must be an absolute http(s) URL", s.BaseURL)
		}
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("server.log.level %q unknown: want debug|info|warn|error", s.Log.Level)
	}
	switch s.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("server.log.format %q unknown: want json|text", s.Log.Format)
	}
	if s.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be positive")
	}
	return nil
}
