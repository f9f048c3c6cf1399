// Package config loads and validates configuration for the relay service.
// Server and relay settings come from a TOML file; upstream credentials come
// from the environment (optionally via a .env file). All four upstream
// settings are required and their absence is a hard configuration error.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server related configuration.
type ServerConfig struct {
	HostName       string `toml:"hostname"`        // Hostname for the server
	Port           string `toml:"port" validate:"required"` // Port for the server
	HandleCORS     bool   `toml:"handle_cors"`     // Whether to handle CORS
	AllowedOrigin  string `toml:"allowed_origin"`  // Origin of the embedding site
	RequestTimeout string `toml:"request_timeout"` // Per-request timeout, e.g. "60s"
}

// GetRequestTimeout returns the per-request timeout as a time.Duration.
func (s *ServerConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return DefaultRequestTimeout
	}
	return d
}

// RelayConfig holds conversation relay behavior configuration.
type RelayConfig struct {
	BannedPhrases     []string `toml:"banned_phrases"`      // moderation denylist
	RejectionMessage  string   `toml:"rejection_message"`   // fixed moderation response
	NoMessageFallback string   `toml:"no_message_fallback"` // response when extraction is empty
	MaxToolRounds     int      `toml:"max_tool_rounds"`     // cap on tool-call cycles per run
	PollIntervalMs    int      `toml:"poll_interval_ms"`    // run status poll interval
}

// UpstreamConfig holds required upstream service settings. These are read
// from the environment, never from the config file.
type UpstreamConfig struct {
	OpenAIAPIKey  string `validate:"required"` // assistant service credential
	AssistantID   string `validate:"required"` // hosted assistant identifier
	VectorStoreID string `validate:"required"` // document store identifier
	TavilyAPIKey  string `validate:"required"` // search service credential
}

// ConfigParam holds all configuration parameters for the relay service.
type ConfigParam struct {
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	Server   ServerConfig   `toml:"server"`
	Relay    RelayConfig    `toml:"relay"`
	Upstream UpstreamConfig `toml:"-"`
}

var cfg *ConfigParam

// Config returns the current configuration.
func Config() *ConfigParam {
	return cfg
}

// Defaults applied when the config file leaves a field unset.
const (
	DefaultRequestTimeout = 90 * time.Second
	DefaultMaxToolRounds  = 5
	DefaultPollIntervalMs = 1000

	DefaultRejectionMessage = "This question is not appropriate or relevant. " +
		"Please ask something based on your role or documents."
	DefaultNoMessageFallback = "Assistant did not return a message."
)

// DefaultBannedPhrases is the moderation denylist applied when the config
// file does not override it.
var DefaultBannedPhrases = []string{
	"hack", "illegal", "kill",
	"joke", "funny", "lol", "haha", "laugh",
	"crush", "kiss", "hug", "flirt",
	"dating", "sex",
	"boyfriend", "girlfriend",
	"do you love me", "tell me a joke", "marry me", "i love you",
	"chat with me", "best friend", "are you single", "romantic", "cute",
}

// ConfigFormatVersion is the current version of the configuration file format.
const ConfigFormatVersion = "0.1.0"

// ValidateConfig checks that all required configuration values are present,
// applies defaults, and validates the upstream settings.
func ValidateConfig(c *ConfigParam) error {
	if c.FormatVersion != ConfigFormatVersion {
		return fmt.Errorf("unsupported config file format version: %s", c.FormatVersion)
	}

	validate := validator.New()
	if err := validate.Struct(&c.Server); err != nil {
		return fmt.Errorf("invalid server configuration: %v", err)
	}

	if c.Server.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
			return fmt.Errorf("invalid server.request_timeout: %v", err)
		}
	} else {
		c.Server.RequestTimeout = DefaultRequestTimeout.String()
	}

	if c.Relay.RejectionMessage == "" {
		c.Relay.RejectionMessage = DefaultRejectionMessage
	}
	if c.Relay.NoMessageFallback == "" {
		c.Relay.NoMessageFallback = DefaultNoMessageFallback
	}
	if c.Relay.MaxToolRounds <= 0 {
		c.Relay.MaxToolRounds = DefaultMaxToolRounds
	}
	if c.Relay.PollIntervalMs <= 0 {
		c.Relay.PollIntervalMs = DefaultPollIntervalMs
	}
	if len(c.Relay.BannedPhrases) == 0 {
		c.Relay.BannedPhrases = DefaultBannedPhrases
	}

	if err := validate.Struct(&c.Upstream); err != nil {
		return fmt.Errorf("missing upstream configuration: %v", err)
	}

	return nil
}

// LoadConfig loads configuration from a TOML file and the environment.
// A .env file in the working directory is honored if present.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	c := &ConfigParam{}
	if _, err := toml.Decode(string(content), c); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	// Missing .env is fine; the environment may carry the values directly.
	_ = godotenv.Load()

	c.Upstream = UpstreamConfig{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		AssistantID:   os.Getenv("ASSISTANT_ID"),
		VectorStoreID: os.Getenv("VECTOR_STORE_ID"),
		TavilyAPIKey:  os.Getenv("TAVILY_API_KEY"),
	}

	if err := ValidateConfig(c); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	cfg = c
	return nil
}

// SetTestConfig installs the given configuration for tests.
func SetTestConfig(c *ConfigParam) {
	cfg = c
}
