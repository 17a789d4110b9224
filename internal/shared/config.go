package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Scraper     ScraperConfig     `toml:"scraper"`
	Database    DatabaseConfig    `toml:"database"`
	Tokenizer   TokenizerConfig   `toml:"tokenizer"`
	Logging     LoggingConfig     `toml:"logging"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Genius GeniusConfig `toml:"genius"`
}

// GeniusConfig points at the Genius API and the secret file holding its bearer token.
type GeniusConfig struct {
	BaseURL   string `toml:"base_url"`
	TokenFile string `toml:"token_file"`
}

// ScraperConfig controls discovery, extraction and provider politeness.
type ScraperConfig struct {
	RequestDelay     Duration `toml:"request_delay"`
	PerPage          int      `toml:"per_page"`
	IncludeFeatures  bool     `toml:"include_features"`
	ExcludedKeywords []string `toml:"excluded_keywords"`
	LyricsSelector   string   `toml:"lyrics_selector"`
	OnNetworkError   string   `toml:"on_network_error"` // "skip" or "abort"
}

// DatabaseConfig contains connection settings for the lyrics and tokens stores.
type DatabaseConfig struct {
	LyricsPath   string `toml:"lyrics_path"`
	TokensPath   string `toml:"tokens_path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TokenizerConfig selects the vocabulary, output shape and isolation mode.
type TokenizerConfig struct {
	Kind             string   `toml:"kind"` // "wordpiece" or "bpe"
	VocabPath        string   `toml:"vocab_path"`
	Encoding         string   `toml:"encoding"`
	Lowercase        bool     `toml:"lowercase"`
	AddSpecialTokens bool     `toml:"add_special_tokens"`
	MaxLength        int      `toml:"max_length"`
	Padding          bool     `toml:"padding"`
	AttentionMask    bool     `toml:"attention_mask"`
	Isolation        string   `toml:"isolation"` // "process" or "goroutine"
	Timeout          Duration `toml:"timeout"`
}

// LoggingConfig contains log level and optional log file destination.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration wraps [time.Duration] so it can be written as "1s" or "500ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Scraper.OnNetworkError) {
	case "", "skip", "abort":
	default:
		return fmt.Errorf("%w: scraper.on_network_error must be skip or abort, got %q", ErrInvalidConfig, c.Scraper.OnNetworkError)
	}

	switch strings.ToLower(c.Tokenizer.Kind) {
	case "wordpiece", "bpe":
	default:
		return fmt.Errorf("%w: tokenizer.kind must be wordpiece or bpe, got %q", ErrInvalidConfig, c.Tokenizer.Kind)
	}

	switch strings.ToLower(c.Tokenizer.Isolation) {
	case "process", "goroutine":
	default:
		return fmt.Errorf("%w: tokenizer.isolation must be process or goroutine, got %q", ErrInvalidConfig, c.Tokenizer.Isolation)
	}

	if c.Scraper.PerPage <= 0 {
		return fmt.Errorf("%w: scraper.per_page must be positive", ErrInvalidConfig)
	}
	return nil
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
