// Package config loads miztl settings from a .env file, an optional
// miztl.yaml file and the environment, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/cache"
	"github.com/ZaguanLabs/miztl/lua"
)

// FileName is the config file read when no path is given.
const FileName = "miztl.yaml"

// Config holds every setting the CLI needs.
type Config struct {
	TargetLang string `yaml:"target_lang,omitempty"`
	SourceLang string `yaml:"source_lang,omitempty"`

	// Provider
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`

	// Cache
	CacheDir string      `yaml:"cache_dir,omitempty"`
	Redis    RedisConfig `yaml:"redis,omitempty"`

	// Filter
	MinLength    int      `yaml:"min_length,omitempty"`
	SkipPrefixes []string `yaml:"skip_prefixes,omitempty"`
	Identifiers  []string `yaml:"identifiers,omitempty"`

	// Prompt
	Context  string            `yaml:"context,omitempty"`
	Glossary map[string]string `yaml:"glossary,omitempty"`

	// Request pacing
	MaxRetries        int `yaml:"max_retries,omitempty"`
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`
}

// RedisConfig selects the Redis cache store. An empty URL keeps the file store.
type RedisConfig struct {
	URL       string `yaml:"url,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	idents := make([]string, len(lua.DefaultIdentifiers))
	for i, id := range lua.DefaultIdentifiers {
		idents[i] = id.String()
	}
	return &Config{
		SourceLang:   "EN",
		Model:        "gpt-4o-mini",
		CacheDir:     cache.DefaultDir(),
		MinLength:    miztl.DefaultMinLength,
		SkipPrefixes: append([]string(nil), miztl.DefaultSkipPrefixes...),
		Identifiers:  idents,
		MaxRetries:   miztl.DefaultRetryConfig().MaxRetries,
	}
}

// Load reads .env from the working directory, then the YAML file at path,
// then environment overrides. An empty path reads FileName if it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.APIKey = getEnv("OPENAI_API_KEY", c.APIKey)
	c.BaseURL = getEnv("OPENAI_BASE_URL", c.BaseURL)
	c.Model = getEnv("MIZTL_MODEL", c.Model)
	c.CacheDir = getEnv("MIZTL_CACHE_DIR", c.CacheDir)
	c.Redis.URL = getEnv("MIZTL_REDIS_URL", c.Redis.URL)

	var err error
	if c.MinLength, err = getEnvInt("MIZTL_MIN_LENGTH", c.MinLength); err != nil {
		return err
	}
	if c.RequestsPerMinute, err = getEnvInt("MIZTL_RPM", c.RequestsPerMinute); err != nil {
		return err
	}
	return nil
}

// ParsedIdentifiers returns the configured script identifiers.
func (c *Config) ParsedIdentifiers() ([]lua.Identifier, error) {
	out := make([]lua.Identifier, 0, len(c.Identifiers))
	for _, s := range c.Identifiers {
		if strings.TrimSpace(s) == "" {
			continue
		}
		id, err := lua.ParseIdentifier(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Validate checks the settings needed to translate.
func (c *Config) Validate() error {
	if c.TargetLang == "" {
		return errors.New("target language is required")
	}
	if c.APIKey == "" && c.BaseURL == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.MinLength < 0 {
		return fmt.Errorf("min_length must not be negative, got %d", c.MinLength)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative, got %d", c.RequestsPerMinute)
	}
	if _, err := c.ParsedIdentifiers(); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
