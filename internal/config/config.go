// Package config loads examiz settings from an optional YAML file and
// EXAMIZ_* environment variables. Environment values win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/examiz/internal/examgen"
	"github.com/abhisek/examiz/internal/llm"
)

// Config is the full application configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LLMConfig selects the provider. Model, APIKey and BaseURL apply to the
// selected provider and override its provider-specific variables.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Retries  int           `yaml:"retries"`
}

// GenerationConfig tunes the exam pipeline.
type GenerationConfig struct {
	Difficulty       string  `yaml:"difficulty"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	StructuredOutput bool    `yaml:"structured_output"`
	Parallelism      int     `yaml:"parallelism"`
	CheckConformance bool    `yaml:"check_conformance"`
}

// StoreConfig locates the telemetry database. An empty DSN means the
// default SQLite path.
type StoreConfig struct {
	DSN      string `yaml:"dsn"`
	Disabled bool   `yaml:"disabled"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	gen := examgen.DefaultConfig()
	return Config{
		LLM: LLMConfig{
			Timeout: gen.Timeout,
		},
		Generation: GenerationConfig{
			Difficulty:       "B2",
			MaxTokens:        gen.MaxTokens,
			Temperature:      gen.Temperature,
			StructuredOutput: gen.StructuredOutput,
			Parallelism:      gen.Parallelism,
			CheckConformance: gen.CheckConformance,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			RequestTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath resolves the config file path:
// 1. EXAMIZ_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/examiz/config.yaml
// 3. ~/.config/examiz/config.yaml
func DefaultPath() string {
	if p := os.Getenv("EXAMIZ_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "examiz", "config.yaml")
}

// Load reads path (or DefaultPath when empty) and applies environment
// overrides. A missing default file is not an error; a missing explicit
// file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return Config{}, &llm.ErrConfiguration{Err: fmt.Errorf("config %s: %w", path, err)}
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, &llm.ErrConfiguration{Err: fmt.Errorf("read config: %w", err)}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, &llm.ErrConfiguration{Err: err}
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"EXAMIZ_LLM_PROVIDER": &cfg.LLM.Provider,
		"EXAMIZ_LLM_MODEL":    &cfg.LLM.Model,
		"EXAMIZ_LLM_API_KEY":  &cfg.LLM.APIKey,
		"EXAMIZ_LLM_BASE_URL": &cfg.LLM.BaseURL,
		"EXAMIZ_DIFFICULTY":   &cfg.Generation.Difficulty,
		"EXAMIZ_DB":           &cfg.Store.DSN,
		"EXAMIZ_ADDR":         &cfg.Server.Addr,
		"EXAMIZ_JWT_SECRET":   &cfg.Server.JWTSecret,
		"EXAMIZ_JWT_ISSUER":   &cfg.Server.JWTIssuer,
		"EXAMIZ_LOG_LEVEL":    &cfg.Logging.Level,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("EXAMIZ_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EXAMIZ_LLM_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = d
	}
	if v := os.Getenv("EXAMIZ_LLM_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXAMIZ_LLM_RETRIES: %w", err)
		}
		cfg.LLM.Retries = n
	}
	return nil
}

// LLMProvider returns the provider configuration: EXAMIZ_<PROVIDER>_* variables
// first, then the generic llm settings. When no provider is configured
// and the result lacks credentials, standard *_API_KEY variables are
// probed.
func (c Config) LLMProvider() llm.Config {
	cfg := llm.ConfigFromEnv()
	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	if c.LLM.Retries > 0 {
		cfg.Retry.MaxAttempts = c.LLM.Retries + 1
	}

	if key, model, baseURL, ok := cfg.Settings(cfg.Provider); ok {
		override(key, c.LLM.APIKey)
		override(model, c.LLM.Model)
		override(baseURL, c.LLM.BaseURL)
	}

	if c.LLM.Provider == "" && cfg.Validate() != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Timeout = cfg.Timeout
			discovered.Retry = cfg.Retry
			return discovered
		}
	}
	return cfg
}

// Exam returns the pipeline configuration.
func (c Config) Exam() examgen.Config {
	return examgen.Config{
		MaxTokens:        c.Generation.MaxTokens,
		Temperature:      c.Generation.Temperature,
		StructuredOutput: c.Generation.StructuredOutput,
		Timeout:          c.LLM.Timeout,
		Parallelism:      c.Generation.Parallelism,
		CheckConformance: c.Generation.CheckConformance,
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
