package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for tably-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (API keys) must
// only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// LLM endpoint configuration
	LLM LLMConfig `yaml:"llm"`

	// Session lifecycle configuration
	Session SessionConfig `yaml:"session"`

	// Sampling strategy tunables
	Sampling SamplingConfig `yaml:"sampling"`
}

// LLMConfig holds settings for the upstream model endpoint.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	// APIKey is optional for local endpoints.
	APIKey         string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`
	Temperature    float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
	MaxTokens      int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4096"`
}

// Timeout returns the request timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig holds session expiry and sweep settings.
type SessionConfig struct {
	// TTLMinutes is how long an idle session survives before a sweep
	// removes it.
	TTLMinutes int `yaml:"ttl_minutes" env:"SESSION_TTL_MINUTES" env-default:"30"`
	// SweepProbability is the chance that a session creation triggers an
	// inline background sweep. Sweeping is amortized; a stale session
	// outliving its TTL by a few requests only costs memory.
	SweepProbability float64 `yaml:"sweep_probability" env:"SESSION_SWEEP_PROBABILITY" env-default:"0.1"`
	// ReaperIntervalMinutes is the period of the background reaper.
	// Zero disables the ticker and leaves only probabilistic sweeps.
	ReaperIntervalMinutes int `yaml:"reaper_interval_minutes" env:"SESSION_REAPER_INTERVAL_MINUTES" env-default:"5"`
}

// TTL returns the session expiry window as a duration.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ReaperInterval returns the reaper period, or zero when disabled.
func (c *SessionConfig) ReaperInterval() time.Duration {
	return time.Duration(c.ReaperIntervalMinutes) * time.Minute
}

// SamplingConfig holds the sampling strategy tunables. Defaults match the
// documented design choices and should rarely need changing.
type SamplingConfig struct {
	// ContextRadius is how many neighboring rows surround each anchor row
	// in context mode. Too small starves the model of context for fills,
	// too large wastes token budget.
	ContextRadius int `yaml:"context_radius" env:"SAMPLING_CONTEXT_RADIUS" env-default:"20"`
	// RepresentativeThreshold is the row count above which analysis
	// queries see a stride sample instead of the full table.
	RepresentativeThreshold int `yaml:"representative_threshold" env:"SAMPLING_REPRESENTATIVE_THRESHOLD" env-default:"1000"`
	// SampleSize is the target size of a representative sample.
	SampleSize int `yaml:"sample_size" env:"SAMPLING_SAMPLE_SIZE" env-default:"200"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml does not exist, configuration comes from
// environment variables alone. The version parameter is injected at build
// time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLM.Provider != "openai" && c.LLM.Provider != "anthropic" {
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session ttl must be positive, got %d", c.Session.TTLMinutes)
	}
	if c.Session.SweepProbability < 0 || c.Session.SweepProbability > 1 {
		return fmt.Errorf("sweep probability must be in [0,1], got %g", c.Session.SweepProbability)
	}
	if c.Sampling.ContextRadius < 0 {
		return fmt.Errorf("context radius must be non-negative, got %d", c.Sampling.ContextRadius)
	}
	if c.Sampling.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive, got %d", c.Sampling.SampleSize)
	}
	return nil
}
