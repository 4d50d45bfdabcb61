package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/spacesedan/emotisense/internal/clients"
)

// Prefix is prepended to every environment variable the service reads,
// e.g. EMOTISENSE_LLM_API_KEY.
const Prefix = "EMOTISENSE"

const (
	SessionBackendMemory = "memory"
	SessionBackendValkey = "valkey"
)

var ErrHelpWanted = conf.ErrHelpWanted

// LLMConfig is shared by every binary that talks to the LLM, so they all read the same
// EMOTISENSE_LLM_* variables.
type LLMConfig struct {
	APIKey    string `conf:"mask"`
	Model     string `conf:"default:gpt-4.1-2025-04-14"`
	BaseURL   string
	MaxTokens int `conf:"default:1500"`
	// Temperature must be above zero: the chat request omits a zero value and the API
	// then applies its own default.
	Temperature float32       `conf:"default:0.7"`
	Timeout     time.Duration `conf:"default:60s"`
}

// ApplyDefaults falls back to the conventional OPENAI_API_KEY variable.
func (l *LLMConfig) ApplyDefaults() {
	if l.APIKey == "" {
		l.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (l LLMConfig) Validate() error {
	if l.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got %d", l.MaxTokens)
	}
	if l.Temperature <= 0 || l.Temperature > 2 {
		return fmt.Errorf("llm temperature must be in (0, 2], got %v", l.Temperature)
	}
	return nil
}

func (l LLMConfig) OpenAIClient() clients.OpenAIConfig {
	return clients.OpenAIConfig{
		APIKey:      l.APIKey,
		Model:       l.Model,
		BaseURL:     l.BaseURL,
		MaxTokens:   l.MaxTokens,
		Temperature: l.Temperature,
		Timeout:     l.Timeout,
	}
}

type Config struct {
	conf.Version
	Web struct {
		Host            string        `conf:"default:0.0.0.0:8080"`
		ReadTimeout     time.Duration `conf:"default:15s"`
		WriteTimeout    time.Duration `conf:"default:120s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		MaxUploadBytes  int64         `conf:"default:33554432"`
	}
	Inference struct {
		Endpoint       string        `conf:"default:http://localhost:7860/predict"`
		Token          string        `conf:"mask"`
		Timeout        time.Duration `conf:"default:60s"`
		HealthURL      string
		HealthInterval time.Duration `conf:"default:15s"`
		// AllowPrivateMedia lets media URLs resolve to loopback and private networks.
		// Local development only.
		AllowPrivateMedia bool
	}
	LLM     LLMConfig
	Session struct {
		Backend string        `conf:"default:memory"`
		TTL     time.Duration `conf:"default:2h"`
	}
	Valkey struct {
		Address  string `conf:"default:localhost:6379"`
		Password string `conf:"mask"`
		TLS      bool
	}
	Log struct {
		Level string `conf:"default:info"`
	}
}

// Parse reads flags and EMOTISENSE_* variables into a Config. When --help or --version
// is requested the usage text is returned together with ErrHelpWanted.
func Parse(build, desc string) (Config, string, error) {
	cfg := Config{
		Version: conf.Version{
			Build: build,
			Desc:  desc,
		},
	}

	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return cfg, help, err
		}
		return cfg, "", fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	return cfg, "", nil
}

// String renders the config with secrets masked, for startup logs.
func (c Config) String() string {
	out, err := conf.String(&c)
	if err != nil {
		return ""
	}
	return out
}

// applyDefaults fills in values that depend on other settings or on the
// conventional OPENAI_API_KEY variable.
func (c *Config) applyDefaults() {
	c.LLM.ApplyDefaults()
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	if c.Session.Backend == "" {
		c.Session.Backend = SessionBackendMemory
	}
	if c.Inference.HealthURL == "" {
		c.Inference.HealthURL = c.Inference.Endpoint
	}
}

func (c Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendValkey:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Inference.Endpoint == "" {
		return errors.New("inference endpoint is required")
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.Session.Backend == SessionBackendValkey && c.Valkey.Address == "" {
		return errors.New("valkey address is required for the valkey session backend")
	}
	return nil
}

func (c Config) InferenceClient() clients.InferenceConfig {
	return clients.InferenceConfig{
		Endpoint:          c.Inference.Endpoint,
		HealthURL:         c.Inference.HealthURL,
		Token:             c.Inference.Token,
		Timeout:           c.Inference.Timeout,
		MaxMediaBytes:     c.Web.MaxUploadBytes,
		AllowPrivateMedia: c.Inference.AllowPrivateMedia,
	}
}

func (c Config) OpenAIClient() clients.OpenAIConfig {
	return c.LLM.OpenAIClient()
}

func (c Config) ValkeyClient() clients.ValkeyConfig {
	return clients.ValkeyConfig{
		Address:  c.Valkey.Address,
		Password: c.Valkey.Password,
		TLS:      c.Valkey.TLS,
	}
}
