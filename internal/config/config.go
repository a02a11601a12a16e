package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// TokenEnv names the variable carrying the inference credential.
const TokenEnv = "HF_TOKEN"

type Config struct {
	Token      string        `env:"HF_TOKEN"`
	TokenParam string        `env:"HF_TOKEN_PARAM"`
	Endpoint   string        `env:"HF_INFERENCE_ENDPOINT" envDefault:"https://router.huggingface.co/hf-inference/models"`
	Timeout    time.Duration `env:"HF_TIMEOUT" envDefault:"0s"`
	LogLevel   string        `env:"IMAGEGEN_LOG_LEVEL" envDefault:"info"`

	// Lambda only
	Bucket       string `env:"BUCKET"`
	Distribution string `env:"DISTRIBUTION"`
	PromptsParam string `env:"PROMPTS_PARAM"`
	SiteURL      string `env:"SITE_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.Endpoint = strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.SiteURL = strings.TrimSuffix(strings.TrimSpace(cfg.SiteURL), "/")
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("HF_INFERENCE_ENDPOINT must not be empty")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("HF_TIMEOUT must not be negative: %s", cfg.Timeout)
	}
	return cfg, nil
}
