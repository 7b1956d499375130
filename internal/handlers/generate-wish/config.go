// internal/handlers/generate-wish/config.go
package generatewish

import (
	"time"

	"wish-generator/internal/common/config"
)

type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // zero means no client-side timeout

	// APIKey is consulted on every call rather than captured once.
	APIKey func() string
}

// LoadConfig derives the relay settings from the application config.
func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		BaseURL:     cfg.Upstream.BaseURL,
		Model:       cfg.Upstream.Model,
		Temperature: cfg.Upstream.Temperature,
		MaxTokens:   cfg.Upstream.MaxTokens,
		Timeout:     config.GetDuration(cfg.Upstream.Timeout),
		APIKey: func() string {
			return cfg.Upstream.APIKey
		},
	}
}

// CompletionsURL is the chat-completions endpoint under BaseURL.
func (c *Config) CompletionsURL() string {
	return c.BaseURL + "/chat/completions"
}

func (c *Config) apiKey() string {
	if c.APIKey == nil {
		return ""
	}
	return c.APIKey()
}
