package remote

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Defaults for an OpenAI-compatible endpoint.
const (
	DefaultModel              = "Qwen/QwQ-32B"
	DefaultBaseURL            = "https://api.siliconflow.cn"
	DefaultTemperature        = 0.7
	DefaultMaxTokens          = 220
	DefaultTimeout            = 20 * time.Second
	DefaultCertaintyThreshold = 0.95
)

// Config configures the remote policy.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Style   Style

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	// CertaintyThreshold is the confidence at or above which a villager
	// that chose to stay is made to leave.
	CertaintyThreshold float64
	// Align forces decisions onto the closed-form proof. AbsoluteRational
	// is always aligned.
	Align bool
	// RequestsPerMinute throttles outgoing calls; 0 disables throttling.
	RequestsPerMinute int
}

// DefaultConfig returns a Config with every default filled in and no key.
func DefaultConfig() Config {
	return Config{
		Model:              DefaultModel,
		BaseURL:            DefaultBaseURL,
		Style:              Rational,
		Temperature:        DefaultTemperature,
		MaxTokens:          DefaultMaxTokens,
		Timeout:            DefaultTimeout,
		CertaintyThreshold: DefaultCertaintyThreshold,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies the OPENAI_* variables,
// falling back to their SILICONFLOW_* equivalents.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.APIKey = firstEnv("OPENAI_API_KEY", "SILICONFLOW_API_KEY")
	if m := firstEnv("OPENAI_MODEL", "SILICONFLOW_MODEL"); m != "" {
		cfg.Model = m
	}
	if u := firstEnv("OPENAI_BASE_URL", "SILICONFLOW_BASE_URL"); u != "" {
		cfg.BaseURL = u
	}
	if s := os.Getenv("OPENAI_STYLE"); s != "" {
		st, err := ParseStyle(s)
		if err != nil {
			logrus.Warnf("ignoring OPENAI_STYLE: %v", err)
		} else {
			cfg.Style = st
		}
	}
	return cfg
}

// WithStyle returns a copy of c using style s.
func (c Config) WithStyle(s Style) Config {
	c.Style = s
	return c
}

// AlignmentOn reports whether decisions are pinned to the closed-form proof.
func (c Config) AlignmentOn() bool {
	return c.Align || c.Style == AbsoluteRational
}

// withDefaults fills zero fields so a partially built Config still works.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Style == "" {
		c.Style = d.Style
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CertaintyThreshold <= 0 {
		c.CertaintyThreshold = d.CertaintyThreshold
	}
	return c
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
