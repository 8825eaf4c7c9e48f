package gemini

import "time"

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// systemInstruction frames every conversation. It is part of the product's
// behavior, not deployment configuration, so it lives here rather than in env.
const systemInstruction = "You are a friendly maternity and pregnancy assistant. " +
	"Your tone is supportive, informative, and non-judgmental. Always prioritize " +
	"user safety and provide accurate, general information."

// Config holds the Gemini client settings.
type Config struct {
	APIKey  string
	BaseURL string        // override for tests; defaults to the public endpoint
	Model   string        // defaults to gemini-2.5-flash
	Timeout time.Duration // upper bound on a single upstream call
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}
