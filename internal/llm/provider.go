package llm

import (
	"strings"
	"time"

	"github.com/ppiankov/filmwiki/internal/model"
)

// Config holds LLM recognizer configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI; Ollama ignores it
	APIKey string

	// BaseURL for custom OpenAI-compatible endpoints
	BaseURL string

	Timeout   time.Duration
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30 * time.Second,
		MaxTokens: 200,
	}
}

// ConfigFromModel converts the LLM and HTTP sections of model.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
		MaxTokens:  cfg.LLM.MaxTokens,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}
}

// maxPromptRunes bounds the plot text sent to the model
const maxPromptRunes = 6000

// BuildPrompt constructs the country extraction prompt for a plot section
func BuildPrompt(plot string) string {
	if r := []rune(plot); len(r) > maxPromptRunes {
		plot = string(r[:maxPromptRunes])
	}

	var b strings.Builder
	b.WriteString(`List the countries referenced in the film plot below, directly or through a place inside them (a city, region or landmark).

RULES:
1. Reply with a single JSON object and nothing else.
2. Keys are English country names, values are how many times the country is referenced.
3. Count every reference to a place inside a country as a reference to that country.
4. Ignore nationalities and languages ("French", "Japanese").
5. If no country is referenced reply with {}.

Plot:
`)
	b.WriteString(plot)
	return b.String()
}
