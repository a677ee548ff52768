package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// ollamaBaseURL is the OpenAI-compatible endpoint of a local Ollama server
const ollamaBaseURL = "http://localhost:11434/v1"

// NewCountryRecognizer creates the recognizer for the configured provider.
// An empty provider returns nil (LLM disabled).
func NewCountryRecognizer(config Config, logger *slog.Logger) (*CountryRecognizer, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return newCountryRecognizer(config, logger)

	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = ollamaBaseURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		return newCountryRecognizer(config, logger)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
