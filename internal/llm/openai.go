package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/filmwiki/internal/geo"
	"github.com/ppiankov/filmwiki/internal/util"
)

// CountryRecognizer asks an OpenAI-compatible chat model for the countries
// referenced in a text. It satisfies geo.Recognizer.
type CountryRecognizer struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

var _ geo.Recognizer = (*CountryRecognizer)(nil)

func newCountryRecognizer(config Config, logger *slog.Logger) (*CountryRecognizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &CountryRecognizer{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger.With("component", "llm"),
	}, nil
}

// CountryMentions implements geo.Recognizer. Failures are logged and
// reported as no mentions.
func (r *CountryRecognizer) CountryMentions(text string) geo.Mentions {
	mentions, err := r.Countries(context.Background(), text)
	if err != nil {
		r.logger.Warn("country recognition failed", "error", err)
		return nil
	}
	return mentions
}

// Countries asks the model for a country to count object and orders it
// like the gazetteer: by count, then by where the country first appears in
// text. Countries the text never names directly sort after those it does.
func (r *CountryRecognizer) Countries(ctx context.Context, text string) (geo.Mentions, error) {
	model := r.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := r.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}
	timeout := r.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You extract geographic references from film plots and answer in strict JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(text),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	counts, err := parseCounts(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("countries recognized", "countries", len(counts), "tokens", resp.Usage.TotalTokens)
	return tallyCounts(text, counts), nil
}

// parseCounts decodes the model reply, tolerating a markdown code fence
func parseCounts(reply string) (map[string]int, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var counts map[string]int
	if err := json.Unmarshal([]byte(reply), &counts); err != nil {
		return nil, fmt.Errorf("decode country counts %q: %w", reply, err)
	}
	return counts, nil
}

func tallyCounts(text string, counts map[string]int) geo.Mentions {
	type entry struct {
		name  string
		count int
		at    int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		at := strings.Index(text, name)
		if at < 0 {
			at = len(text)
		}
		entries = append(entries, entry{name: name, count: count, at: at})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].at != entries[j].at {
			return entries[i].at < entries[j].at
		}
		return entries[i].name < entries[j].name
	})

	tally := geo.NewTally()
	for _, e := range entries {
		tally.Add(e.name, e.name, e.count)
	}
	return tally.Mentions()
}
