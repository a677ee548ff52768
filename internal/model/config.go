package model

import "time"

// Config holds the complete filmwiki configuration
type Config struct {
	Category     CategoryConfig     `yaml:"category" mapstructure:"category"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Geo          GeoConfig          `yaml:"geo" mapstructure:"geo"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// CategoryConfig selects what gets scraped
type CategoryConfig struct {
	Name            string `yaml:"name" mapstructure:"name"`                         // e.g. "Category:2018 films"
	APIURL          string `yaml:"api_url" mapstructure:"api_url"`                   // MediaWiki api.php endpoint
	ExcludeTrailing int    `yaml:"exclude_trailing" mapstructure:"exclude_trailing"` // Non-film members at the end of the listing
}

// HTTPConfig configures the MediaWiki client
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the API response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig configures the fetch stage worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig configures per-host request pacing
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// GeoConfig selects the place-name recognizer used for Location
type GeoConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "gazetteer" or "llm"
}

// LLMConfig configures the optional LLM country recognizer
type LLMConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"-" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig configures where results are written
type OutputConfig struct {
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
	RecordsPath  string `yaml:"records_path" mapstructure:"records_path"`
	Indent       bool   `yaml:"indent" mapstructure:"indent"`
	MongoURI     string `yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDB      string `yaml:"mongo_db" mapstructure:"mongo_db"`
	MongoColl    string `yaml:"mongo_collection" mapstructure:"mongo_collection"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the configuration that reproduces the reference run
func DefaultConfig() *Config {
	return &Config{
		Category: CategoryConfig{
			Name:            "Category:2018 films",
			APIURL:          "https://en.wikipedia.org/w/api.php",
			ExcludeTrailing: 8,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "filmwiki/0.1 (+https://github.com/ppiankov/filmwiki)",
			MaxBodyBytes:  8 << 20,
			MaxRetries:    3,
			RespectRobots: false,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".filmwiki-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Geo: GeoConfig{
			Provider: "gazetteer",
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   30 * time.Second,
			MaxTokens: 200,
		},
		Output: OutputConfig{
			SnapshotPath: "data/raw_movies.json",
			RecordsPath:  "data/films2018.json",
			Indent:       false,
			MongoDB:      "filmwiki",
			MongoColl:    "films",
		},
	}
}
