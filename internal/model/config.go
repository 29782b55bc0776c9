package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete Echelon configuration tree.
// Loaded by viper (mapstructure tags) and dumped by `config show|init` (yaml tags).
type Config struct {
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Usage      UsageConfig      `mapstructure:"usage" yaml:"usage"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
	HTTP       HTTPConfig       `mapstructure:"http" yaml:"http"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

// ClassifierConfig selects the classification engine
type ClassifierConfig struct {
	Engine    Engine `mapstructure:"engine" yaml:"engine"`         // rules or llm
	MinTokens int    `mapstructure:"min_tokens" yaml:"min_tokens"` // Below this a statement is Neutral
}

// LLMConfig configures the hosted-model path
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" yaml:"provider"` // openai, anthropic, ollama
	Model             string  `mapstructure:"model" yaml:"model"`
	APIKey            string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL           string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout           int     `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	FallbackToRules   bool    `mapstructure:"fallback_to_rules" yaml:"fallback_to_rules"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
	HTTPProxy         string  `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy        string  `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy           string  `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// CacheConfig configures the hosted-model reply cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// UsageConfig configures the web form's usage ceilings
type UsageConfig struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`             // memory, file, redis
	DailyLimit   int    `mapstructure:"daily_limit" yaml:"daily_limit"`     // Global submissions per day (0 = unlimited)
	SessionLimit int    `mapstructure:"session_limit" yaml:"session_limit"` // Submissions per session per day (0 = unlimited)
	FilePath     string `mapstructure:"file_path" yaml:"file_path"`
	RedisAddr    string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisDB      int    `mapstructure:"redis_db" yaml:"redis_db"`
	Timezone     string `mapstructure:"timezone" yaml:"timezone"` // Calendar-day boundary, IANA name
}

// ServerConfig configures the web form and JSON API
type ServerConfig struct {
	Addr               string  `mapstructure:"addr" yaml:"addr"`
	MaxStatementLength int     `mapstructure:"max_statement_length" yaml:"max_statement_length"`
	RequestsPerSecond  float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst              int     `mapstructure:"burst" yaml:"burst"`
	SessionCookie      string  `mapstructure:"session_cookie" yaml:"session_cookie"`
}

// HistoryConfig configures the classification log
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// HTTPConfig configures page fetching for `scan`
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy       string        `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// BatchConfig configures concurrent classification of many statements
type BatchConfig struct {
	Workers       int `mapstructure:"workers" yaml:"workers"`
	MaxStatements int `mapstructure:"max_statements" yaml:"max_statements"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".echelon")

	return &Config{
		Classifier: ClassifierConfig{
			Engine:    EngineRules,
			MinTokens: 2,
		},
		LLM: LLMConfig{
			Provider:          "",
			Model:             "", // Provider default
			Timeout:           30,
			MaxTokens:         300,
			FallbackToRules:   true,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Usage: UsageConfig{
			Backend:      "memory",
			DailyLimit:   500,
			SessionLimit: 20,
			FilePath:     filepath.Join(base, "usage.json"),
			RedisAddr:    "localhost:6379",
			Timezone:     "UTC",
		},
		Server: ServerConfig{
			Addr:               ":8080",
			MaxStatementLength: 1000,
			RequestsPerSecond:  5,
			Burst:              10,
			SessionCookie:      "echelon_session",
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(base, "history.db"),
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Echelon/0.1 (+https://github.com/ppiankov/echelon)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Batch: BatchConfig{
			Workers:       4,
			MaxStatements: 500,
		},
	}
}
