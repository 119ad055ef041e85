// Package config loads the lexrag configuration from a per-environment YAML
// file with ${VAR} environment substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the lexrag service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Index   IndexConfig   `yaml:"index"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	TTS     TTSConfig     `yaml:"tts"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Answer  AnswerConfig  `yaml:"answer"`
	History HistoryConfig `yaml:"history"`
	Eval    EvalConfig    `yaml:"eval"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
	StaticDir       string   `yaml:"static_dir"`
}

// IndexConfig holds vector index connection settings.
type IndexConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Name             string   `yaml:"name"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OpenAIConfig holds embedding and generation provider settings.
type OpenAIConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	EmbeddingTimeoutSec int    `yaml:"embedding_timeout_sec"`
	ChatModel           string `yaml:"chat_model"`
	SummaryModel        string `yaml:"summary_model"`
}

// TTSConfig holds text-to-speech settings for the chat endpoint.
type TTSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	Voice   string `yaml:"voice"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	DataDir               string `yaml:"data_dir"`
	ChunkSize             int    `yaml:"chunk_size"`
	ChunkOverlap          int    `yaml:"chunk_overlap"`
	EmbedBatchSize        int    `yaml:"embed_batch_size"`
	UpsertBatchSize       int    `yaml:"upsert_batch_size"`
	MaxConcurrentRequests int    `yaml:"max_concurrent_requests"`
	MaxAttempts           int    `yaml:"max_attempts"`
	InitialBackoffSec     int    `yaml:"initial_backoff_sec"`
}

// AnswerConfig holds answering pipeline settings.
type AnswerConfig struct {
	TopK int `yaml:"top_k"`
}

// HistoryConfig holds conversation log store settings.
type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// EvalConfig holds evaluation harness settings.
type EvalConfig struct {
	Retriever string `yaml:"retriever"` // fixture, index (default: fixture)
	TopN      int    `yaml:"top_n"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Answer generation holds the response open for the full pipeline.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "lexrag:chunk:"
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.EmbeddingDimensions <= 0 {
		c.OpenAI.EmbeddingDimensions = 1536
	}
	if c.OpenAI.EmbeddingTimeoutSec <= 0 {
		c.OpenAI.EmbeddingTimeoutSec = 60
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o"
	}
	if c.OpenAI.SummaryModel == "" {
		c.OpenAI.SummaryModel = "gpt-3.5-turbo"
	}
	if c.TTS.Model == "" {
		c.TTS.Model = "tts-1"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "alloy"
	}
	if c.Ingest.DataDir == "" {
		c.Ingest.DataDir = "data"
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 1000
	}
	if c.Ingest.ChunkOverlap <= 0 {
		c.Ingest.ChunkOverlap = 150
	}
	if c.Ingest.EmbedBatchSize <= 0 {
		c.Ingest.EmbedBatchSize = 500
	}
	if c.Ingest.UpsertBatchSize <= 0 {
		c.Ingest.UpsertBatchSize = 50
	}
	if c.Ingest.MaxConcurrentRequests <= 0 {
		c.Ingest.MaxConcurrentRequests = 10
	}
	if c.Ingest.MaxAttempts <= 0 {
		c.Ingest.MaxAttempts = 3
	}
	if c.Ingest.InitialBackoffSec <= 0 {
		c.Ingest.InitialBackoffSec = 2
	}
	if c.Answer.TopK <= 0 {
		c.Answer.TopK = 5
	}
	if c.History.Dir == "" {
		c.History.Dir = "chat_history"
	}
	if c.Eval.Retriever == "" {
		c.Eval.Retriever = "fixture"
	}
	if c.Eval.TopN <= 0 {
		c.Eval.TopN = 5
	}
}

// Validate checks the configuration for correctness. Failures here are fatal
// at startup: the process refuses to serve on a broken configuration.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Index.Addrs) == 0 {
		return fmt.Errorf("index.addrs is required")
	}
	if c.Index.Name == "" {
		return fmt.Errorf("index.name is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be smaller than chunk_size, got %d >= %d",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	switch c.Eval.Retriever {
	case "fixture", "index":
		// ok
	default:
		return fmt.Errorf("eval.retriever must be \"fixture\" or \"index\", got %q", c.Eval.Retriever)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
