// Package config centralizes runtime configuration. Values come from
// environment variables with the defaults below; a .env file is loaded
// by the entrypoint before this package reads the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds every tunable of the service
type Settings struct {
	// API keys
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// Optional backing services
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	DatabaseURL   string `mapstructure:"database_url"`
	SearxngURL    string `mapstructure:"searxng_url"`
	PerplexicaURL string `mapstructure:"perplexica_url"`

	// HTTP server
	Port        string `mapstructure:"port"`
	CORSOrigins string `mapstructure:"cors_origins"`

	// Models
	ParsingModel   string `mapstructure:"parsing_model"`
	AnalysisModel  string `mapstructure:"analysis_model"`
	FallbackModel  string `mapstructure:"fallback_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`

	// Temperatures
	ParsingTemperature    float64 `mapstructure:"parsing_temperature"`
	AnalysisTemperature   float64 `mapstructure:"analysis_temperature"`
	GenerationTemperature float64 `mapstructure:"generation_temperature"`

	// Cache
	EmbeddingCacheTTL int `mapstructure:"embedding_cache_ttl"`
	ResultCacheTTL    int `mapstructure:"result_cache_ttl"`
	L1CacheSize       int `mapstructure:"l1_cache_size"`

	// Retry
	MaxRetries   int     `mapstructure:"max_retries"`
	RetryMinWait float64 `mapstructure:"retry_min_wait"`
	RetryMaxWait float64 `mapstructure:"retry_max_wait"`

	// Timeouts
	LLMTimeout       float64 `mapstructure:"llm_timeout"`
	EmbeddingTimeout float64 `mapstructure:"embedding_timeout"`
	HTTPTimeout      float64 `mapstructure:"http_timeout"`

	// Backpressure
	MaxConcurrentLLMCalls int     `mapstructure:"max_concurrent_llm_calls"`
	LLMQueueTimeout       float64 `mapstructure:"llm_queue_timeout"`

	// Circuit breaker
	CircuitBreakerFailureThreshold int     `mapstructure:"circuit_breaker_failure_threshold"`
	CircuitBreakerRecoveryTimeout  float64 `mapstructure:"circuit_breaker_recovery_timeout"`
	CircuitBreakerHalfOpenRequests int     `mapstructure:"circuit_breaker_half_open_requests"`

	// Snapshots
	SnapshotDir         string `mapstructure:"snapshot_dir"`
	SnapshotMaxAgeHours int    `mapstructure:"snapshot_max_age_hours"`

	// Logging
	LogLevel string `mapstructure:"log_level"`

	// Feature flags
	EnableMetrics        bool `mapstructure:"enable_metrics"`
	EnablePromptCache    bool `mapstructure:"enable_prompt_cache"`
	EnableCircuitBreaker bool `mapstructure:"enable_circuit_breaker"`
}

// Load reads settings from the environment, applying defaults
func Load() (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not populate Unmarshal; bind each key explicitly
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("database_url", "")
	v.SetDefault("searxng_url", "http://localhost:8888")
	v.SetDefault("perplexica_url", "http://localhost:3001")

	v.SetDefault("port", "8080")
	v.SetDefault("cors_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("parsing_model", "gemini-2.5-flash-lite")
	v.SetDefault("analysis_model", "gemini-2.0-flash-exp")
	v.SetDefault("fallback_model", "gpt-4o-mini")
	v.SetDefault("embedding_model", "text-embedding-004")

	v.SetDefault("parsing_temperature", 0.2)
	v.SetDefault("analysis_temperature", 0.3)
	v.SetDefault("generation_temperature", 0.5)

	v.SetDefault("embedding_cache_ttl", 86400)
	v.SetDefault("result_cache_ttl", 2592000)
	v.SetDefault("l1_cache_size", 1000)

	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_min_wait", 2.0)
	v.SetDefault("retry_max_wait", 10.0)

	v.SetDefault("llm_timeout", 30.0)
	v.SetDefault("embedding_timeout", 10.0)
	v.SetDefault("http_timeout", 15.0)

	v.SetDefault("max_concurrent_llm_calls", 50)
	v.SetDefault("llm_queue_timeout", 60.0)

	v.SetDefault("circuit_breaker_failure_threshold", 5)
	v.SetDefault("circuit_breaker_recovery_timeout", 30.0)
	v.SetDefault("circuit_breaker_half_open_requests", 3)

	v.SetDefault("snapshot_dir", "data/state_snapshots")
	v.SetDefault("snapshot_max_age_hours", 24)

	v.SetDefault("log_level", "INFO")

	v.SetDefault("enable_metrics", true)
	v.SetDefault("enable_prompt_cache", true)
	v.SetDefault("enable_circuit_breaker", true)
}

// CORSOriginsList splits the comma-separated origins setting
func (s *Settings) CORSOriginsList() []string {
	parts := strings.Split(s.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// Duration helpers; the raw fields stay in seconds to match the env surface.

func (s *Settings) LLMTimeoutDuration() time.Duration {
	return time.Duration(s.LLMTimeout * float64(time.Second))
}

func (s *Settings) EmbeddingTimeoutDuration() time.Duration {
	return time.Duration(s.EmbeddingTimeout * float64(time.Second))
}

func (s *Settings) HTTPTimeoutDuration() time.Duration {
	return time.Duration(s.HTTPTimeout * float64(time.Second))
}

func (s *Settings) RetryMinWaitDuration() time.Duration {
	return time.Duration(s.RetryMinWait * float64(time.Second))
}

func (s *Settings) RetryMaxWaitDuration() time.Duration {
	return time.Duration(s.RetryMaxWait * float64(time.Second))
}

func (s *Settings) LLMQueueTimeoutDuration() time.Duration {
	return time.Duration(s.LLMQueueTimeout * float64(time.Second))
}

func (s *Settings) BreakerRecoveryTimeoutDuration() time.Duration {
	return time.Duration(s.CircuitBreakerRecoveryTimeout * float64(time.Second))
}

func (s *Settings) EmbeddingCacheTTLDuration() time.Duration {
	return time.Duration(s.EmbeddingCacheTTL) * time.Second
}

func (s *Settings) ResultCacheTTLDuration() time.Duration {
	return time.Duration(s.ResultCacheTTL) * time.Second
}

func (s *Settings) SnapshotMaxAge() time.Duration {
	return time.Duration(s.SnapshotMaxAgeHours) * time.Hour
}
