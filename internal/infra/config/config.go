package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"marketcolor/internal/domain"
)

// Reasoning providers accepted by REASONING_PROVIDER.
const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// History backends accepted by HISTORY_BACKEND.
const (
	HistoryBackendFile  = "file"
	HistoryBackendRedis = "redis"
)

type Config struct {
	Env        string
	PolicyPath string
	DryRun     bool

	Telegram  TelegramConfig
	Search    SearchConfig
	Feed      FeedConfig
	Reasoning ReasoningConfig
	Quotes    QuotesConfig
	History   HistoryConfig
	Pipeline  PipelineConfig
	Telemetry TelemetryConfig
}

type TelegramConfig struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	MaxMessage int
	Timeout    time.Duration
}

type SearchConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	RatePerSec   float64
	Burst        int
	MemoSize     int
	DefaultDepth string
}

type FeedConfig struct {
	BenzingaAPIKey  string
	BenzingaBaseURL string
	Timeout         time.Duration
	RSSEnabled      bool
}

type ReasoningConfig struct {
	Provider         string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	OllamaURL        string
	OllamaModel      string
	Timeout          time.Duration
	PlannerMaxTokens int
	CuratorMaxTokens int
}

type QuotesConfig struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
}

type HistoryConfig struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

type PipelineConfig struct {
	SearchConcurrency int
	Timezone          string
}

type TelemetryConfig struct {
	OTelEnabled     bool
	PushgatewayURL  string
	MetricsJobName  string
	ServiceVersion  string
	DeploymentEnv   string
	OTLPEndpoint    string
	TraceSampleRate float64
}

func Load() *Config {
	return &Config{
		Env:        getEnv("ENV", "development"),
		PolicyPath: getEnv("MARKETCOLOR_POLICY_PATH", ""),
		DryRun:     getEnvBool("MARKETCOLOR_DRY_RUN", false),
		Telegram: TelegramConfig{
			BotToken:   getSecret("TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN_FILE", ""),
			ChatID:     getEnv("TELEGRAM_CHAT_ID", ""),
			BaseURL:    getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			MaxMessage: getEnvInt("TELEGRAM_MAX_MESSAGE", 4096),
			Timeout:    getEnvDuration("TELEGRAM_TIMEOUT", 15*time.Second),
		},
		Search: SearchConfig{
			APIKey:       getSecret("TAVILY_API_KEY", "TAVILY_API_KEY_FILE", ""),
			BaseURL:      getEnv("TAVILY_API_URL", "https://api.tavily.com"),
			Timeout:      getEnvDuration("SEARCH_TIMEOUT", 20*time.Second),
			RatePerSec:   getEnvFloat("SEARCH_RATE_PER_SEC", 4),
			Burst:        getEnvInt("SEARCH_BURST", 4),
			MemoSize:     getEnvInt("SEARCH_MEMO_SIZE", 128),
			DefaultDepth: getEnv("SEARCH_DEFAULT_DEPTH", domain.DepthBasic),
		},
		Feed: FeedConfig{
			BenzingaAPIKey:  getSecret("BENZINGA_API_KEY", "BENZINGA_API_KEY_FILE", ""),
			BenzingaBaseURL: getEnv("BENZINGA_API_URL", "https://api.benzinga.com"),
			Timeout:         getEnvDuration("FEED_TIMEOUT", 20*time.Second),
			RSSEnabled:      getEnvBool("RSS_ENABLED", true),
		},
		Reasoning: ReasoningConfig{
			Provider:         strings.ToLower(getEnv("REASONING_PROVIDER", ProviderAnthropic)),
			AnthropicAPIKey:  getSecret("ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY_FILE", ""),
			AnthropicBaseURL: getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com"),
			AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:      getEnv("OLLAMA_MODEL", "gemma3:12b"),
			Timeout:          getEnvDuration("REASONING_TIMEOUT", 180*time.Second),
			PlannerMaxTokens: getEnvInt("PLANNER_MAX_TOKENS", 1024),
			CuratorMaxTokens: getEnvInt("CURATOR_MAX_TOKENS", 4096),
		},
		Quotes: QuotesConfig{
			Enabled: getEnvBool("QUOTES_ENABLED", true),
			BaseURL: getEnv("QUOTES_API_URL", "https://query1.finance.yahoo.com"),
			Timeout: getEnvDuration("QUOTES_TIMEOUT", 10*time.Second),
		},
		History: HistoryConfig{
			Backend:       strings.ToLower(getEnv("HISTORY_BACKEND", HistoryBackendFile)),
			Path:          getEnv("HISTORY_PATH", "./state/last_briefing.json"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getSecret("REDIS_PASSWORD", "REDIS_PASSWORD_FILE", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			RedisKey:      getEnv("HISTORY_REDIS_KEY", "marketcolor:history:last"),
		},
		Pipeline: PipelineConfig{
			SearchConcurrency: getEnvInt("SEARCH_CONCURRENCY", 6),
			Timezone:          getEnv("BRIEFING_TIMEZONE", "America/New_York"),
		},
		Telemetry: TelemetryConfig{
			OTelEnabled:     getEnvBool("OTEL_ENABLED", false),
			PushgatewayURL:  getEnv("PUSHGATEWAY_URL", ""),
			MetricsJobName:  getEnv("METRICS_JOB_NAME", "marketcolor"),
			ServiceVersion:  getEnv("SERVICE_VERSION", "0.0.0"),
			DeploymentEnv:   getEnv("DEPLOYMENT_ENV", "development"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			TraceSampleRate: getEnvFloat("OTEL_TRACE_SAMPLE_RATIO", 1.0),
		},
	}
}

// Validate checks the credentials a run needs before it touches the network.
// Every missing key is reported at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.BotToken == "" && !c.DryRun {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" && !c.DryRun {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if c.Search.APIKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}
	if c.Reasoning.Provider == ProviderAnthropic && c.Reasoning.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if len(missing) > 0 {
		return &domain.MissingCredentialsError{Keys: missing}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok && value != "" {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
