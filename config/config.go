package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerConfig   ServerConfig   `json:"server"`
	MarketConfig   MarketConfig   `json:"market"`
	CatalystConfig CatalystConfig `json:"catalyst"`
	RedisConfig    RedisConfig    `json:"redis"`
	CacheConfig    CacheConfig    `json:"cache"`
	AIConfig       AIConfig       `json:"ai"`
	StreamConfig   StreamConfig   `json:"stream"`
	LoggingConfig  LoggingConfig  `json:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	AllowedOrigins  string `json:"allowed_origins"`
	ReadTimeout     int    `json:"read_timeout"`     // seconds
	WriteTimeout    int    `json:"write_timeout"`    // seconds
	ShutdownTimeout int    `json:"shutdown_timeout"` // seconds
	RateLimitPerMin int    `json:"rate_limit_per_min"`
}

// MarketConfig holds market data provider settings.
type MarketConfig struct {
	BinanceFuturesURL string `json:"binance_futures_url"`
	CoinGeckoURL      string `json:"coingecko_url"`
	RequestTimeout    int    `json:"request_timeout"` // seconds
	DemoFallback      bool   `json:"demo_fallback"`   // synthesize candles when all providers fail
}

// CatalystConfig holds news/trending provider settings.
type CatalystConfig struct {
	Enabled          bool   `json:"enabled"`
	CryptoCompareURL string `json:"cryptocompare_url"`
	RequestTimeout   int    `json:"request_timeout"` // seconds
}

// RedisConfig holds the optional Redis cache tier settings.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// CacheConfig holds coin-search cache tuning.
type CacheConfig struct {
	SearchFreshTTL int `json:"search_fresh_ttl"` // seconds a search result is served as fresh
	SearchStaleTTL int `json:"search_stale_ttl"` // seconds a result may still serve as stale fallback
	MaxEntries     int `json:"max_entries"`
}

// AIConfig holds the optional LLM reasoning enhancer settings.
type AIConfig struct {
	Enabled        bool   `json:"enabled"`
	BaseURL        string `json:"base_url"` // OpenAI-compatible endpoint
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	RequestTimeout int    `json:"request_timeout"` // seconds
}

// StreamConfig holds WebSocket signal stream settings.
type StreamConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"` // delay between pushed signal refreshes
}

type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json or console
	Output string `json:"output"` // stdout, stderr, or file path
}

func Load() (*Config, error) {
	// Base config from file when present, env overrides take precedence
	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// The LLM API key is only ever read from the environment, never persisted
// in config.json.
func applyEnvOverrides(cfg *Config) {
	// Server config
	cfg.ServerConfig.Host = getEnvOrDefault("SIGNAL_HOST", defaultString(cfg.ServerConfig.Host, "0.0.0.0"))
	cfg.ServerConfig.Port = getEnvIntOrDefault("SIGNAL_PORT", defaultInt(cfg.ServerConfig.Port, 8080))
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SIGNAL_ALLOWED_ORIGINS", defaultString(cfg.ServerConfig.AllowedOrigins, "*"))
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SIGNAL_READ_TIMEOUT", defaultInt(cfg.ServerConfig.ReadTimeout, 30))
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SIGNAL_WRITE_TIMEOUT", defaultInt(cfg.ServerConfig.WriteTimeout, 30))
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SIGNAL_SHUTDOWN_TIMEOUT", defaultInt(cfg.ServerConfig.ShutdownTimeout, 10))
	cfg.ServerConfig.RateLimitPerMin = getEnvIntOrDefault("SIGNAL_RATE_LIMIT_PER_MIN", defaultInt(cfg.ServerConfig.RateLimitPerMin, 60))

	// Market data config
	cfg.MarketConfig.BinanceFuturesURL = getEnvOrDefault("SIGNAL_BINANCE_FUTURES_URL", defaultString(cfg.MarketConfig.BinanceFuturesURL, "https://fapi.binance.com"))
	cfg.MarketConfig.CoinGeckoURL = getEnvOrDefault("SIGNAL_COINGECKO_URL", defaultString(cfg.MarketConfig.CoinGeckoURL, "https://api.coingecko.com/api/v3"))
	cfg.MarketConfig.RequestTimeout = getEnvIntOrDefault("SIGNAL_MARKET_TIMEOUT", defaultInt(cfg.MarketConfig.RequestTimeout, 10))
	cfg.MarketConfig.DemoFallback = getEnvOrDefault("SIGNAL_DEMO_FALLBACK", "true") == "true"

	// Catalyst config
	cfg.CatalystConfig.Enabled = getEnvOrDefault("SIGNAL_CATALYST_ENABLED", "true") == "true"
	cfg.CatalystConfig.CryptoCompareURL = getEnvOrDefault("SIGNAL_CRYPTOCOMPARE_URL", defaultString(cfg.CatalystConfig.CryptoCompareURL, "https://min-api.cryptocompare.com"))
	cfg.CatalystConfig.RequestTimeout = getEnvIntOrDefault("SIGNAL_CATALYST_TIMEOUT", defaultInt(cfg.CatalystConfig.RequestTimeout, 10))

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolString(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", defaultString(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", defaultInt(cfg.RedisConfig.PoolSize, 10))

	// Cache config
	cfg.CacheConfig.SearchFreshTTL = getEnvIntOrDefault("SIGNAL_SEARCH_FRESH_TTL", defaultInt(cfg.CacheConfig.SearchFreshTTL, 300))
	cfg.CacheConfig.SearchStaleTTL = getEnvIntOrDefault("SIGNAL_SEARCH_STALE_TTL", defaultInt(cfg.CacheConfig.SearchStaleTTL, 3600))
	cfg.CacheConfig.MaxEntries = getEnvIntOrDefault("SIGNAL_SEARCH_MAX_ENTRIES", defaultInt(cfg.CacheConfig.MaxEntries, 400))

	// AI config - API key from environment only
	cfg.AIConfig.Enabled = getEnvOrDefault("SIGNAL_AI_ENABLED", boolString(cfg.AIConfig.Enabled)) == "true"
	cfg.AIConfig.BaseURL = getEnvOrDefault("SIGNAL_AI_BASE_URL", defaultString(cfg.AIConfig.BaseURL, "https://api.openai.com/v1"))
	cfg.AIConfig.APIKey = getEnvOrDefault("SIGNAL_AI_API_KEY", "")
	cfg.AIConfig.Model = getEnvOrDefault("SIGNAL_AI_MODEL", defaultString(cfg.AIConfig.Model, "gpt-4o-mini"))
	cfg.AIConfig.RequestTimeout = getEnvIntOrDefault("SIGNAL_AI_TIMEOUT", defaultInt(cfg.AIConfig.RequestTimeout, 12))

	// Stream config
	cfg.StreamConfig.Enabled = getEnvOrDefault("SIGNAL_STREAM_ENABLED", "true") == "true"
	cfg.StreamConfig.IntervalSeconds = getEnvIntOrDefault("SIGNAL_STREAM_INTERVAL", defaultInt(cfg.StreamConfig.IntervalSeconds, 30))

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultString(cfg.LoggingConfig.Level, "info"))
	cfg.LoggingConfig.Format = getEnvOrDefault("LOG_FORMAT", defaultString(cfg.LoggingConfig.Format, "json"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultString(cfg.LoggingConfig.Output, "stdout"))
}

// RequestTimeoutDuration returns the market request timeout as a duration.
func (m MarketConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(m.RequestTimeout) * time.Second
}

// RequestTimeoutDuration returns the catalyst request timeout as a duration.
func (c CatalystConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// GenerateSampleConfig creates a sample configuration file.
func GenerateSampleConfig(filename string) error {
	config := Config{
		ServerConfig: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			AllowedOrigins:  "*",
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
			RateLimitPerMin: 60,
		},
		MarketConfig: MarketConfig{
			BinanceFuturesURL: "https://fapi.binance.com",
			CoinGeckoURL:      "https://api.coingecko.com/api/v3",
			RequestTimeout:    10,
			DemoFallback:      true,
		},
		CatalystConfig: CatalystConfig{
			Enabled:          true,
			CryptoCompareURL: "https://min-api.cryptocompare.com",
			RequestTimeout:   10,
		},
		RedisConfig: RedisConfig{
			Enabled:  false,
			Address:  "localhost:6379",
			PoolSize: 10,
		},
		CacheConfig: CacheConfig{
			SearchFreshTTL: 300,
			SearchStaleTTL: 3600,
			MaxEntries:     400,
		},
		AIConfig: AIConfig{
			Enabled: false,
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		StreamConfig: StreamConfig{
			Enabled:         true,
			IntervalSeconds: 30,
		},
		LoggingConfig: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
