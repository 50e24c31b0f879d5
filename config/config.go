package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/insights/internal/model"
)

// Config holds all application configuration
type Config struct {
	// Providers
	HistoryProvider string `yaml:"history_provider"` // yahoo or twelvedata
	TwelveAPIKey    string `yaml:"twelve_api_key"`
	TwelveBaseURL   string `yaml:"twelve_base_url"`
	NewsBaseURL     string `yaml:"news_base_url"`
	NewsLimit       int    `yaml:"news_limit"`
	RequestTimeout  int    `yaml:"request_timeout"` // seconds
	RequestsPerSec  int    `yaml:"requests_per_sec"`
	MaxRetries      int    `yaml:"max_retries"`

	// Fallbacks
	SyntheticFallback bool `yaml:"synthetic_fallback"`

	// Storage
	DatabaseURL     string `yaml:"database_url"`
	ProfileCacheTTL int    `yaml:"profile_cache_ttl"` // minutes

	// Telegram
	TelegramToken    string   `yaml:"telegram_token"`
	TelegramChatID   int64    `yaml:"telegram_chat_id"`
	BroadcastSymbols []string `yaml:"broadcast_symbols"`

	// Server
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	// Pipeline defaults
	Range           string  `yaml:"range"`
	Interval        string  `yaml:"interval"`
	Indicator       string  `yaml:"indicator"`
	ForecastModel   string  `yaml:"forecast_model"`
	ForecastHorizon int     `yaml:"forecast_horizon"`
	InitialCapital  float64 `yaml:"initial_capital"`
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	TakeProfitPct   float64 `yaml:"take_profit_pct"`
}

// Default returns the configuration used when neither a file nor the environment sets a value
func Default() *Config {
	opts := model.DefaultOptions()
	return &Config{
		HistoryProvider:   "yahoo",
		NewsLimit:         10,
		RequestTimeout:    30,
		RequestsPerSec:    5,
		MaxRetries:        3,
		SyntheticFallback: true,
		ProfileCacheTTL:   60,
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		Range:             opts.Range,
		Interval:          opts.Interval,
		Indicator:         string(opts.Indicator),
		ForecastModel:     string(opts.ForecastModel),
		ForecastHorizon:   opts.ForecastHorizon,
		InitialCapital:    opts.InitialCapital,
		StopLossPct:       opts.StopLossPct,
		TakeProfitPct:     opts.TakeProfitPct,
	}
}

// Load initializes configuration from defaults, an optional YAML file named by
// CONFIG_PATH and finally environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HistoryProvider = getEnvWithDefault("HISTORY_PROVIDER", c.HistoryProvider)
	c.TwelveAPIKey = getEnvWithDefault("TWELVE_API_KEY", c.TwelveAPIKey)
	c.TwelveBaseURL = getEnvWithDefault("TWELVE_BASE_URL", c.TwelveBaseURL)
	c.NewsBaseURL = getEnvWithDefault("NEWS_BASE_URL", c.NewsBaseURL)
	c.NewsLimit = getEnvIntWithDefault("NEWS_LIMIT", c.NewsLimit)
	c.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", c.RequestsPerSec)
	c.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", c.MaxRetries)
	c.SyntheticFallback = getEnvBoolWithDefault("SYNTHETIC_FALLBACK", c.SyntheticFallback)
	c.DatabaseURL = getEnvWithDefault("DATABASE_URL", c.DatabaseURL)
	c.ProfileCacheTTL = getEnvIntWithDefault("PROFILE_CACHE_TTL", c.ProfileCacheTTL)
	c.TelegramToken = getEnvWithDefault("TELEGRAM_BOT_TOKEN", c.TelegramToken)
	c.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", c.TelegramChatID)
	if v := os.Getenv("BROADCAST_SYMBOLS"); v != "" {
		c.BroadcastSymbols = splitList(v)
	}
	c.HTTPAddr = getEnvWithDefault("HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnvWithDefault("LOG_LEVEL", c.LogLevel)

	c.Range = getEnvWithDefault("RANGE", c.Range)
	c.Interval = getEnvWithDefault("INTERVAL", c.Interval)
	c.Indicator = getEnvWithDefault("INDICATOR", c.Indicator)
	c.ForecastModel = getEnvWithDefault("FORECAST_MODEL", c.ForecastModel)
	c.ForecastHorizon = getEnvIntWithDefault("FORECAST_HORIZON", c.ForecastHorizon)
	c.InitialCapital = getEnvFloatWithDefault("INITIAL_CAPITAL", c.InitialCapital)
	c.StopLossPct = getEnvFloatWithDefault("STOP_LOSS_PCT", c.StopLossPct)
	c.TakeProfitPct = getEnvFloatWithDefault("TAKE_PROFIT_PCT", c.TakeProfitPct)
}

// Validate checks the pipeline defaults and provider selection
func (c *Config) Validate() error {
	switch c.HistoryProvider {
	case "yahoo":
	case "twelvedata":
		if c.TwelveAPIKey == "" {
			return fmt.Errorf("twelve_api_key is required for the twelvedata history provider")
		}
	default:
		return fmt.Errorf("unknown history provider %q", c.HistoryProvider)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive")
	}
	if c.ForecastHorizon < 0 {
		return fmt.Errorf("forecast_horizon must not be negative")
	}
	if c.StopLossPct < 0 || c.TakeProfitPct < 0 || !model.IsFinite(c.StopLossPct) || !model.IsFinite(c.TakeProfitPct) {
		return fmt.Errorf("stop_loss_pct and take_profit_pct must be finite and not negative")
	}
	if _, ok := model.RangeDays(c.Range); !ok {
		return fmt.Errorf("unsupported range %q", c.Range)
	}
	if !model.ValidInterval(c.Interval) {
		return fmt.Errorf("unsupported interval %q", c.Interval)
	}
	if !model.Indicator(strings.ToLower(c.Indicator)).Valid() {
		return fmt.Errorf("unknown indicator %q", c.Indicator)
	}
	if !model.ForecastModel(strings.ToLower(c.ForecastModel)).Valid() {
		return fmt.Errorf("unknown forecast model %q", c.ForecastModel)
	}
	return nil
}

// Options returns the pipeline defaults as request options
func (c *Config) Options() model.Options {
	return model.Options{
		Range:           c.Range,
		Interval:        c.Interval,
		Indicator:       model.Indicator(strings.ToLower(c.Indicator)),
		ForecastModel:   model.ForecastModel(strings.ToLower(c.ForecastModel)),
		ForecastHorizon: c.ForecastHorizon,
		InitialCapital:  c.InitialCapital,
		StopLossPct:     c.StopLossPct,
		TakeProfitPct:   c.TakeProfitPct,
	}
}

// Timeout returns RequestTimeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// CacheTTL returns ProfileCacheTTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.ProfileCacheTTL) * time.Minute
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
