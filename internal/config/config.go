package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAppName        = "SmartFinance"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultAccessTTL      = 30 * time.Minute
	defaultRefreshTTL     = 7 * 24 * time.Hour
	defaultGeminiModel    = "gemini-1.5-flash"
	defaultGenAITimeout   = 8 * time.Second
	defaultNudgeInterval  = 180 * time.Minute
	defaultNudgeCooldown  = 30 * time.Minute
	defaultNudgeLookback  = 7 * 24 * time.Hour
	devJWTSecret          = "dev-only-secret-change-me"
)

// Config captures application runtime configuration.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	DBMaxConns     int32
	DBConnLifetime time.Duration
	RedisURL       string
	AutoMigrate    bool
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	LoginRateLimit  int

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GenAITimeout  time.Duration

	NudgeEnabled  bool
	NudgeInterval time.Duration
	NudgeCooldown time.Duration
	NudgeLookback time.Duration

	ClassifierModelPath string
}

// Load reads configuration with the following priority:
//  1. environment variables (DATABASE_URL, REDIS_URL, ...)
//  2. config.yaml in the working directory or /etc/smartfinance
//  3. built-in defaults
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/smartfinance")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		AppName:             v.GetString("app_name"),
		AppEnv:              v.GetString("app_env"),
		Port:                v.GetString("port"),
		LogLevel:            strings.ToLower(v.GetString("log_level")),
		DatabaseURL:         v.GetString("database_url"),
		DBMaxConns:          v.GetInt32("db_max_conns"),
		DBConnLifetime:      v.GetDuration("db_conn_lifetime"),
		RedisURL:            v.GetString("redis_url"),
		AutoMigrate:         v.GetBool("auto_migrate"),
		ShutdownPeriod:      v.GetDuration("shutdown_timeout"),
		IdempotencyTTL:      v.GetDuration("idempotency_ttl"),
		JWTSecret:           v.GetString("jwt_secret"),
		RefreshSecret:       v.GetString("jwt_refresh_secret"),
		AccessTokenTTL:      v.GetDuration("access_token_ttl"),
		RefreshTokenTTL:     v.GetDuration("refresh_token_ttl"),
		LoginRateLimit:      v.GetInt("login_rate_limit"),
		GeminiAPIKey:        v.GetString("gemini_api_key"),
		GeminiModel:         v.GetString("gemini_model"),
		GeminiBaseURL:       v.GetString("gemini_base_url"),
		GenAITimeout:        v.GetDuration("genai_timeout"),
		NudgeEnabled:        v.GetBool("nudge_enabled"),
		NudgeInterval:       v.GetDuration("nudge_interval"),
		NudgeCooldown:       v.GetDuration("nudge_cooldown"),
		NudgeLookback:       v.GetDuration("nudge_lookback"),
		ClassifierModelPath: v.GetString("classifier_model_path"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", defaultAppName)
	v.SetDefault("app_env", defaultAppEnv)
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_conn_lifetime", time.Hour)
	v.SetDefault("redis_url", "")
	v.SetDefault("auto_migrate", false)
	v.SetDefault("shutdown_timeout", defaultShutdownDelay)
	v.SetDefault("idempotency_ttl", defaultIdempotencyTTL)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_refresh_secret", "")
	v.SetDefault("access_token_ttl", defaultAccessTTL)
	v.SetDefault("refresh_token_ttl", defaultRefreshTTL)
	v.SetDefault("login_rate_limit", 5)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", defaultGeminiModel)
	v.SetDefault("gemini_base_url", "")
	v.SetDefault("genai_timeout", defaultGenAITimeout)
	v.SetDefault("nudge_enabled", true)
	v.SetDefault("nudge_interval", defaultNudgeInterval)
	v.SetDefault("nudge_cooldown", defaultNudgeCooldown)
	v.SetDefault("nudge_lookback", defaultNudgeLookback)
	v.SetDefault("classifier_model_path", "")
}

func (c *Config) validate() error {
	if c.IsDev() {
		if c.JWTSecret == "" {
			c.JWTSecret = devJWTSecret
		}
	} else {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", c.AppEnv)
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", c.AppEnv)
		}
	}
	if c.RefreshSecret == "" {
		c.RefreshSecret = c.JWTSecret
	}
	if c.NudgeInterval <= 0 {
		return fmt.Errorf("NUDGE_INTERVAL must be positive")
	}
	if c.GenAITimeout <= 0 {
		return fmt.Errorf("GENAI_TIMEOUT must be positive")
	}
	return nil
}

// IsDev reports whether the process runs in a local development environment,
// where Postgres and Redis are optional.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
