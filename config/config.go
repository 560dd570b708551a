package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string `mapstructure:"APP_ENV"`
	Port   string `mapstructure:"PORT"`

	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBName         string `mapstructure:"DB_NAME"`
	DBTimezone     string `mapstructure:"DB_TIMEZONE"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionTimeout    time.Duration `mapstructure:"SESSION_TIMEOUT"`

	// MaxLoginAttempts of zero disables account lockout.
	MaxLoginAttempts int           `mapstructure:"MAX_LOGIN_ATTEMPTS"`
	LockoutDuration  time.Duration `mapstructure:"LOCKOUT_DURATION"`

	OverviewDemoFallback bool     `mapstructure:"OVERVIEW_DEMO_FALLBACK"`
	DebugSQL             bool     `mapstructure:"DEBUG_SQL"`
	CORSOrigins          []string `mapstructure:"CORS_ORIGINS"`
	LogLevel             string   `mapstructure:"LOG_LEVEL"`
}

var keys = []string{
	"APP_ENV", "PORT",
	"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "DB_TIMEZONE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"SESSION_SECRET", "SESSION_COOKIE_NAME", "SESSION_TIMEOUT",
	"MAX_LOGIN_ATTEMPTS", "LOCKOUT_DURATION",
	"OVERVIEW_DEMO_FALLBACK", "DEBUG_SQL", "CORS_ORIGINS", "LOG_LEVEL",
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// LoadConfig loads the configuration once and returns the shared instance.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg(".env file not found, relying on environment variables")
		}
		cfg, loadErr = Load()
	})
	return cfg, loadErr
}

// Load reads the process environment into a fresh Config.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "hospital_management")
	v.SetDefault("DB_TIMEZONE", "Local")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_COOKIE_NAME", "hospital_session")
	v.SetDefault("SESSION_TIMEOUT", "2h")
	v.SetDefault("MAX_LOGIN_ATTEMPTS", 0)
	v.SetDefault("LOCKOUT_DURATION", "15m")
	v.SetDefault("OVERVIEW_DEMO_FALLBACK", false)
	v.SetDefault("DEBUG_SQL", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(c.CORSOrigins) == 1 && strings.Contains(c.CORSOrigins[0], ",") {
		c.CORSOrigins = strings.Split(c.CORSOrigins[0], ",")
	}
	for i := range c.CORSOrigins {
		c.CORSOrigins[i] = strings.TrimSpace(c.CORSOrigins[i])
	}

	if c.SessionSecret == "" && c.IsDev() {
		c.SessionSecret = "development-session-secret-change-me"
		log.Warn().Msg("SESSION_SECRET not set, using the development default")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "development"
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive, got %s", c.SessionTimeout)
	}
	if c.MaxLoginAttempts < 0 {
		return fmt.Errorf("MAX_LOGIN_ATTEMPTS must not be negative")
	}
	if c.MaxLoginAttempts > 0 && c.LockoutDuration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION must be positive when MAX_LOGIN_ATTEMPTS is set")
	}
	return nil
}
