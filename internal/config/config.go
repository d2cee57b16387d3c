package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Scheduler    SchedulerConfig
	Logging      LoggingConfig
	Business     BusinessConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Health       HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SchedulerConfig struct {
	ContributionReminderSpec string
	LoanReminderSpec         string
	Timezone                 string
	ReminderLeadDays         int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	ExcellentThreshold float64
	GoodThreshold      float64
	LeaderboardTTL     time.Duration
	TrialDays          int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type NotificationConfig struct {
	Enabled    bool
	SMSBaseURL string
	SMSAPIKey  string
	SMSSender  string
	Timeout    time.Duration
}

type HealthConfig struct {
	Timeout time.Duration
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetString("DATABASE_PORT"),
			Name:            v.GetString("DATABASE_NAME"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Scheduler: SchedulerConfig{
			ContributionReminderSpec: v.GetString("SCHEDULER_CONTRIBUTION_REMINDER_SPEC"),
			LoanReminderSpec:         v.GetString("SCHEDULER_LOAN_REMINDER_SPEC"),
			Timezone:                 v.GetString("SCHEDULER_TIMEZONE"),
			ReminderLeadDays:         v.GetInt("SCHEDULER_REMINDER_LEAD_DAYS"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			ExcellentThreshold: v.GetFloat64("PERFORMANCE_EXCELLENT_THRESHOLD"),
			GoodThreshold:      v.GetFloat64("PERFORMANCE_GOOD_THRESHOLD"),
			LeaderboardTTL:     v.GetDuration("LEADERBOARD_CACHE_TTL"),
			TrialDays:          v.GetInt("SUBSCRIPTION_TRIAL_DAYS"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
		Notification: NotificationConfig{
			Enabled:    v.GetBool("NOTIFICATIONS_ENABLED"),
			SMSBaseURL: v.GetString("SMS_BASE_URL"),
			SMSAPIKey:  v.GetString("SMS_API_KEY"),
			SMSSender:  v.GetString("SMS_SENDER_ID"),
			Timeout:    v.GetDuration("SMS_TIMEOUT"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "chama_vault")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SCHEDULER_CONTRIBUTION_REMINDER_SPEC", "0 0 8 * * *")
	v.SetDefault("SCHEDULER_LOAN_REMINDER_SPEC", "0 30 8 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Africa/Nairobi")
	v.SetDefault("SCHEDULER_REMINDER_LEAD_DAYS", 2)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("PERFORMANCE_EXCELLENT_THRESHOLD", 80)
	v.SetDefault("PERFORMANCE_GOOD_THRESHOLD", 60)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "5m")
	v.SetDefault("SUBSCRIPTION_TRIAL_DAYS", 30)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("NOTIFICATIONS_ENABLED", false)
	v.SetDefault("SMS_TIMEOUT", "10s")
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be a positive duration")
	}

	if c.Business.GoodThreshold <= 0 || c.Business.ExcellentThreshold <= c.Business.GoodThreshold || c.Business.ExcellentThreshold > 100 {
		return fmt.Errorf("performance thresholds must satisfy 0 < good < excellent <= 100")
	}

	if c.Scheduler.ReminderLeadDays < 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_LEAD_DAYS must not be negative")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err)
	}

	if c.Notification.Enabled && c.Notification.SMSBaseURL == "" {
		return fmt.Errorf("SMS_BASE_URL is required when notifications are enabled")
	}

	return nil
}

// DSN returns the Postgres connection string, preferring DATABASE_URL
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Addr returns host:port for the redis client
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}
