package config

import (
	"fmt"
	"strings"
	"time"

	"committee-notifier/internal/logger"
	"committee-notifier/internal/timeutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	MongoURI string
	MongoDB  string

	// Job
	Schedule        string
	Timezone        string
	JobTimeout      time.Duration
	Locale          string
	MailSubject     string
	SendConcurrency int

	SMTP    SMTPConfig
	Archive ArchiveConfig

	// Caller surfaces
	HTTPPort           int
	JWTSecret          string
	CorsAllowedOrigins []string
	TelegramToken      string
	ChatID             int64

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// SMTPConfig holds the mail relay settings. Username and Password are the
// sender credentials and must come from the deployment environment.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender returns the From address, falling back to the login name.
func (s SMTPConfig) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

// ArchiveConfig points at an S3-compatible bucket for rendered notices.
// An empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether notices should be archived.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load loads configuration from .env, an optional configs/config.yaml and
// environment variables, in increasing priority.
func Load() (*Config, error) {
	log := logger.WithComponent("config")
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")
	v.AutomaticEnv()
	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Debug().Msg("No config file found, using environment and defaults")
	}

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MONGODB_DB", "committee")
	v.SetDefault("SCHEDULE", "0 9 20 * *")
	v.SetDefault("TIMEZONE", "Asia/Jerusalem")
	v.SetDefault("JOB_TIMEOUT", "5m")
	v.SetDefault("LOCALE", "en")
	v.SetDefault("MAIL_SUBJECT", "Committee debt summary")
	v.SetDefault("SEND_CONCURRENCY", 1)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("ARCHIVE_PREFIX", "notices")
	v.SetDefault("ARCHIVE_REGION", "auto")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_TIME_FORMAT", time.RFC3339)
	v.SetDefault("LOG_OUTPUT", "stdout")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		MongoURI:        v.GetString("MONGODB_URI"),
		MongoDB:         v.GetString("MONGODB_DB"),
		Schedule:        v.GetString("SCHEDULE"),
		Timezone:        v.GetString("TIMEZONE"),
		JobTimeout:      v.GetDuration("JOB_TIMEOUT"),
		Locale:          v.GetString("LOCALE"),
		MailSubject:     v.GetString("MAIL_SUBJECT"),
		SendConcurrency: v.GetInt("SEND_CONCURRENCY"),
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		Archive: ArchiveConfig{
			Bucket:    v.GetString("ARCHIVE_BUCKET"),
			Prefix:    v.GetString("ARCHIVE_PREFIX"),
			Endpoint:  v.GetString("ARCHIVE_ENDPOINT"),
			Region:    v.GetString("ARCHIVE_REGION"),
			AccessKey: v.GetString("ARCHIVE_ACCESS_KEY"),
			SecretKey: v.GetString("ARCHIVE_SECRET_KEY"),
		},
		HTTPPort:           v.GetInt("HTTP_PORT"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		CorsAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		TelegramToken:      v.GetString("TELEGRAM_BOT_TOKEN"),
		ChatID:             v.GetInt64("TELEGRAM_CHAT_ID"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		LogTimeFormat:      v.GetString("LOG_TIME_FORMAT"),
		LogOutput:          v.GetString("LOG_OUTPUT"),
	}
}

func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.MongoDB == "" {
		return fmt.Errorf("MONGODB_DB is required")
	}
	if _, err := timeutil.LoadZone(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive")
	}
	if c.SendConcurrency < 1 {
		return fmt.Errorf("SEND_CONCURRENCY must be at least 1")
	}
	if c.TelegramToken != "" && c.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// IsAuthorizedChat checks if a Telegram chat is the configured operator chat
func (c *Config) IsAuthorizedChat(chatID int64) bool {
	return c.ChatID != 0 && chatID == c.ChatID
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
