// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// BookingConfig provides settings for the casting workflow.
type BookingConfig interface {
	GetAdminRole() string
	GetThreadLockTTL() time.Duration
}

// SlackConfig provides settings for the messaging adapter.
type SlackConfig interface {
	GetSlackBotToken() string
	GetSlackChannelID() string
	GetSlackMentionGroupID() string
	IsSlackEnabled() bool
}

// CalendarConfig provides settings for the calendar hold adapter.
type CalendarConfig interface {
	GetGoogleServiceAccountKey() string
	GetGoogleCalendarID() string
	GetCalendarRequestsPerMinute() int
	GetCalendarTimeZone() string
	IsCalendarEnabled() bool
}

// NotionConfig provides settings for the project tracker adapter.
type NotionConfig interface {
	GetNotionToken() string
	IsNotionEnabled() bool
}

// SchedulerConfig provides settings for the background job queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetReconcileSchedule() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketOrderDocuments() string
	IsMinIOEnabled() bool
}

// EmailConfig provides settings for SMTP delivery.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsEmailEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                      string
	HTTPAddr                 string
	DatabaseURL              string
	JWTAccessSecret          string
	AdminRole                string
	CORSAllowAll             bool
	CORSOrigins              []string
	CORSAllowCreds           bool
	SlackBotToken            string
	SlackChannelID           string
	SlackMentionGroupID      string
	GoogleServiceAccountKey  string
	GoogleCalendarID         string
	CalendarRequestsPerMin   int
	CalendarTimeZone         string
	NotionToken              string
	RedisURL                 string
	RedisTLSInsecure         bool
	AsynqQueueName           string
	AsynqConcurrency         int
	ReconcileSchedule        string
	ThreadLockTTL            time.Duration
	MinIOEndpoint            string
	MinIOAccessKey           string
	MinIOSecretKey           string
	MinIOUseSSL              bool
	MinIOMaxFileSize         int64
	MinioBucketOrderDocument string
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	EmailFromName            string
	EmailFromAddress         string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// BookingConfig implementation
func (c *Config) GetAdminRole() string            { return c.AdminRole }
func (c *Config) GetThreadLockTTL() time.Duration { return c.ThreadLockTTL }

// SlackConfig implementation
func (c *Config) GetSlackBotToken() string       { return c.SlackBotToken }
func (c *Config) GetSlackChannelID() string      { return c.SlackChannelID }
func (c *Config) GetSlackMentionGroupID() string { return c.SlackMentionGroupID }
func (c *Config) IsSlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

// CalendarConfig implementation
func (c *Config) GetGoogleServiceAccountKey() string { return c.GoogleServiceAccountKey }
func (c *Config) GetGoogleCalendarID() string        { return c.GoogleCalendarID }
func (c *Config) GetCalendarRequestsPerMinute() int  { return c.CalendarRequestsPerMin }
func (c *Config) GetCalendarTimeZone() string        { return c.CalendarTimeZone }
func (c *Config) IsCalendarEnabled() bool {
	return c.GoogleServiceAccountKey != "" && c.GoogleCalendarID != ""
}

// NotionConfig implementation
func (c *Config) GetNotionToken() string { return c.NotionToken }
func (c *Config) IsNotionEnabled() bool  { return c.NotionToken != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) GetReconcileSchedule() string { return c.ReconcileSchedule }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketOrderDocuments() string {
	return c.MinioBucketOrderDocument
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// EmailConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsEmailEnabled() bool        { return c.SMTPHost != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		AdminRole:                getEnv("ADMIN_ROLE", "admin"),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		SlackBotToken:            strings.TrimSpace(getEnv("SLACK_BOT_TOKEN", "")),
		SlackChannelID:           strings.TrimSpace(getEnv("SLACK_CHANNEL_INTERNAL", "")),
		SlackMentionGroupID:      strings.TrimSpace(getEnv("SLACK_MENTION_GROUP_ID", "")),
		GoogleServiceAccountKey:  strings.TrimSpace(getEnv("GOOGLE_SERVICE_ACCOUNT_KEY", "")),
		GoogleCalendarID:         strings.TrimSpace(getEnv("GOOGLE_CALENDAR_ID", "")),
		CalendarRequestsPerMin:   mustInt(getEnv("CALENDAR_REQUESTS_PER_MINUTE", "120")),
		CalendarTimeZone:         getEnv("CALENDAR_TIME_ZONE", "Asia/Tokyo"),
		NotionToken:              strings.TrimSpace(getEnv("NOTION_TOKEN", "")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		RedisTLSInsecure:         strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:           getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:         mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		ReconcileSchedule:        getEnv("RECONCILE_SCHEDULE", "@every 1h"),
		ThreadLockTTL:            mustDuration(getEnv("THREAD_LOCK_TTL", "30s")),
		MinIOEndpoint:            getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:           getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:           getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:              strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:         mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "20971520")),
		MinioBucketOrderDocument: getEnv("MINIO_BUCKET_ORDER_DOCUMENTS", "order-documents"),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:             getEnv("SMTP_USERNAME", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		EmailFromName:            getEnv("SMTP_FROM_NAME", "Casting Desk"),
		EmailFromAddress:         getEnv("SMTP_FROM_ADDRESS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.IsEmailEnabled() && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("SMTP_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.CalendarRequestsPerMin <= 0 {
		cfg.CalendarRequestsPerMin = 120
	}
	if cfg.ThreadLockTTL <= 0 {
		cfg.ThreadLockTTL = 30 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
