// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Channels ChannelsConfig `mapstructure:"channels"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings (SSE/status and metrics).
type ServerConfig struct {
	ListenAddress        string `mapstructure:"listen_address"`
	MetricsListenAddress string `mapstructure:"metrics_listen_address"`
	ShutdownTimeout      int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// DispatchConfig holds the queue and worker pool settings.
type DispatchConfig struct {
	Workers              int  `mapstructure:"workers"`
	MaxAttempts          int  `mapstructure:"max_attempts"`
	BaseRetryDelay       int  `mapstructure:"base_retry_delay"` // milliseconds
	MaxRetryDelay        int  `mapstructure:"max_retry_delay"`  // milliseconds
	AttemptTimeout       int  `mapstructure:"attempt_timeout"`  // milliseconds
	IdempotencyTTL       int  `mapstructure:"idempotency_ttl"`  // milliseconds, 0 = no expiry
	AllowDeliveryOverride bool `mapstructure:"allow_delivery_override"`
}

// ChannelsConfig holds per-channel adapter settings.
type ChannelsConfig struct {
	Webhook WebhookChannelConfig `mapstructure:"webhook"`
	SSE     SSEChannelConfig     `mapstructure:"sse"`
	Email   EmailChannelConfig   `mapstructure:"email"`
	SMS     SMSChannelConfig     `mapstructure:"sms"`
}

type WebhookChannelConfig struct {
	Timeout       int    `mapstructure:"timeout"` // milliseconds
	SigningSecret string `mapstructure:"signing_secret"`
	UserAgent     string `mapstructure:"user_agent"`
}

type SSEChannelConfig struct {
	EventBuffer       int `mapstructure:"event_buffer"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"` // milliseconds
}

// EmailChannelConfig configures the email adapter. When Simulate is set the
// adapter never talks to SES and reports SimulateOutcome instead.
type EmailChannelConfig struct {
	Simulate        bool   `mapstructure:"simulate"`
	SimulateOutcome string `mapstructure:"simulate_outcome"` // "success" or "permanent_failure"
	Region          string `mapstructure:"region"`
	FromEmail       string `mapstructure:"from_email"`
}

type SMSChannelConfig struct {
	Simulate        bool   `mapstructure:"simulate"`
	SimulateOutcome string `mapstructure:"simulate_outcome"`
	Region          string `mapstructure:"region"`
	SenderID        string `mapstructure:"sender_id"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	Index      string   `mapstructure:"index"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
