package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"salonq/internal/models"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Messaging  MessagingConfig  `yaml:"messaging"`
	Admin      AdminConfig      `yaml:"admin"`
	API        APIConfig        `yaml:"api"`
	Queue      QueueConfig      `yaml:"queue"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// MessagingConfig holds the Twilio WhatsApp credentials.
// Empty AccountSID switches the service to log-only notifications.
type MessagingConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
	MaxRetries int    `yaml:"max_retries"`
}

type AdminConfig struct {
	Header        string  `yaml:"header"`
	BootstrapCode string  `yaml:"bootstrap_code"`
	LoginRPS      float64 `yaml:"login_rps"`
	LoginBurst    int     `yaml:"login_burst"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig `yaml:"http"`
	StaticDir string        `yaml:"static_dir"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type QueueConfig struct {
	ServiceDurationMinutes int    `yaml:"service_duration_minutes"`
	RecalcSchedule         string `yaml:"recalc_schedule"`
	AdvancePolicy          string `yaml:"advance_policy"`
	NotifyClaimTTL         int    `yaml:"notify_claim_ttl"`
	// nil means the default; 0 notifies only the head of the queue
	NotificationThresholdMinutes *int `yaml:"notification_threshold_minutes"`
}

// ServiceDuration is the single source of the per-customer service time.
func (q QueueConfig) ServiceDuration() time.Duration {
	return time.Duration(q.ServiceDurationMinutes) * time.Minute
}

func (q QueueConfig) NotificationThreshold() time.Duration {
	minutes := models.DefaultNotificationThresholdMinutes
	if q.NotificationThresholdMinutes != nil {
		minutes = *q.NotificationThresholdMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func (q QueueConfig) ClaimTTL() time.Duration {
	return time.Duration(q.NotifyClaimTTL) * time.Second
}

type WebhookConfig struct {
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
}

func (w WebhookConfig) Window() time.Duration {
	return time.Duration(w.RateLimitWindow) * time.Second
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// ${VAR} references are resolved before parsing
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Queue.ServiceDurationMinutes <= 0 {
		return errors.New("queue.service_duration_minutes must be positive")
	}
	if t := c.Queue.NotificationThresholdMinutes; t != nil && *t < 0 {
		return errors.New("queue.notification_threshold_minutes must not be negative")
	}
	if _, err := cron.ParseStandard(c.Queue.RecalcSchedule); err != nil {
		return fmt.Errorf("invalid queue.recalc_schedule %q: %w", c.Queue.RecalcSchedule, err)
	}
	switch c.Queue.AdvancePolicy {
	case models.AdvancePolicyArrival, models.AdvancePolicyPriority:
	default:
		return fmt.Errorf("unknown queue.advance_policy %q", c.Queue.AdvancePolicy)
	}
	if c.Messaging.AccountSID != "" && (c.Messaging.AuthToken == "" || c.Messaging.From == "") {
		return errors.New("messaging.auth_token and messaging.from are required with account_sid")
	}
	if c.Backup.Enabled {
		if c.Backup.StoragePath == "" {
			return errors.New("backup.storage_path is required when backup is enabled")
		}
		if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
			return fmt.Errorf("invalid backup.schedule %q: %w", c.Backup.Schedule, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "salonq"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = models.DefaultHTTPPort
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Admin.Header == "" {
		c.Admin.Header = "x-admin-code"
	}
	if c.Admin.LoginRPS == 0 {
		c.Admin.LoginRPS = 0.2
	}
	if c.Admin.LoginBurst == 0 {
		c.Admin.LoginBurst = 5
	}
	if c.Messaging.MaxRetries == 0 {
		c.Messaging.MaxRetries = 2
	}

	// Queue defaults
	if c.Queue.ServiceDurationMinutes == 0 {
		c.Queue.ServiceDurationMinutes = models.DefaultServiceDurationMinutes
	}
	if c.Queue.NotificationThresholdMinutes == nil {
		threshold := models.DefaultNotificationThresholdMinutes
		c.Queue.NotificationThresholdMinutes = &threshold
	}
	if strings.TrimSpace(c.Queue.RecalcSchedule) == "" {
		c.Queue.RecalcSchedule = models.DefaultRecalcSchedule
	}
	if c.Queue.AdvancePolicy == "" {
		c.Queue.AdvancePolicy = models.AdvancePolicyArrival
	}
	if c.Queue.NotifyClaimTTL == 0 {
		c.Queue.NotifyClaimTTL = models.DefaultNotifyClaimTTL
	}

	if c.Webhook.RateLimitMessages == 0 {
		c.Webhook.RateLimitMessages = models.RateLimitMessages
	}
	if c.Webhook.RateLimitWindow == 0 {
		c.Webhook.RateLimitWindow = models.RateLimitWindow
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "0 3 * * *"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
