package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"salonq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SALONQ_TEST_SID", "AC123")
	t.Setenv("PORT", "")

	yamlContent := `
database:
  path: "test.db"
messaging:
  account_sid: "${SALONQ_TEST_SID}"
  auth_token: "token"
  from: "whatsapp:+14155238886"
api:
  http:
    port: ${PORT}
queue:
  advance_policy: priority
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "AC123", cfg.Messaging.AccountSID)
	assert.Equal(t, models.DefaultHTTPPort, cfg.API.HTTP.Port)
	assert.Equal(t, models.AdvancePolicyPriority, cfg.Queue.AdvancePolicy)
	assert.Equal(t, 20*time.Minute, cfg.Queue.ServiceDuration())
	assert.Equal(t, 15*time.Minute, cfg.Queue.NotificationThreshold())
	assert.Equal(t, models.DefaultRecalcSchedule, cfg.Queue.RecalcSchedule)
	assert.Equal(t, "x-admin-code", cfg.Admin.Header)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{Database: DatabaseConfig{Path: "path"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "zero threshold", mutate: func(c *Config) { zero := 0; c.Queue.NotificationThresholdMinutes = &zero }},
		{name: "negative threshold", mutate: func(c *Config) { n := -1; c.Queue.NotificationThresholdMinutes = &n }, wantErr: true},
		{name: "negative service duration", mutate: func(c *Config) { c.Queue.ServiceDurationMinutes = -5 }, wantErr: true},
		{name: "bad schedule", mutate: func(c *Config) { c.Queue.RecalcSchedule = "every two minutes" }, wantErr: true},
		{name: "unknown advance policy", mutate: func(c *Config) { c.Queue.AdvancePolicy = "random" }, wantErr: true},
		{name: "partial twilio credentials", mutate: func(c *Config) { c.Messaging.AccountSID = "AC1" }, wantErr: true},
		{
			name: "backup without storage path",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
			},
			wantErr: true,
		},
		{
			name: "backup configured",
			mutate: func(c *Config) {
				c.Backup.Enabled = true
				c.Backup.StoragePath = "backups"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigZeroThreshold(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
database:
  path: "test.db"
queue:
  notification_threshold_minutes: 0
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg.Queue.NotificationThresholdMinutes)
	assert.Equal(t, 0, *cfg.Queue.NotificationThresholdMinutes)
	assert.Equal(t, time.Duration(0), cfg.Queue.NotificationThreshold())
}

func TestNotificationThresholdDefault(t *testing.T) {
	assert.Equal(t, 15*time.Minute, QueueConfig{}.NotificationThreshold())
}
