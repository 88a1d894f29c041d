package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	keys := []string{
		"DATABASE_URL", "LOG_LEVEL", "ENVIRONMENT", "DEBUG", "TIMEZONE", "CRON_SPEC_DAILY_SCAN",
		"SCAN_OFFSET", "EMAIL_FILE_PATH", "EMAIL_FROM", "SMTP_HOST", "SMTP_PORT", "SMTP_USER",
		"SMTP_PASS", "SMTP_TIMEOUT", "TELEGRAM_TOKEN", "ALERT_TELEGRAM_CHAT_ID",
	}
	for _, k := range keys {
		t.Setenv(k, kv[k])
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/reserver"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "Europe/Oslo", cfg.Timezone)
	assert.Equal(t, "0 8 * * *", cfg.CronSpecDaily)
	assert.Equal(t, time.Duration(0), cfg.ScanOffset)
	assert.Equal(t, DefaultFromAddress, cfg.EmailFrom)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 30*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, "Europe/Oslo", cfg.Location().String())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setEnv(t, nil)

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is not set")
}

func TestLoad_ProductionRequiresSMTPHost(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/reserver",
		"ENVIRONMENT":  "production",
	})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")
}

func TestLoad_ProductionDisablesDebug(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/reserver",
		"ENVIRONMENT":  "production",
		"SMTP_HOST":    "smtp.example.org",
		"SMTP_PORT":    "2525",
		"SCAN_OFFSET":  "1h",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, time.Hour, cfg.ScanOffset)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"debug":        {"DEBUG": "maybe"},
		"timezone":     {"TIMEZONE": "Mars/Olympus"},
		"scan offset":  {"SCAN_OFFSET": "soon"},
		"smtp port":    {"SMTP_PORT": "abc"},
		"alert chat":   {"TELEGRAM_TOKEN": "tok"},
		"alert chatid": {"TELEGRAM_TOKEN": "tok", "ALERT_TELEGRAM_CHAT_ID": "x"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			env["DATABASE_URL"] = "postgres://localhost/reserver"
			setEnv(t, env)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
