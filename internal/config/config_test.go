// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.Browser.Headless, "extension UIs need a headed browser by default")
	assert.Equal(t, 30*time.Second, cfg.Browser.ActionTimeout)
	assert.Equal(t, 2*time.Second, cfg.Browser.SettleWait)
	assert.Equal(t, DefaultExtensionIdentifier, cfg.Session.Identifier)
	assert.Equal(t, "Password123!", cfg.Flow.Password)
	assert.Equal(t, 2, cfg.Flow.IdleLockMinutes)
	assert.Equal(t, 500*time.Millisecond, cfg.Flow.AttemptInterval)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Valid Defaults", func(t *testing.T) {
		assert.NoError(t, NewDefaultConfig().Validate())
	})

	t.Run("Invalid Logger Format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Logger.Format = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger.format")
	})

	t.Run("Invalid Action Timeout", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Browser.ActionTimeout = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.action_timeout must be a positive duration")
	})

	t.Run("Invalid Idle Lock Minutes", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Flow.IdleLockMinutes = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flow.idle_lock_minutes must be greater than 0")
	})

	t.Run("Webhook Poll Interval Only Checked When Configured", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Webhook.PollInterval = 0
		assert.NoError(t, cfg.Validate(), "unset webhook URL should skip poll interval validation")

		cfg.Webhook.URL = "https://webhook.example"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "webhook.poll_interval")
	})

	t.Run("Joined Errors", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Session.Identifier = ""
		cfg.Flow.AttemptInterval = -time.Second
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session.identifier")
		assert.Contains(t, err.Error(), "flow.attempt_interval")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
session:
  name: my_session
  extension_path: ./dist
browser:
  headless: true
  settle_wait: 1s
flow:
  password: "Hunter2!"
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "my_session", cfg.Session.Name)
		assert.Equal(t, "./dist", cfg.Session.ExtensionPath)
		assert.True(t, cfg.Browser.Headless)
		assert.Equal(t, time.Second, cfg.Browser.SettleWait)
		assert.Equal(t, "Hunter2!", cfg.Flow.Password)
		// Check a default value was also loaded.
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("flow.idle_lock_minutes", 0) // Intentionally invalid

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("Environment Variable Override", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetEnvPrefix("EXTFLOW")
		v.AutomaticEnv()

		t.Setenv("EXTFLOW_FLOW_PASSWORD", "FromEnv123!")
		v.MustBindEnv("flow.password", "EXTFLOW_FLOW_PASSWORD")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "FromEnv123!", cfg.Flow.Password)
	})
}
