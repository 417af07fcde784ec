// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Flow    FlowConfig    `mapstructure:"flow" yaml:"flow"`
	Webhook WebhookConfig `mapstructure:"webhook" yaml:"webhook"`
}

// LoggerConfig controls the zap logger and optional rotating log file.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal colors for the console encoder.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls the Chrome process and the pacing of browser actions.
type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless" yaml:"headless"`
	Proxy           string        `mapstructure:"proxy" yaml:"proxy"`
	UserAgent       string        `mapstructure:"user_agent" yaml:"user_agent"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ActionTimeout   time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	SettleWait      time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	Args            []string      `mapstructure:"args" yaml:"args"`
}

// SessionConfig identifies the profile sandbox and the extension payload.
type SessionConfig struct {
	Name          string `mapstructure:"name" yaml:"name"`
	ExtensionPath string `mapstructure:"extension_path" yaml:"extension_path"`
	Identifier    string `mapstructure:"identifier" yaml:"identifier"`
}

// FlowConfig carries flow-level parameters shared across the catalog.
type FlowConfig struct {
	Password        string        `mapstructure:"password" yaml:"password"`
	Dev             bool          `mapstructure:"dev" yaml:"dev"`
	IdleLockMinutes int           `mapstructure:"idle_lock_minutes" yaml:"idle_lock_minutes"`
	IdleLockGrace   time.Duration `mapstructure:"idle_lock_grace" yaml:"idle_lock_grace"`
	InspectDelay    time.Duration `mapstructure:"inspect_delay" yaml:"inspect_delay"`
	AttemptInterval time.Duration `mapstructure:"attempt_interval" yaml:"attempt_interval"`
}

// WebhookConfig points at the optional collaborator endpoint.
type WebhookConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
}

// MetaMask's production identifier; overridable for other extensions.
const DefaultExtensionIdentifier = "nkbihfbeogaeaoehlefnkodbefgpgknn"

// SetDefaults registers every configuration default on the given viper instance.
// Defaults must be registered before unmarshalling so that flag and env overrides
// keep the right precedence.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "extflow")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// Extension UIs do not render in headless mode on older Chrome builds, and a
	// visible window doubles as the inspection aid on failures.
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.ignore_tls_errors", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("browser.action_timeout", 30*time.Second)
	v.SetDefault("browser.settle_wait", 2*time.Second)

	v.SetDefault("session.identifier", DefaultExtensionIdentifier)

	v.SetDefault("flow.password", "Password123!")
	v.SetDefault("flow.idle_lock_minutes", 2)
	v.SetDefault("flow.idle_lock_grace", 5*time.Second)
	v.SetDefault("flow.inspect_delay", 5*time.Second)
	v.SetDefault("flow.attempt_interval", 500*time.Millisecond)

	v.SetDefault("webhook.poll_interval", 2*time.Second)
	v.SetDefault("webhook.poll_timeout", 30*time.Second)
}

// NewDefaultConfig returns a Config populated with the registered defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Unmarshalling registered defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// NewConfigFromViper unmarshals and validates the configuration from the given
// viper instance. The instance is expected to have defaults, config file and
// environment bindings already applied.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be \"console\" or \"json\", got %q", c.Logger.Format))
	}

	if c.Browser.ActionTimeout <= 0 {
		errs = append(errs, errors.New("browser.action_timeout must be a positive duration"))
	}
	if c.Browser.SettleWait < 0 {
		errs = append(errs, errors.New("browser.settle_wait must not be negative"))
	}

	if c.Session.Identifier == "" {
		errs = append(errs, errors.New("session.identifier must not be empty"))
	}

	if c.Flow.IdleLockMinutes <= 0 {
		errs = append(errs, errors.New("flow.idle_lock_minutes must be greater than 0"))
	}
	if c.Flow.IdleLockGrace < 0 {
		errs = append(errs, errors.New("flow.idle_lock_grace must not be negative"))
	}
	if c.Flow.AttemptInterval <= 0 {
		errs = append(errs, errors.New("flow.attempt_interval must be a positive duration"))
	}

	if c.Webhook.URL != "" && c.Webhook.PollInterval <= 0 {
		errs = append(errs, errors.New("webhook.poll_interval must be a positive duration"))
	}

	return errors.Join(errs...)
}
