package internal

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// BackendConfig locates the advisory backend
type BackendConfig struct {
	URL            string        `yaml:"url" env:"EEBC_BACKEND_URL" validate:"required,url,startswith=http"`
	ChatPath       string        `yaml:"chat_path" env:"EEBC_CHAT_PATH" validate:"required,startswith=/"`
	HealthPath     string        `yaml:"health_path" env:"EEBC_HEALTH_PATH" validate:"required,startswith=/"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"EEBC_REQUEST_TIMEOUT" validate:"gte=0s"`
}

// UIConfig holds chat surface settings
type UIConfig struct {
	NotificationTimeout time.Duration `yaml:"notification_timeout" env:"EEBC_NOTIFICATION_TIMEOUT" validate:"gte=0s"`
	Markdown            bool          `yaml:"markdown" env:"EEBC_MARKDOWN"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `yaml:"level" env:"EEBC_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	File  string `yaml:"file" env:"EEBC_LOG_FILE"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"EEBC_METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// Config is the full client configuration
type Config struct {
	Backend BackendConfig     `yaml:"backend"`
	UI      UIConfig          `yaml:"ui"`
	Logging LoggingConfig     `yaml:"logging"`
	Metrics MetricsConfig     `yaml:"metrics"`
	Context map[string]string `yaml:"context"`
}

// DefaultConfigPath returns ~/.config/eebc-chat/config.yaml, or "" if the
// user config directory cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "eebc-chat", "config.yaml")
}

// LoadEnv loads a .env file from the working directory if one exists
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// LoadConfig reads the embedded defaults, merges the file at path on top
// when it exists and finally applies EEBC_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, &ConfigError{Path: "default.yaml", Err: err}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return nil, &ConfigError{Path: path, Err: err}
			}
			LogDebug("loaded config from %s", path)
		case os.IsNotExist(err):
			LogDebug("config file %s not found, using defaults", path)
		default:
			return nil, &ConfigError{Path: path, Err: err}
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &cfg, nil
}

// DefaultConfigBytes returns the embedded default configuration
func DefaultConfigBytes() []byte {
	return defaultConfig
}

// Validate checks field formats and the context preset keys
func (c *Config) Validate() error {
	var errs []error

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q check (value %q)", yamlPath(fe.Namespace()), fe.Tag(), fmt.Sprint(fe.Value())))
			}
		} else {
			errs = append(errs, err)
		}
	}

	for key := range c.Context {
		if _, ok := ParseContextField(key); !ok {
			errs = append(errs, fmt.Errorf("context.%s: %w", key, ErrUnknownField))
		}
	}

	if len(errs) > 0 {
		return &ConfigError{Err: errors.Join(errs...)}
	}
	return nil
}

// RequestTimeout returns the transport timeout, 0 meaning none
func (c *Config) RequestTimeout() time.Duration {
	if c.Backend.RequestTimeout < 0 {
		return 0
	}
	return c.Backend.RequestTimeout
}

// NotificationTimeout returns the dismissal interval, falling back to
// DefaultNotificationTimeout when unset.
func (c *Config) NotificationTimeout() time.Duration {
	if c.UI.NotificationTimeout <= 0 {
		return DefaultNotificationTimeout
	}
	return c.UI.NotificationTimeout
}

// ApplyContext copies the non-empty context presets into form
func (c *Config) ApplyContext(form *BuildingForm) {
	for key, value := range c.Context {
		field, ok := ParseContextField(key)
		if !ok || value == "" {
			continue
		}
		_ = form.Set(field, value)
	}
}

// yamlPath drops the root type from a validator namespace:
// "Config.backend.url" becomes "backend.url"
func yamlPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
