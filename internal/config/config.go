// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. LAS_DATABASE_URL.
const EnvPrefix = "LAS"

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port" envconfig:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins" envconfig:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level" envconfig:"level"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" envconfig:"format"` // json|console
	Sampling bool   `yaml:"sampling" envconfig:"sampling"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url" envconfig:"url"`
	MaxConns int32  `yaml:"max_conns" envconfig:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url" envconfig:"url"`
	Password string `yaml:"password" envconfig:"password"`
	DB       int    `yaml:"db" envconfig:"db"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret" envconfig:"jwt_secret"`
	CookieName   string        `yaml:"cookie_name" envconfig:"cookie_name"`
	CookieDomain string        `yaml:"cookie_domain" envconfig:"cookie_domain"`
	SecureCookie bool          `yaml:"secure_cookie" envconfig:"secure_cookie"`
	SessionTTL   time.Duration `yaml:"session_ttl" envconfig:"session_ttl"`
}

type RedemptionConfig struct {
	MaxAttempts   int           `yaml:"max_attempts" envconfig:"max_attempts"` // per user per window
	AttemptWindow time.Duration `yaml:"attempt_window" envconfig:"attempt_window"`
}

type SchedulerConfig struct {
	AuditInterval time.Duration `yaml:"audit_interval" envconfig:"audit_interval"`
}

type TelegramConfig struct {
	Token        string  `yaml:"token" envconfig:"token"`
	AdminChatIDs []int64 `yaml:"admin_chat_ids" envconfig:"admin_chat_ids"`
}

type I18nConfig struct {
	DefaultLang string `yaml:"default_lang" envconfig:"default_lang"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"server"`
	Log        LogConfig        `yaml:"log" envconfig:"log"`
	Database   DatabaseConfig   `yaml:"database" envconfig:"database"`
	Redis      RedisConfig      `yaml:"redis" envconfig:"redis"`
	Auth       AuthConfig       `yaml:"auth" envconfig:"auth"`
	Redemption RedemptionConfig `yaml:"redemption" envconfig:"redemption"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" envconfig:"scheduler"`
	Telegram   TelegramConfig   `yaml:"telegram" envconfig:"telegram"`
	I18n       I18nConfig       `yaml:"i18n" envconfig:"i18n"`
	Workers    int              `yaml:"workers" envconfig:"workers"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

// LoadConfig reads the YAML file at path (optional when every required value
// comes from the environment), applies LAS_* overrides, defaults, and checks
// required values.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "las_session"
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}
	if cfg.Redemption.MaxAttempts <= 0 {
		cfg.Redemption.MaxAttempts = 10
	}
	if cfg.Redemption.AttemptWindow <= 0 {
		cfg.Redemption.AttemptWindow = time.Minute
	}
	if cfg.Scheduler.AuditInterval <= 0 {
		cfg.Scheduler.AuditInterval = 5 * time.Minute
	}
	if cfg.I18n.DefaultLang == "" {
		cfg.I18n.DefaultLang = "id"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
}

// Validate performs minimal validation of required settings.
func (cfg *Config) Validate() error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 bytes")
	}
	return nil
}
