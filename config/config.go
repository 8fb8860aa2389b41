package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
}

type AlertsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

type InventoryConfig struct {
	DeductionMode string `mapstructure:"deduction_mode"`
	AllowNegative bool   `mapstructure:"allow_negative"`
	MaxRetries    uint64 `mapstructure:"max_retries"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type BootstrapConfig struct {
	DefaultPassword string `mapstructure:"default_password"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("auth.jwt_secret", "dserve_dev_secret_change_me")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "dserve.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	v.SetDefault("redis.url", "")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "pos_orders")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("alerts.interval", 15*time.Minute)
	v.SetDefault("alerts.cooldown", 6*time.Hour)
	v.SetDefault("inventory.deduction_mode", "recipe")
	v.SetDefault("inventory.allow_negative", false)
	v.SetDefault("inventory.max_retries", 5)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("bootstrap.default_password", "password123")
}

// Load reads path when it exists and applies DSERVE_* environment overrides,
// e.g. DSERVE_HTTP_ADDR for http.addr.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch c.Inventory.DeductionMode {
	case "recipe", "name":
	default:
		return fmt.Errorf("inventory.deduction_mode must be recipe or name, got %q", c.Inventory.DeductionMode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Telegram.Token != "" && c.Telegram.AdminChatID == 0 {
		return errors.New("telegram.admin_chat_id is required with telegram.token")
	}
	return nil
}
