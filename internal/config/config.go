package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the standard library form.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// StoreBackend selects the session store implementation.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreRedis  StoreBackend = "redis"
)

// Config is the full runtime configuration. Values come from an optional
// YAML file first, then PGDBOT_* environment variables override
// field by field.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Engine   EngineConfig   `yaml:"engine"`
	Store    StoreConfig    `yaml:"store"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`

	// PollTimeout is the long-poll duration for getUpdates.
	PollTimeout Duration `yaml:"poll_timeout"`

	// WebhookSecret, when set, enables webhook delivery on the HTTP
	// server instead of long polling.
	WebhookSecret string `yaml:"webhook_secret"`
}

type EngineConfig struct {
	// BaseURL of the calculation engine. Empty selects the built-in
	// mock engine.
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Backend StoreBackend `yaml:"backend"`

	// SessionTTL evicts abandoned sessions. Zero disables expiry.
	SessionTTL Duration `yaml:"session_ttl"`

	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HTTPConfig struct {
	// Addr serves /healthz, /metrics and the optional webhook.
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: Duration(50 * time.Second),
		},
		Engine: EngineConfig{
			Timeout: Duration(30 * time.Second),
		},
		Store: StoreConfig{
			Backend:    StoreMemory,
			SessionTTL: Duration(24 * time.Hour),
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that precedence order. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.Token, "PGDBOT_TELEGRAM_TOKEN")
	setDuration(&c.Telegram.PollTimeout, "PGDBOT_TELEGRAM_POLL_TIMEOUT")
	setString(&c.Telegram.WebhookSecret, "PGDBOT_TELEGRAM_WEBHOOK_SECRET")

	setString(&c.Engine.BaseURL, "PGDBOT_ENGINE_URL")
	setDuration(&c.Engine.Timeout, "PGDBOT_ENGINE_TIMEOUT")

	if v := os.Getenv("PGDBOT_STORE_BACKEND"); v != "" {
		c.Store.Backend = StoreBackend(v)
	}
	setDuration(&c.Store.SessionTTL, "PGDBOT_SESSION_TTL")
	setString(&c.Store.Redis.Addr, "PGDBOT_REDIS_ADDR")
	setString(&c.Store.Redis.Password, "PGDBOT_REDIS_PASSWORD")
	setInt(&c.Store.Redis.DB, "PGDBOT_REDIS_DB")

	setString(&c.HTTP.Addr, "PGDBOT_HTTP_ADDR")

	setString(&c.Log.Level, "PGDBOT_LOG_LEVEL")
	setString(&c.Log.Format, "PGDBOT_LOG_FORMAT")
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreRedis && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store backend is redis but redis addr is empty")
	}
	if c.Store.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	if c.Telegram.PollTimeout <= 0 {
		return fmt.Errorf("poll_timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}
