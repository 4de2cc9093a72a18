package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cuemby/hoconnect/pkg/ledger"
	"github.com/cuemby/hoconnect/pkg/log"
	"github.com/cuemby/hoconnect/pkg/presence"
	"github.com/cuemby/hoconnect/pkg/toast"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreBolt  = "bolt"
	StoreRedis = "redis"
)

// Bus transports
const (
	BusMemory = "memory"
	BusRedis  = "redis"
)

// Config is the process configuration
type Config struct {
	DataDir       string          `yaml:"data_dir"`
	InstanceID    string          `yaml:"instance_id"`
	Log           LogConfig       `yaml:"log"`
	Store         StoreConfig     `yaml:"store"`
	Bus           BusConfig       `yaml:"bus"`
	Redis         RedisConfig     `yaml:"redis"`
	Assistant     AssistantConfig `yaml:"assistant"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Toast         ToastConfig     `yaml:"toast"`
	Presence      PresenceConfig  `yaml:"presence"`
	Ledger        LedgerConfig    `yaml:"ledger"`
	SyncIndicator time.Duration   `yaml:"sync_indicator"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	Prefix  string `yaml:"prefix"` // key prefix for the redis backend
}

type BusConfig struct {
	Transport string `yaml:"transport"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type AssistantConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	BaseURL   string `yaml:"base_url"`
}

type MetricsConfig struct {
	Addr     string        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
}

type ToastConfig struct {
	Capacity      int           `yaml:"capacity"`
	Lifetime      time.Duration `yaml:"lifetime"`
	Mention       time.Duration `yaml:"mention"`
	RemoteMention time.Duration `yaml:"remote_mention"`
}

// Lifetimes converts the toast settings
func (t ToastConfig) Lifetimes() toast.Lifetimes {
	return toast.Lifetimes{
		Default:       t.Lifetime,
		Mention:       t.Mention,
		RemoteMention: t.RemoteMention,
	}
}

type PresenceConfig struct {
	Window time.Duration `yaml:"window"`
}

type LedgerConfig struct {
	Capacity int `yaml:"capacity"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir: "./hoconnect-data",
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: StoreBolt,
			Prefix:  "hoconnect:",
		},
		Bus: BusConfig{
			Transport: BusMemory,
		},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Channel: "hoconnect:signals",
		},
		Metrics: MetricsConfig{
			Addr:     "127.0.0.1:9090",
			Interval: 15 * time.Second,
		},
		Toast: ToastConfig{
			Capacity:      toast.DefaultCapacity,
			Lifetime:      toast.DefaultLifetime,
			Mention:       toast.DefaultMentionLifetime,
			RemoteMention: toast.DefaultRemoteLifetime,
		},
		Presence: PresenceConfig{
			Window: presence.Window,
		},
		Ledger: LedgerConfig{
			Capacity: ledger.DefaultCapacity,
		},
		SyncIndicator: time.Second,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from HOCONNECT_* environment variables.
// Malformed numbers and durations are ignored.
func (c *Config) ApplyEnv() {
	setString(&c.DataDir, "HOCONNECT_DATA_DIR")
	setString(&c.InstanceID, "HOCONNECT_INSTANCE_ID")
	setString(&c.Log.Level, "HOCONNECT_LOG_LEVEL")
	setBool(&c.Log.JSON, "HOCONNECT_LOG_JSON")
	setString(&c.Store.Backend, "HOCONNECT_STORE_BACKEND")
	setString(&c.Bus.Transport, "HOCONNECT_BUS_TRANSPORT")
	setString(&c.Redis.Addr, "HOCONNECT_REDIS_ADDR")
	setString(&c.Redis.Password, "HOCONNECT_REDIS_PASSWORD")
	setInt(&c.Redis.DB, "HOCONNECT_REDIS_DB")
	setString(&c.Redis.Channel, "HOCONNECT_REDIS_CHANNEL")
	setString(&c.Assistant.APIKey, "HOCONNECT_ASSISTANT_API_KEY")
	setString(&c.Assistant.Model, "HOCONNECT_ASSISTANT_MODEL")
	setString(&c.Metrics.Addr, "HOCONNECT_METRICS_ADDR")
	setDuration(&c.Presence.Window, "HOCONNECT_PRESENCE_WINDOW")
}

// Validate checks the configuration for values the process cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StoreBolt:
		if c.DataDir == "" {
			errs = append(errs, errors.New("data_dir is required for the bolt store"))
		}
	case StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	switch c.Bus.Transport {
	case BusMemory:
		if c.Store.Backend == StoreRedis {
			errs = append(errs, errors.New("a redis store needs the redis bus so other processes see its writes"))
		}
	case BusRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown bus transport %q", c.Bus.Transport))
	}

	if (c.Store.Backend == StoreRedis || c.Bus.Transport == BusRedis) && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Toast.Capacity <= 0 {
		errs = append(errs, errors.New("toast.capacity must be positive"))
	}
	if c.Toast.Lifetime <= 0 || c.Toast.Mention <= 0 || c.Toast.RemoteMention <= 0 {
		errs = append(errs, errors.New("toast lifetimes must be positive"))
	}
	if c.Presence.Window <= 0 {
		errs = append(errs, errors.New("presence.window must be positive"))
	}
	if c.Ledger.Capacity <= 0 {
		errs = append(errs, errors.New("ledger.capacity must be positive"))
	}

	return errors.Join(errs...)
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

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
