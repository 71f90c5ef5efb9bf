package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Auth     AuthConfig     `yaml:"auth"`
	Notify   NotifyConfig   `yaml:"notify"`
	Sync     SyncConfig     `yaml:"sync"`
	Identity IdentityConfig `yaml:"identity"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StoreConfig struct {
	KeyPrefix string        `yaml:"key_prefix"`
	FeedTTL   time.Duration `yaml:"feed_ttl"`
}

type AuthConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type NotifyConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	Interval       time.Duration `yaml:"interval"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	ManualPerMin   int           `yaml:"manual_per_min"`
	ManualBurst    int           `yaml:"manual_burst"`
	SyncOnNavigate bool          `yaml:"sync_on_navigate"`
}

type IdentityConfig struct {
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		Log: LogConfig{Level: "debug"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Store: StoreConfig{
			KeyPrefix: "ticketflow",
			FeedTTL:   30 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			BaseURL: "http://localhost:8081",
			Timeout: 10 * time.Second,
		},
		Notify: NotifyConfig{
			BaseURL: "http://localhost:8082",
			Timeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			Interval:       90 * time.Second,
			FetchTimeout:   15 * time.Second,
			ManualPerMin:   6,
			ManualBurst:    2,
			SyncOnNavigate: true,
		},
		Identity: IdentityConfig{
			RefreshTimeout: 10 * time.Second,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("STORE_KEY_PREFIX"); v != "" {
		cfg.Store.KeyPrefix = v
	}
	if err := overrideDuration("STORE_FEED_TTL", &cfg.Store.FeedTTL); err != nil {
		return err
	}

	if v := os.Getenv("AUTH_BASE_URL"); v != "" {
		cfg.Auth.BaseURL = v
	}
	if err := overrideDuration("AUTH_TIMEOUT", &cfg.Auth.Timeout); err != nil {
		return err
	}

	if v := os.Getenv("NOTIFY_BASE_URL"); v != "" {
		cfg.Notify.BaseURL = v
	}
	if err := overrideDuration("NOTIFY_TIMEOUT", &cfg.Notify.Timeout); err != nil {
		return err
	}

	if err := overrideDuration("SYNC_INTERVAL", &cfg.Sync.Interval); err != nil {
		return err
	}
	if err := overrideDuration("SYNC_FETCH_TIMEOUT", &cfg.Sync.FetchTimeout); err != nil {
		return err
	}
	if err := overrideInt("SYNC_MANUAL_PER_MIN", &cfg.Sync.ManualPerMin); err != nil {
		return err
	}
	if err := overrideInt("SYNC_MANUAL_BURST", &cfg.Sync.ManualBurst); err != nil {
		return err
	}
	if err := overrideBool("SYNC_ON_NAVIGATE", &cfg.Sync.SyncOnNavigate); err != nil {
		return err
	}

	if err := overrideDuration("IDENTITY_REFRESH_TIMEOUT", &cfg.Identity.RefreshTimeout); err != nil {
		return err
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
