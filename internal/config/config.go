// Package config loads client core configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
)

type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	API   APIConfig   `mapstructure:"api"`
	Store StoreConfig `mapstructure:"store"`
	Queue QueueConfig `mapstructure:"queue"`
	Photo PhotoConfig `mapstructure:"photo"`
	Tiles TilesConfig `mapstructure:"tiles"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	// Backend selects the durable store implementation: "sqlite" or "file".
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
}

type QueueConfig struct {
	StorageKey  string        `mapstructure:"storage_key"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Retention   time.Duration `mapstructure:"retention"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

type PhotoConfig struct {
	MaxEdge     int `mapstructure:"max_edge"`
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

type TilesConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "INFO")
	v.SetDefault("api.base_url", "https://api.greensentinel.app")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.data_dir", "./data")
	v.SetDefault("queue.storage_key", "offline_queue")
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.retention", 24*time.Hour)
	v.SetDefault("queue.settle_delay", 3*time.Second)
	v.SetDefault("photo.max_edge", 1280)
	v.SetDefault("photo.jpeg_quality", 80)
	v.SetDefault("tiles.ttl", 7*24*time.Hour)
}

// Load reads configuration from config.yaml (working directory or
// ./config) with GS_-prefixed environment overrides. A missing config
// file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(errors.ErrConfig, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfig, "failed to unmarshal config", err)
	}

	if cfg.Queue.MaxAttempts < 1 {
		return nil, errors.New(errors.ErrConfig, "queue.max_attempts must be at least 1")
	}

	return &cfg, nil
}
