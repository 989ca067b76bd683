package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration, loaded from an optional YAML
// file with environment variable overrides (prefix ME_, dots become
// underscores, e.g. ME_SERVER_ADDR).
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Engine EngineConfig `mapstructure:"engine"`
	Store  StoreConfig  `mapstructure:"store"`
	Stream StreamConfig `mapstructure:"stream"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type EngineConfig struct {
	Symbols       []string      `mapstructure:"symbols"`
	QueueCapacity int           `mapstructure:"queue_capacity"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

type StoreConfig struct {
	// Driver selects the order store backend: "memory" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type StreamConfig struct {
	// Interval between depth pushes on the websocket stream.
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the given file path. An empty path skips the
// file and uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("engine.symbols", []string{"AAPL", "GOOG", "TSLA"})
	v.SetDefault("engine.queue_capacity", 10000)
	v.SetDefault("engine.shutdown_grace", 2*time.Second)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "orders.db")
	v.SetDefault("stream.interval", 500*time.Millisecond)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("ME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Engine.Symbols) == 0 {
		return fmt.Errorf("config: engine.symbols must not be empty")
	}
	seen := make(map[string]bool, len(c.Engine.Symbols))
	for _, s := range c.Engine.Symbols {
		if s == "" {
			return fmt.Errorf("config: empty symbol in engine.symbols")
		}
		if seen[s] {
			return fmt.Errorf("config: duplicate symbol %q", s)
		}
		seen[s] = true
	}
	if c.Engine.QueueCapacity <= 0 {
		return fmt.Errorf("config: engine.queue_capacity must be positive, got %d", c.Engine.QueueCapacity)
	}
	if c.Engine.ShutdownGrace <= 0 {
		return fmt.Errorf("config: engine.shutdown_grace must be positive")
	}
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Stream.Interval <= 0 {
		return fmt.Errorf("config: stream.interval must be positive")
	}
	return nil
}
