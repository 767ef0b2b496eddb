package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Shop     ShopConfig     `koanf:"shop"`
	Rotation RotationConfig `koanf:"rotation"`
	Economy  EconomyConfig  `koanf:"economy"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type ShopConfig struct {
	// CatalogPath points at the YAML file enumerating valid material kinds.
	CatalogPath string `koanf:"catalog_path"`
	// OriginTag is stamped on every purchase event (e.g. the server name).
	OriginTag string `koanf:"origin_tag"`
}

type RotationConfig struct {
	ItemCount     int    `koanf:"item_count"`
	RefreshHour   int    `koanf:"refresh_hour"`
	CheckInterval string `koanf:"check_interval"` // tick period, e.g. "1m"
	InitialDelay  string `koanf:"initial_delay"`  // delay before the first tick
}

type EconomyConfig struct {
	// BaseURL of the balance provider. Empty means no gateway is
	// configured and purchases are rejected as gateway-unavailable.
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

func (c RotationConfig) CheckIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(c.CheckInterval)
}

func (c RotationConfig) InitialDelayDuration() (time.Duration, error) {
	if c.InitialDelay == "" {
		return 0, nil
	}
	return time.ParseDuration(c.InitialDelay)
}

func (c EconomyConfig) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Timeout)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	if strings.TrimSpace(c.Shop.CatalogPath) == "" {
		return fmt.Errorf("shop.catalog_path is required")
	}
	if _, err := os.Stat(c.Shop.CatalogPath); err != nil {
		return fmt.Errorf("shop.catalog_path %q is not accessible: %w", c.Shop.CatalogPath, err)
	}

	if c.Rotation.ItemCount <= 0 {
		return fmt.Errorf("rotation.item_count must be > 0")
	}
	if c.Rotation.RefreshHour < 0 || c.Rotation.RefreshHour > 23 {
		return fmt.Errorf("invalid rotation.refresh_hour %d (must be 0-23)", c.Rotation.RefreshHour)
	}
	interval, err := c.Rotation.CheckIntervalDuration()
	if err != nil {
		return fmt.Errorf("invalid rotation.check_interval %q: %w", c.Rotation.CheckInterval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("rotation.check_interval must be > 0")
	}
	if delay, err := c.Rotation.InitialDelayDuration(); err != nil {
		return fmt.Errorf("invalid rotation.initial_delay %q: %w", c.Rotation.InitialDelay, err)
	} else if delay < 0 {
		return fmt.Errorf("rotation.initial_delay must be >= 0")
	}

	timeout, err := c.Economy.TimeoutDuration()
	if err != nil {
		return fmt.Errorf("invalid economy.timeout %q: %w", c.Economy.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("economy.timeout must be > 0")
	}

	return nil
}

// Load parses config from defaults + optional file + env and validates it.
// A load or validation failure aborts startup.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.mode":             "release",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"shop.catalog_path":       "./config/materials.yaml",
		"shop.origin_tag":         "bazaar",
		"rotation.item_count":     5,
		"rotation.refresh_hour":   18,
		"rotation.check_interval": "1m",
		"rotation.initial_delay":  "30s",
		"economy.base_url":        "",
		"economy.timeout":         "3s",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("BAZAAR_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "BAZAAR_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
