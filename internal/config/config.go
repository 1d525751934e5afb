package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Cache     CacheConfig     `yaml:"cache"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// WebDir serves a built frontend when set.
	WebDir string `yaml:"web_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// MaxConns caps the connection pool; 0 keeps the pgxpool default.
	MaxConns int `yaml:"max_conns"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CacheConfig struct {
	// SizeMB is the in-process cache size in megabytes.
	SizeMB int `yaml:"size_mb"`
	// EquipmentTTLSeconds is how long the equipment list is cached.
	EquipmentTTLSeconds int `yaml:"equipment_ttl_seconds"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPFORGE_ and underscore-separated paths:
//
//	REPFORGE_SERVER_HOST, REPFORGE_SERVER_PORT, REPFORGE_SERVER_WEB_DIR,
//	REPFORGE_DB_HOST, REPFORGE_DB_PORT, REPFORGE_DB_NAME,
//	REPFORGE_DB_USER, REPFORGE_DB_PASSWORD, REPFORGE_DB_SSLMODE, REPFORGE_DB_MAX_CONNS,
//	REPFORGE_AUTH_API_KEY,
//	REPFORGE_TAILSCALE_ENABLED, REPFORGE_TAILSCALE_HOSTNAME, REPFORGE_TAILSCALE_STATE_DIR,
//	REPFORGE_METRICS_ENABLED,
//	REPFORGE_CACHE_SIZE_MB, REPFORGE_CACHE_EQUIPMENT_TTL_SECONDS
func Load(path string) (*Config, error) {
	cfg := &Config{
		Tailscale: TailscaleConfig{Hostname: "repforge"},
		Cache:     CacheConfig{SizeMB: 8, EquipmentTTLSeconds: 600},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("REPFORGE_SERVER_HOST", &cfg.Server.Host)
	setInt("REPFORGE_SERVER_PORT", &cfg.Server.Port)
	setString("REPFORGE_SERVER_WEB_DIR", &cfg.Server.WebDir)
	setString("REPFORGE_DB_HOST", &cfg.Database.Host)
	setInt("REPFORGE_DB_PORT", &cfg.Database.Port)
	setString("REPFORGE_DB_NAME", &cfg.Database.Name)
	setString("REPFORGE_DB_USER", &cfg.Database.User)
	setString("REPFORGE_DB_PASSWORD", &cfg.Database.Password)
	setString("REPFORGE_DB_SSLMODE", &cfg.Database.SSLMode)
	setInt("REPFORGE_DB_MAX_CONNS", &cfg.Database.MaxConns)
	setString("REPFORGE_AUTH_API_KEY", &cfg.Auth.APIKey)
	setBool("REPFORGE_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	setString("REPFORGE_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("REPFORGE_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)
	setBool("REPFORGE_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("REPFORGE_CACHE_SIZE_MB", &cfg.Cache.SizeMB)
	setInt("REPFORGE_CACHE_EQUIPMENT_TTL_SECONDS", &cfg.Cache.EquipmentTTLSeconds)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must not be negative")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Cache.SizeMB <= 0 {
		return fmt.Errorf("cache.size_mb must be positive")
	}
	return nil
}
