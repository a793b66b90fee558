// Package config defines the top-level configuration for the portfolio
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by BINFOLIO_* environment variables.
type Config struct {
	Binance   BinanceConfig   `toml:"binance"`
	Portfolio PortfolioConfig `toml:"portfolio"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Watch     WatchConfig     `toml:"watch"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// BinanceConfig holds exchange API credentials and endpoints. The API secret
// can come from the config directly or from an encrypted secret file.
type BinanceConfig struct {
	BaseURL             string `toml:"base_url"`
	ApiKey              string `toml:"api_key"`
	ApiSecret           string `toml:"api_secret"`
	EncryptedSecretPath string `toml:"encrypted_secret_path"`
	SecretPassword      string `toml:"secret_password"`
}

// PortfolioConfig holds valuation parameters.
type PortfolioConfig struct {
	// Quote is the preferred quote currency for pricing and trade lookups.
	Quote string `toml:"quote"`
	// FeePolicy is "proceeds" (sell fees reduce realized P&L) or "basis"
	// (sell fees are added to the remaining cost basis instead).
	FeePolicy string `toml:"fee_policy"`
	// TradeLimit caps how many fills are fetched per symbol.
	TradeLimit int `toml:"trade_limit"`
	// Sources restricts account types: spot, earn, auto_invest, dual_invest.
	// Empty means all.
	Sources []string `toml:"sources"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the price cache.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	PriceTTL   duration `toml:"price_ttl"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// WatchConfig holds parameters for the periodic refresh loop.
type WatchConfig struct {
	Interval      duration `toml:"interval"`
	AlertCooldown duration `toml:"alert_cooldown"`
	// ArchiveSnapshots uploads a CSV snapshot to S3 every cycle.
	ArchiveSnapshots bool `toml:"archive_snapshots"`
	// SnapshotKeep is how many archived snapshots to retain; 0 keeps all.
	SnapshotKeep int `toml:"snapshot_keep"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Binance: BinanceConfig{
			BaseURL: "https://api.binance.com",
		},
		Portfolio: PortfolioConfig{
			Quote:      "USDT",
			FeePolicy:  "proceeds",
			TradeLimit: 1000,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "binfolio",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    true,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
			PriceTTL:   duration{24 * time.Hour},
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "binfolio-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Watch: WatchConfig{
			Interval:      duration{5 * time.Minute},
			AlertCooldown: duration{time.Hour},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"price_alert", "error"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server":   true,
	"snapshot": true,
	"watch":    true,
	"full":     true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validFeePolicies enumerates the accepted values for Portfolio.FeePolicy.
var validFeePolicies = map[string]bool{
	"proceeds": true,
	"basis":    true,
}

// validSources enumerates the accepted values for Portfolio.Sources.
var validSources = map[string]bool{
	"spot":        true,
	"earn":        true,
	"auto_invest": true,
	"dual_invest": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, snapshot, watch, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Binance credentials: signed endpoints need a key plus one secret source.
	if c.Binance.ApiKey == "" {
		errs = append(errs, "binance: api_key must not be empty")
	}
	if c.Binance.ApiSecret == "" && c.Binance.EncryptedSecretPath == "" {
		errs = append(errs, "binance: either api_secret or encrypted_secret_path must be set")
	}
	if c.Binance.EncryptedSecretPath != "" && c.Binance.SecretPassword == "" {
		errs = append(errs, "binance: secret_password is required when encrypted_secret_path is set")
	}
	if c.Binance.BaseURL == "" {
		errs = append(errs, "binance: base_url must not be empty")
	}

	// Portfolio
	if c.Portfolio.Quote == "" {
		errs = append(errs, "portfolio: quote must not be empty")
	}
	if !validFeePolicies[strings.ToLower(c.Portfolio.FeePolicy)] {
		errs = append(errs, fmt.Sprintf("portfolio: unknown fee_policy %q (valid: proceeds, basis)", c.Portfolio.FeePolicy))
	}
	if c.Portfolio.TradeLimit < 1 {
		errs = append(errs, "portfolio: trade_limit must be >= 1")
	}
	for _, src := range c.Portfolio.Sources {
		if !validSources[strings.ToLower(src)] {
			errs = append(errs, fmt.Sprintf("portfolio: unknown source %q (valid: spot, earn, auto_invest, dual_invest)", src))
		}
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	// Watch
	needsWatch := c.Mode == "watch" || c.Mode == "full"
	if needsWatch {
		if c.Watch.Interval.Duration <= 0 {
			errs = append(errs, "watch: interval must be positive")
		}
		if c.Watch.ArchiveSnapshots && !c.S3.Enabled {
			errs = append(errs, "watch: archive_snapshots requires s3.enabled")
		}
	}
	if c.Watch.SnapshotKeep < 0 {
		errs = append(errs, "watch: snapshot_keep must be >= 0")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
