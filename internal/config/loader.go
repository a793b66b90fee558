package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BINFOLIO_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BINFOLIO_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Binance ──
	setStr(&cfg.Binance.BaseURL, "BINFOLIO_BINANCE_BASE_URL")
	setStr(&cfg.Binance.ApiKey, "BINFOLIO_BINANCE_API_KEY")
	setStr(&cfg.Binance.ApiSecret, "BINFOLIO_BINANCE_API_SECRET")
	setStr(&cfg.Binance.EncryptedSecretPath, "BINFOLIO_BINANCE_ENCRYPTED_SECRET_PATH")
	setStr(&cfg.Binance.SecretPassword, "BINFOLIO_BINANCE_SECRET_PASSWORD")

	// ── Portfolio ──
	setStr(&cfg.Portfolio.Quote, "BINFOLIO_PORTFOLIO_QUOTE")
	setStr(&cfg.Portfolio.FeePolicy, "BINFOLIO_PORTFOLIO_FEE_POLICY")
	setInt(&cfg.Portfolio.TradeLimit, "BINFOLIO_PORTFOLIO_TRADE_LIMIT")
	setStringSlice(&cfg.Portfolio.Sources, "BINFOLIO_PORTFOLIO_SOURCES")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "BINFOLIO_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "BINFOLIO_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "BINFOLIO_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "BINFOLIO_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "BINFOLIO_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "BINFOLIO_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "BINFOLIO_POSTGRES_SSLMODE")
	setStr(&cfg.Postgres.SSLMode, "BINFOLIO_POSTGRES_SSL_MODE") // compatibility alias
	setInt(&cfg.Postgres.PoolMaxConns, "BINFOLIO_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "BINFOLIO_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "BINFOLIO_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "BINFOLIO_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "BINFOLIO_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BINFOLIO_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BINFOLIO_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "BINFOLIO_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "BINFOLIO_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "BINFOLIO_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.PriceTTL, "BINFOLIO_REDIS_PRICE_TTL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "BINFOLIO_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "BINFOLIO_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "BINFOLIO_S3_REGION")
	setStr(&cfg.S3.Bucket, "BINFOLIO_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "BINFOLIO_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "BINFOLIO_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "BINFOLIO_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "BINFOLIO_S3_FORCE_PATH_STYLE")

	// ── Watch ──
	setDuration(&cfg.Watch.Interval, "BINFOLIO_WATCH_INTERVAL")
	setDuration(&cfg.Watch.AlertCooldown, "BINFOLIO_WATCH_ALERT_COOLDOWN")
	setBool(&cfg.Watch.ArchiveSnapshots, "BINFOLIO_WATCH_ARCHIVE_SNAPSHOTS")
	setInt(&cfg.Watch.SnapshotKeep, "BINFOLIO_WATCH_SNAPSHOT_KEEP")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "BINFOLIO_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "BINFOLIO_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "BINFOLIO_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "BINFOLIO_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "BINFOLIO_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BINFOLIO_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "BINFOLIO_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "BINFOLIO_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "BINFOLIO_MODE")
	setStr(&cfg.LogLevel, "BINFOLIO_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
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

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
