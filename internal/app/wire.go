package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/davidhsu/binfolio/internal/blob/s3"
	"github.com/davidhsu/binfolio/internal/cache/redis"
	"github.com/davidhsu/binfolio/internal/config"
	"github.com/davidhsu/binfolio/internal/crypto"
	"github.com/davidhsu/binfolio/internal/domain"
	"github.com/davidhsu/binfolio/internal/notify"
	"github.com/davidhsu/binfolio/internal/platform/binance"
	"github.com/davidhsu/binfolio/internal/portfolio"
	"github.com/davidhsu/binfolio/internal/service"
	"github.com/davidhsu/binfolio/internal/store/postgres"
)

// Dependencies bundles every dependency that the application modes need to
// operate. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Exchange      *binance.Client
	StrategyStore domain.StrategyStore
	PriceCache    domain.PriceCache
	RateLimiter   domain.RateLimiter
	Archiver      *s3blob.SnapshotArchiver
	Notifier      *notify.Notifier
	Portfolio     *service.PortfolioService
}

// needsPostgres returns true for modes that require the strategy-level store.
func needsPostgres(mode string) bool {
	switch mode {
	case "server", "watch", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Binance client ---
	apiSecret, err := crypto.LoadSecret(crypto.SecretConfig{
		RawSecret:           cfg.Binance.ApiSecret,
		EncryptedSecretPath: cfg.Binance.EncryptedSecretPath,
		SecretPassword:      cfg.Binance.SecretPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: binance secret: %w", err)
	}
	deps.Exchange = binance.NewClient(cfg.Binance.BaseURL, cfg.Binance.ApiKey, apiSecret, logger)

	// --- PostgreSQL (only for modes that need persistence) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.StrategyStore = postgres.NewStrategyStore(pgClient.Pool())
	}

	// --- Redis (optional price cache + API rate limiter) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.PriceCache = redis.NewPriceCache(redisClient, cfg.Redis.PriceTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- S3 blob storage (optional snapshot archival) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewSnapshotArchiver(
			s3blob.NewWriter(s3Client),
			s3blob.NewReader(s3Client),
		)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Portfolio service ---
	deps.Portfolio = service.NewPortfolioService(
		deps.Exchange,
		deps.PriceCache,
		service.PortfolioServiceConfig{
			Quote:      cfg.Portfolio.Quote,
			FeePolicy:  feePolicyFromConfig(cfg.Portfolio.FeePolicy),
			TradeLimit: cfg.Portfolio.TradeLimit,
			Sources:    sourcesFromConfig(cfg.Portfolio.Sources),
		},
		logger,
	)

	return deps, cleanup, nil
}

// feePolicyFromConfig maps the config string to the fee policy. Validation
// has already rejected unknown values.
func feePolicyFromConfig(s string) portfolio.FeePolicy {
	if strings.ToLower(s) == "basis" {
		return portfolio.FeeToBasis
	}
	return portfolio.FeeFromProceeds
}

// sourcesFromConfig maps config source names to domain sources.
func sourcesFromConfig(names []string) []domain.Source {
	var sources []domain.Source
	for _, name := range names {
		switch strings.ToLower(name) {
		case "spot":
			sources = append(sources, domain.SourceSpot)
		case "earn":
			sources = append(sources, domain.SourceEarn)
		case "auto_invest":
			sources = append(sources, domain.SourceAutoInvest)
		case "dual_invest":
			sources = append(sources, domain.SourceDualInvest)
		}
	}
	return sources
}
