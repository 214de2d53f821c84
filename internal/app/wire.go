package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/slipscan/internal/blob/s3"
	"github.com/alanyoungcy/slipscan/internal/cache/redis"
	"github.com/alanyoungcy/slipscan/internal/config"
	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/notify"
	"github.com/alanyoungcy/slipscan/internal/ocr"
	"github.com/alanyoungcy/slipscan/internal/profit"
	"github.com/alanyoungcy/slipscan/internal/service"
	"github.com/alanyoungcy/slipscan/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Stores
	BetStore       domain.BetStore
	SetStore       domain.SetStore
	BookmakerStore domain.BookmakerStore
	ImportStore    domain.ImportStore

	// Redis
	RiskCache   domain.RiskCache
	SignalBus   domain.SignalBus
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager

	// Blob storage
	BlobWriter  *s3blob.Writer
	BlobReader  domain.BlobReader
	BlobDeleter domain.BlobDeleter
	Janitor     *s3blob.Janitor

	// OCR
	Engine       ocr.Engine
	OCRAvailable bool

	// Services
	Bets    *service.BetService
	Imports *service.ImportService
	Reports *service.ReportService

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
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

	pool := pgClient.Pool()
	deps.BetStore = postgres.NewBetStore(pool)
	deps.SetStore = postgres.NewSetStore(pool)
	deps.BookmakerStore = postgres.NewBookmakerStore(pool)
	deps.ImportStore = postgres.NewImportStore(pool)

	// --- Redis ---
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

	deps.RiskCache = redis.NewRiskCache(redisClient, cfg.Redis.RiskTTL.Duration)
	deps.SignalBus = redis.NewSignalBus(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)

	// --- S3 blob storage ---
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

	writer := s3blob.NewWriter(s3Client)
	reader := s3blob.NewReader(s3Client)
	deps.BlobWriter = writer
	deps.BlobReader = reader
	deps.BlobDeleter = reader // same type implements BlobDeleter
	if cfg.Retention.Enabled {
		deps.Janitor = s3blob.NewJanitor(reader, reader, cfg.Retention.MaxAge.Duration)
	}

	// --- OCR engine ---
	engine := ocr.NewTesseract(ocr.Config{
		Binary:        cfg.OCR.Binary,
		Language:      cfg.OCR.Language,
		CharWhitelist: cfg.OCR.CharWhitelist,
		Timeout:       cfg.OCR.Timeout.Duration,
	})
	deps.OCRAvailable = true
	if err := engine.Available(); err != nil {
		deps.OCRAvailable = false
		logger.WarnContext(ctx, "ocr binary unavailable, slip uploads will fail",
			slog.String("binary", cfg.OCR.Binary),
			slog.String("error", err.Error()),
		)
	}
	deps.Engine = engine

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

	// --- Services ---
	calc := profit.NewCalculator(cfg.Parser.ExchangeBooks, cfg.Parser.DefaultCommission)

	deps.Bets = service.NewBetService(
		deps.BetStore, deps.SetStore, deps.BookmakerStore,
		writer, deps.BlobDeleter, deps.Engine, calc,
		deps.SignalBus, deps.RiskCache, deps.Notifier, logger,
	)
	deps.Imports = service.NewImportService(
		deps.BetStore, deps.SetStore, deps.ImportStore,
		writer, calc, deps.SignalBus, deps.RiskCache, logger,
	)
	deps.Reports = service.NewReportService(
		deps.BetStore, deps.SetStore, deps.BookmakerStore,
		deps.RiskCache, logger,
	)

	return deps, cleanup, nil
}
