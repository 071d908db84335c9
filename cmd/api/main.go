package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casting_ops_backend/internal/adapters"
	"casting_ops_backend/internal/adapters/storage"
	"casting_ops_backend/internal/calendar"
	"casting_ops_backend/internal/casting"
	"casting_ops_backend/internal/contacts"
	"casting_ops_backend/internal/email"
	"casting_ops_backend/internal/events"
	apphttp "casting_ops_backend/internal/http"
	"casting_ops_backend/internal/http/router"
	"casting_ops_backend/internal/notion"
	"casting_ops_backend/internal/reconcile"
	"casting_ops_backend/internal/scheduler"
	"casting_ops_backend/internal/slack"
	"casting_ops_backend/platform/config"
	"casting_ops_backend/platform/db"
	"casting_ops_backend/platform/logger"
	"casting_ops_backend/platform/redislock"
	"casting_ops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc *storage.MinIOService, bucket string) {
	if err := withRetry(ctx, log, "ensure order documents bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	redisClient := initRedis(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	syncQueue, closeQueue := initSyncQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	val := validator.New()
	sender := email.NewSender(cfg)

	var orderDocs *storage.OrderDocuments
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, storageSvc, cfg.GetMinioBucketOrderDocuments())
		orderDocs = storage.NewOrderDocuments(storageSvc, cfg.GetMinioBucketOrderDocuments())
		log.Info("storage service initialized", "orderDocumentsBucket", cfg.GetMinioBucketOrderDocuments())
	} else {
		log.Warn("MinIO not configured; order documents are not archived")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	castingModule := casting.NewModule(pool, val, eventBus, cfg.GetAdminRole(), log)
	contactsModule := contacts.NewModule(pool, val, log)
	reconcileModule := reconcile.NewModule(pool, val, log)

	// Adapters return nil when their integration is not configured; only
	// non-nil values are handed to the service so its nil checks hold.
	if notifier := slack.NewClient(cfg, log); notifier != nil {
		castingModule.Service.SetNotifier(notifier)
	} else {
		log.Warn("Slack not configured; order threads are not posted")
	}

	holds, err := calendar.NewClient(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize calendar client", "error", err)
		panic("failed to initialize calendar client: " + err.Error())
	}
	if holds != nil {
		castingModule.Service.SetCalendar(holds)
	} else {
		log.Warn("Google Calendar not configured; cast holds are not mirrored")
	}

	if tracker := notion.NewClient(cfg, &http.Client{Timeout: 15 * time.Second}); tracker != nil {
		castingModule.Service.SetTracker(tracker)
	} else {
		log.Warn("Notion not configured; confirmed casts are not tracked")
	}

	if orderDocs != nil {
		castingModule.Service.SetDocumentArchive(orderDocs)
		contactsModule.Service.SetDocumentStore(orderDocs)
	}

	if cfg.IsEmailEnabled() {
		castingModule.Service.SetInquiryMailer(sender)
		contactsModule.Service.SetMailer(sender)
	} else {
		log.Warn("SMTP not configured; cast emails are disabled")
	}

	if redisClient != nil {
		castingModule.Service.SetThreadLocker(redislock.New(redisClient, "casting:", cfg.GetThreadLockTTL()))
	}

	// Cross-module wiring: confirmed bookings create contact records, and
	// contact emails resolve the cast's address from the roster.
	castingModule.Service.SetContactRecords(adapters.NewContactRecordsAdapter(contactsModule.Service))
	contactsModule.Service.SetCastDirectory(adapters.NewCastDirectoryAdapter(castingModule.Service))

	if syncQueue != nil {
		scheduler.NewSyncTrigger(syncQueue, log).Subscribe(eventBus)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:    cfg,
		Logger:    log,
		Health:    db.NewPoolAdapter(pool),
		EventBus:  eventBus,
		AdminRole: cfg.GetAdminRole(),
		Modules: []apphttp.Module{
			castingModule,
			contactsModule,
			reconcileModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(cfg config.SchedulerConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; thread locks disabled")
		return nil
	}
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; thread locks disabled", "error", err)
		return nil
	}
	if opt.TLSConfig != nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt)
}

func initSyncQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; reconciliation runs only on schedule")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
