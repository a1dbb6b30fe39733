package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/internal/service"
	"github.com/Belkadi-Amine23/mystore/internal/storage"
	transport "github.com/Belkadi-Amine23/mystore/internal/transport/http"
	"github.com/Belkadi-Amine23/mystore/pkg/config"
	"github.com/Belkadi-Amine23/mystore/pkg/db"
	"github.com/Belkadi-Amine23/mystore/pkg/kafka"
	outboxRepository "github.com/Belkadi-Amine23/mystore/pkg/outbox/repository"
	"github.com/Belkadi-Amine23/mystore/pkg/outbox/worker"
	"github.com/Belkadi-Amine23/mystore/pkg/utils"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: utils.ParseWithFallback("LOG_LEVEL", "info"),
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tp, err := utils.InitTracer(ctx, "mystore")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer redisClient.Close() //nolint:errcheck

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	imageStore, err := storage.NewImageStore(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Fatal("failed to init image store", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		logger.Fatal("failed to create kafka producer", zap.Error(err))
	}
	defer producer.Close() //nolint:errcheck

	productRepo := repository.NewProductRepository(pool, logger)
	purchaseRepo := repository.NewPurchaseRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)

	productService := service.NewProductServiceCached(
		service.NewProductService(pool, logger, productRepo, imageStore),
		redisClient,
		logger,
	)
	purchaseService := service.NewPurchaseService(pool, logger, purchaseRepo, productRepo, outboxRepo)
	statsService := service.NewStatsService(logger, statsRepo, productRepo, userRepo)
	authService := service.NewAuthService(logger, userRepo)

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, producer, logger)
	go outboxProcessor.Start(ctx)

	validate := transport.NewValidator()
	app := transport.NewApp(cfg, &transport.Handlers{
		Auth:     transport.NewAuthHandler(authService, validate, logger),
		Product:  transport.NewProductHandler(productService, validate, logger),
		Purchase: transport.NewPurchaseHandler(purchaseService, validate, logger),
		Stats:    transport.NewStatsHandler(statsService, logger),
		Home:     transport.NewHomeHandler(productService, purchaseService, logger),
	}, logger)

	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Port,
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Port))

		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Port))

		if err := app.Listen(cfg.HTTP.Port); err != nil {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	m, err := migrate.New("file://"+cfg.Postgres.MigrationsPath, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	logger.Info("migrations applied")

	return nil
}
