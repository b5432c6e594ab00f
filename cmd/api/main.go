package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"storefront-api/internal/cache"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/events"
	"storefront-api/internal/jobs"
	"storefront-api/internal/logger"
	"storefront-api/internal/metrics"
	"storefront-api/internal/repository"
	"storefront-api/internal/server"
	"storefront-api/internal/service"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.Log, "storefront-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.InitDatabase(cfg.Database, !cfg.Environment.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}

	storage, err := client.NewS3Client(ctx, &cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("init s3 client")
	}
	mailer := client.NewSMTPMailer(&cfg.SMTP)
	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		idempotency service.IdempotencyStore
		locker      service.Locker = cache.NewLocalLocker()
	)
	if cfg.Redis.Enabled() {
		rdb, err := client.InitRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("init redis")
		}
		defer rdb.Close()
		idempotency = cache.NewIdempotencyStore(rdb)
		locker = cache.NewLocker(rdb)
	}

	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)

	receiptService := service.NewReceiptService(orderRepo, receiptRepo, storage, mailer, locker, m)

	dispatcher := jobs.NewDispatcher(cfg.Receipt.Workers, cfg.Receipt.QueueSize, jobTimeout)
	dispatcher.Start(context.WithoutCancel(ctx))

	var notifier service.OrderNotifier
	if cfg.Kafka.Enabled() {
		writer := client.NewKafkaWriter(&cfg.Kafka)
		defer writer.Close()
		notifier = events.NewKafkaOrderNotifier(dispatcher, writer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderTopic).Msg("publishing order events to kafka")
	} else {
		notifier = events.NewLocalOrderNotifier(dispatcher, receiptService.Process)
		log.Info().Int("workers", cfg.Receipt.Workers).Msg("generating receipts in process")
	}

	services := server.Services{
		Auth:     service.NewAuthService(userRepo, events.NewWelcomeMailer(dispatcher, mailer), cfg.Auth),
		Stores:   service.NewStoreService(transactor, userRepo, storeRepo),
		Products: service.NewProductService(productRepo, storeRepo),
		Checkout: service.NewCheckoutService(transactor, repository.NewInventoryRepository(), orderRepo,
			notifier, idempotency, service.EnvVATRate, m),
		History:  service.NewOrderHistoryService(orderRepo),
		Receipts: receiptService,
	}

	srv := server.NewServer(cfg, services, m)

	log.Info().Str("addr", cfg.HTTP.Address()).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(cfg.HTTP.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("background jobs did not drain")
	}
	log.Info().Msg("shutdown complete")
}
