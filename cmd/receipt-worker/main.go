package main

import (
	"context"
	"os/signal"
	"storefront-api/internal/cache"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/events"
	"storefront-api/internal/logger"
	"storefront-api/internal/metrics"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// receipt-worker consumes order.completed and generates receipts.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.Log, "receipt-worker")

	if !cfg.Kafka.Enabled() {
		log.Fatal().Msg("KAFKA_BROKERS is required for the receipt worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.InitDatabase(cfg.Database, false)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}

	storage, err := client.NewS3Client(ctx, &cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("init s3 client")
	}

	var locker service.Locker = cache.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := client.InitRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("init redis")
		}
		defer rdb.Close()
		locker = cache.NewLocker(rdb)
	}

	receiptService := service.NewReceiptService(
		repository.NewOrderRepository(db),
		repository.NewReceiptRepository(db),
		storage,
		client.NewSMTPMailer(&cfg.SMTP),
		locker,
		metrics.New(prometheus.DefaultRegisterer),
	)

	reader := client.NewKafkaReader(&cfg.Kafka)
	defer reader.Close()

	consumer := events.NewOrderConsumer(reader, receiptService.Process, service.IsDomainError)

	log.Info().Str("topic", cfg.Kafka.OrderTopic).Str("group", cfg.Kafka.GroupID).Msg("receipt worker started")
	if err := consumer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("consumer stopped")
		return
	}
	log.Info().Msg("receipt worker stopped")
}
