package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/Domenick1991/skysailor/config"
	"github.com/Domenick1991/skysailor/internal/cache"
	"github.com/Domenick1991/skysailor/internal/email"
	"github.com/Domenick1991/skysailor/internal/kafka"
	"github.com/Domenick1991/skysailor/internal/logger"
	"github.com/Domenick1991/skysailor/internal/repository"
	"github.com/Domenick1991/skysailor/internal/service/notify"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.App.LogLevel, cfg.App.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.FlightsCacheTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect redis")
	}

	loc, err := cfg.Notify.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Notify.Timezone).Msg("load notification timezone")
	}
	scheduler := notify.NewScheduler(redisCache, repository.NewBookedFlightRepository(pool), notify.WithLocation(loc))
	dispatcher := notify.NewDispatcher(redisCache, email.NewSender(cfg.Notify.From), cfg.DispatchInterval())

	if len(cfg.Kafka.Brokers) > 0 {
		probe := kafka.NewProducer(cfg.Kafka.Brokers)
		if err := probe.CheckConnection(ctx); err != nil {
			log.Warn().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("kafka not reachable yet, consumer will keep retrying")
		}
		_ = probe.Close()

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
		defer consumer.Close()

		go func() {
			err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
				event, err := kafka.DecodeBookingEvent(msg)
				if err != nil {
					log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping undecodable booking event")
					return nil
				}
				return scheduler.Apply(ctx, event)
			})
			if err != nil {
				logger.ErrorWithStack(err, "consumer stopped")
			}
		}()
	} else {
		log.Warn().Msg("no kafka brokers configured, only dispatching reminders")
	}

	log.Info().Dur("interval", cfg.DispatchInterval()).Msg("reminder dispatcher started")
	dispatcher.Run(ctx)
	log.Info().Msg("worker stopped")
}
