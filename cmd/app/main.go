package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/config"
	"github.com/Domenick1991/skysailor/internal/auth"
	"github.com/Domenick1991/skysailor/internal/bootstrap"
	"github.com/Domenick1991/skysailor/internal/cache"
	"github.com/Domenick1991/skysailor/internal/changefeed"
	"github.com/Domenick1991/skysailor/internal/kafka"
	"github.com/Domenick1991/skysailor/internal/localstore"
	"github.com/Domenick1991/skysailor/internal/logger"
	"github.com/Domenick1991/skysailor/internal/repository"
	"github.com/Domenick1991/skysailor/internal/service/booking"
	"github.com/Domenick1991/skysailor/internal/service/flights"
	"github.com/Domenick1991/skysailor/internal/service/notify"
	"github.com/Domenick1991/skysailor/internal/service/offers"
	"github.com/Domenick1991/skysailor/internal/service/syncer"
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
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, flight list cache disabled until it recovers")
	}

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.App.Name), nats.MaxReconnects(-1))
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.NATS.URL).Msg("connect nats")
	}
	defer nc.Drain()

	local, err := localstore.Open(cfg.Local.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("open local store")
	}
	defer local.Close()

	loc, err := cfg.Notify.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Notify.Timezone).Msg("load notification timezone")
	}

	flightRepo := repository.NewFlightRepository(pool)
	bookedRepo := repository.NewBookedFlightRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)

	scheduler := notify.NewScheduler(redisCache, bookedRepo, notify.WithLocation(loc))
	changes := changefeed.NewPublisher(nc, cfg.NATS.SubjectPrefix)

	opts := []booking.BookingServiceOption{
		booking.WithMaxAttempts(cfg.Booking.MaxAttempts),
		booking.WithChangePublisher(changes),
	}
	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		defer p.Close()
		producer = p
	} else {
		// Without Kafka there is no worker to react to booking events.
		opts = append(opts, booking.WithReminders(scheduler))
	}

	flightService := flights.NewFlightService(flightRepo, redisCache, cfg.FlightsCacheTTL(), flights.WithWindowDays(cfg.Search.WindowDays))
	bookingService := booking.NewBookingService(bookedRepo, flightRepo, redisCache, producer, cfg.Kafka.BookingEventsTopic, opts...)
	offerService := offers.NewOfferService(offerRepo, redisCache)

	syncService := syncer.NewService(flightRepo, bookedRepo, local, nc, cfg.NATS.SubjectPrefix)
	go syncService.SyncFlights(ctx)
	tracker := syncer.NewTracker(ctx, syncService)
	defer tracker.Stop()

	deps := bootstrap.Deps{
		Flights:       flightService,
		Bookings:      bookingService,
		Offers:        offerService,
		Notifications: scheduler,
		Provider:      local,
		Tokens:        auth.NewTokens(cfg.JWT),
		NATS:          nc,
		OnAuthenticated: []auth.Hook{func(userID string) {
			if tracker.Ensure(userID) {
				log.Debug().Str("user_id", userID).Msg("started booked flights sync")
			}
		}},
	}

	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		log.Error().Err(err).Msg("server error")
	}
}
