// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tripmate/internal/config"
	"tripmate/internal/events"
	"tripmate/internal/geocode"
	httptransport "tripmate/internal/http"
	"tripmate/internal/infra"
	"tripmate/internal/logging"
	"tripmate/internal/modules/chat"
	"tripmate/internal/modules/contact"
	"tripmate/internal/modules/group"
	"tripmate/internal/modules/grouproute"
	"tripmate/internal/modules/matching"
	"tripmate/internal/modules/routing"
	"tripmate/internal/modules/sos"
	"tripmate/internal/modules/trip"
	"tripmate/internal/notify"
	"tripmate/internal/osrm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Maps.APIKey == "" {
		log.Error("TRIPMATE_MAPS_API_KEY is required")
		os.Exit(1)
	}

	if cfg.DB.RunMigrations {
		if err := infra.Migrate(ctx, cfg.DB.DSN); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("database init failed", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	geocoder, err := geocode.NewGoogleGeocoder(cfg.Maps.APIKey)
	if err != nil {
		log.Error("geocoder init failed", "err", err)
		os.Exit(1)
	}
	router := osrm.NewClient(cfg.OSRM.Endpoint)
	analyzer := routing.NewAnalyzer(cfg.Routing.FuelUnitPrice)

	matchingStore := matching.NewPGStore(dbPool, redisClient)
	matchingSvc := matching.NewService(matchingStore, log, cfg.Matching.MinScore)

	var publisher trip.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Info("trip events published to kafka", "topic", cfg.Kafka.Topic)
	}

	tripStore := trip.NewPGStore(dbPool)
	tripSvc := trip.NewService(tripStore, geocoder, router, analyzer, matchingSvc, publisher, matchingStore, log)

	groupStore := group.NewPGStore(dbPool)
	groupSvc := group.NewService(groupStore)
	routeBuilder := grouproute.NewBuilder(router)
	chatSvc := chat.NewService(redisClient, groupSvc)

	contactStore := contact.NewPGStore(dbPool)
	contactSvc := contact.NewService(contactStore)

	notifier := notify.NewBulkNotifier(notify.NewHTTPGateway(cfg.Notifier.Endpoint, cfg.Notifier.Token))
	sosStore := sos.NewPGStore(dbPool)
	sosSvc := sos.NewService(sosStore, contactSvc, notifier, log)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Trip:       tripSvc,
		Matches:    matchingStore,
		Group:      groupSvc,
		GroupRoute: routeBuilder,
		Chat:       chatSvc,
		Contact:    contactSvc,
		SOS:        sosSvc,
		Log:        log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "err", err)
		}
	}()

	log.Info("api listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
