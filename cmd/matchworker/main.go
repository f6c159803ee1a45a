// README: Match worker; consumes trip-created events and runs the matching
// pass out of process.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"tripmate/internal/config"
	"tripmate/internal/events"
	"tripmate/internal/infra"
	"tripmate/internal/logging"
	"tripmate/internal/modules/matching"
)

const maxBackoff = 30 * time.Second

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Error("TRIPMATE_KAFKA_BROKERS is required for the match worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	store := matching.NewPGStore(dbPool, redisClient)
	svc := matching.NewService(store, log, cfg.Matching.MinScore)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := dbPool.Ping(r.Context()); err != nil {
				http.Error(w, "database not ready", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
		})
		log.Info("metrics listening", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error("metrics server stopped", "err", err)
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		GroupID:  cfg.Kafka.Group,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	log.Info("worker listening", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)

	backoff := time.Second
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutting down worker")
				return
			}
			log.Error("kafka read failed", "err", err, "backoff", backoff.String())
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		event, err := events.Decode(msg.Value)
		if err != nil {
			log.Error("invalid trip-created event", "err", err)
			continue
		}
		n, err := svc.MatchTrip(ctx, event.MatchingTrip())
		if err != nil {
			log.Error("matching pass failed", "trip_id", string(event.TripID), "err", err)
			continue
		}
		log.Info("matching pass complete", "trip_id", string(event.TripID), "matches", n)
	}
}
