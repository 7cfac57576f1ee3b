package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/lifecycle"
	"github.com/danielhkuo/quickly-vote/memstore"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/polls"
	"github.com/danielhkuo/quickly-vote/publish"
	"github.com/danielhkuo/quickly-vote/router"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var store polls.Store
	if cfg.DatabaseType == cliparse.DatabaseMemory {
		store = memstore.New()
		slog.Warn("Using in-memory store; polls are lost on restart")
	} else {
		dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database setup failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()
		store = db.NewStore(dbConn)
		slog.Info("Database schema ready", "type", cfg.DatabaseType)
	}

	// PollEnded publishers
	publisher, closers, err := buildPublishers(ctx, cfg)
	if err != nil {
		slog.Error("publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("publisher close failed", "error", err)
			}
		}
	}()

	svc := polls.NewService(store, publisher)

	// Close expired polls in the background
	scheduler := lifecycle.New(svc, cfg.TickInterval, cfg.SchedulerWorkers)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	// Create server
	server := http.Server{
		Handler: middleware.CORS(router.NewRouter(svc, cfg)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	stop()
	<-schedulerDone
}

// buildPublishers returns the configured publishers fanned out through
// publish.Multi, plus their Close funcs
func buildPublishers(ctx context.Context, cfg cliparse.Config) (publish.Publisher, []func() error, error) {
	var (
		multi   publish.Multi
		closers []func() error
	)

	for _, name := range cfg.Publishers {
		switch name {
		case cliparse.PublisherLog:
			multi = append(multi, publish.LogPublisher{Logger: slog.Default()})
		case cliparse.PublisherKafka:
			p := publish.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			multi = append(multi, p)
			closers = append(closers, p.Close)
			slog.Info("Publishing to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		case cliparse.PublisherRedis:
			p, err := publish.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisChannel)
			if err != nil {
				for _, c := range closers {
					c()
				}
				return nil, nil, err
			}
			multi = append(multi, p)
			closers = append(closers, p.Close)
			slog.Info("Publishing to Redis", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
		}
	}

	return multi, closers, nil
}
