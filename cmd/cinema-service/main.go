package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-cinema/internal/api"
	"ms-cinema/internal/auth"
	authdb "ms-cinema/internal/auth/db"
	"ms-cinema/internal/config"
	"ms-cinema/internal/database/migrations"
	inventorydb "ms-cinema/internal/inventory/db"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/lifecycle"
	lifecycledb "ms-cinema/internal/lifecycle/db"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/qr"
	"ms-cinema/internal/repertoire"
	"ms-cinema/internal/reservation"
	reservationdb "ms-cinema/internal/reservation/db"
	"ms-cinema/internal/sweep"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	log.Info("DATABASE", "PostgreSQL connection successful")

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Cinema Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	log.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
		SeedData:      os.Getenv("SEED_DATA") == "true",
	})
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	log.Info("DATABASE", "Schema is up to date")

	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := kafka.TopicSet{
			TicketReserved: cfg.Kafka.Topics.TicketReserved,
			TicketStatus:   cfg.Kafka.Topics.TicketStatus,
			SweepCompleted: cfg.Kafka.Topics.SweepCompleted,
		}
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers, topics)
		defer kafkaProducer.Close()

		required := []string{topics.TicketReserved, topics.TicketStatus, topics.SweepCompleted}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, required); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, events will not be published")
	}

	inventoryStore := &inventorydb.DB{Bun: bunDB}
	reservationStore := &reservationdb.DB{Bun: bunDB}
	lifecycleStore := &lifecycledb.DB{Bun: bunDB}
	clerkStore := &authdb.DB{Bun: bunDB}

	seatMapCache := repertoire.NewScreeningCache(redisClient, cfg.Redis.SeatMapTTL)

	reservationService := reservation.NewService(inventoryStore, inventoryStore, reservationStore, cfg.Tickets.SeatPrice)
	reservationService.Logger = log
	reservationService.Cache = seatMapCache
	reservationService.QR = qr.NewGenerator(cfg.Tickets.QRSecret)
	if kafkaProducer != nil {
		reservationService.Kafka = kafkaProducer
	}

	lifecycleService := lifecycle.NewService(lifecycleStore, inventoryStore, cfg.Tickets.ActivationWindow)
	lifecycleService.Logger = log
	if kafkaProducer != nil {
		lifecycleService.Kafka = kafkaProducer
	}

	repertoireService := repertoire.NewService(inventoryStore, reservationStore)
	repertoireService.Cache = seatMapCache
	repertoireService.Logger = log

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(clerkStore, tokens)

	scheduler := sweep.NewScheduler(lifecycleService, cfg.Tickets.SweepInterval, log)
	if kafkaProducer != nil {
		scheduler.Kafka = kafkaProducer
	}

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	scheduler.Start(schedulerCtx)
	log.Info("SWEEP", fmt.Sprintf("Status sweep scheduled every %s", cfg.Tickets.SweepInterval))

	handler := &api.Handler{
		Reservations: reservationService,
		Lifecycle:    lifecycleService,
		Repertoire:   repertoireService,
		Auth:         authService,
		Logger:       log,
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Routes(tokens),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Cinema Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	stopScheduler()

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Cinema Service shutdown complete")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
