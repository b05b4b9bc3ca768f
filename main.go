// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"event-booking/cmd"
	"event-booking/internal/data/repository"
	"event-booking/internal/notify"
	"event-booking/internal/scheduler"
	"event-booking/internal/usecase"
	"event-booking/internal/wire"
	"event-booking/pkg/database"
	"event-booking/pkg/payment"
	"event-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Redis backs the rate limiter; the API runs unthrottled without it
	var rdb *redis.Client
	if config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiting disabled", zap.Error(err))
			rdb = nil
		}
	}

	// Booking notifications go to RabbitMQ when configured
	var publisher notify.Publisher = notify.NopPublisher{}
	if config.Rabbit.URL != "" {
		amqpPub, err := notify.NewAMQPPublisher(config.Rabbit.URL, config.Rabbit.Queue, logger)
		if err != nil {
			logger.Warn("RabbitMQ unreachable, notifications disabled", zap.Error(err))
		} else {
			publisher = amqpPub
			defer amqpPub.Close()
		}
	}

	provider := payment.NewClient(config.Payment, logger)

	service := usecase.NewService(repos, provider, publisher, config, logger)

	// Wire all dependencies
	app := wire.Wiring(service, config, rdb, logger)

	// Background reclaim of expired unpaid holds
	sweeper := scheduler.NewSweeper(service.Booking, config.Booking.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
