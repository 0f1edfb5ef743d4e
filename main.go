// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"entertainer-booking/cmd"
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/memory"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/notify"
	"entertainer-booking/internal/storage"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/internal/wire"
	"entertainer-booking/pkg/database"
	"entertainer-booking/pkg/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	mode := "server"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("mode", mode),
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.StorageDriver),
		zap.String("queue", config.Queue.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	repo, closeRepo, err := openRepository(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeRepo()

	checks := map[string]adaptor.HealthCheck{"database": repo.Ping}

	// Notifications
	deliverer := notify.NewDeliverer(notify.SendersFromConfig(config, logger), logger)

	var dispatcher notify.Dispatcher
	switch config.Queue.Driver {
	case "asynq":
		client := asynq.NewClient(cmd.RedisOpt(config.Queue))
		defer client.Close()
		dispatcher = notify.NewQueueDispatcher(client, logger)

		redisClient := cmd.NewRedisClient(config.Queue)
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	default:
		inProcess := notify.NewInProcessDispatcher(deliverer, 256, 4, logger)
		defer inProcess.Close()
		dispatcher = inProcess
	}

	receipts := storage.NewReceiptStore(config.Storage, logger)
	service := usecase.NewService(repo, notify.NewNotifier(dispatcher, logger), receipts, config, logger)

	if mode == "worker" {
		if config.Queue.Driver != "asynq" {
			logger.Fatal("Worker mode needs QUEUE_DRIVER=asynq")
		}
		if err := cmd.Worker(ctx, config.Queue, deliverer, service.Booking, logger); err != nil {
			logger.Fatal("Worker stopped", zap.Error(err))
		}
		return
	}

	// Without a worker process the start sweep runs here
	if config.Queue.Driver != "asynq" {
		stopSweep, err := cmd.StartSweeper(ctx, config.Queue.StartSweep, service.Booking, logger)
		if err != nil {
			logger.Fatal("Failed to schedule start sweep", zap.Error(err))
		}
		// runs before the dispatcher is closed
		defer stopSweep()
	}

	// Wire all dependencies
	app := wire.Wiring(service, checks, config, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
	}
}

func openRepository(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func(), error) {
	if config.App.StorageDriver == "memory" {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.New(logger).Repository(), func() {}, nil
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connected successfully")

	return repository.NewRepository(db, logger), db.Close, nil
}
