package cmd

import (
	"context"
	"fmt"
	"time"

	"entertainer-booking/internal/notify"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/utils"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TypeStartSweep moves confirmed bookings whose event has begun to in_progress.
const TypeStartSweep = "booking:start-sweep"

const redisMonitorInterval = 10 * time.Second

func RedisOpt(config utils.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	}
}

func NewRedisClient(config utils.QueueConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
}

// Worker consumes notification tasks and runs the scheduled start sweep until ctx is cancelled.
func Worker(ctx context.Context, config utils.QueueConfig, deliverer *notify.Deliverer, bookings usecase.BookingService, logger *zap.Logger) error {
	log := logger.With(zap.String("component", "worker"))
	redisOpt := RedisOpt(config)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: config.Concurrency,
		Queues: map[string]int{
			notify.QueueName: 6,
			"default":        1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			log.Warn("Task failed",
				zap.String("type", task.Type()),
				zap.Int("retry", retried),
				zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(notify.TypeDeliver, deliverer.HandleDeliverTask)
	mux.HandleFunc(TypeStartSweep, handleStartSweep(bookings, log))

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(config.StartSweep, asynq.NewTask(TypeStartSweep, nil, asynq.MaxRetry(1))); err != nil {
		return fmt.Errorf("register start sweep %q: %w", config.StartSweep, err)
	}

	client := NewRedisClient(config)
	defer client.Close()
	go monitorRedis(ctx, client, log)

	log.Info("Starting worker",
		zap.String("redis", config.RedisAddr),
		zap.Int("concurrency", config.Concurrency),
		zap.String("start_sweep", config.StartSweep))
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	log.Info("Stopping worker")
	scheduler.Shutdown()
	srv.Shutdown()
	return nil
}

func handleStartSweep(bookings usecase.BookingService, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		started, err := bookings.StartDueBookings(ctx)
		if err != nil {
			return err
		}
		if started > 0 {
			log.Info("Start sweep moved bookings to in_progress", zap.Int("count", started))
		}
		return nil
	}
}

// StartSweeper runs the start sweep on a local cron schedule when no worker process is deployed.
// The returned stop waits for a running sweep to finish.
func StartSweeper(ctx context.Context, spec string, bookings usecase.BookingService, logger *zap.Logger) (func(), error) {
	log := logger.With(zap.String("component", "start_sweep"))
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		started, err := bookings.StartDueBookings(ctx)
		if err != nil {
			log.Error("Start sweep failed", zap.Error(err))
			return
		}
		if started > 0 {
			log.Info("Start sweep moved bookings to in_progress", zap.Int("count", started))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule start sweep %q: %w", spec, err)
	}

	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

// monitorRedis pings Redis periodically so a lost connection shows up in the logs.
func monitorRedis(ctx context.Context, client *redis.Client, log *zap.Logger) {
	ticker := time.NewTicker(redisMonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("Redis connection lost", zap.Error(err))
			}
		}
	}
}
