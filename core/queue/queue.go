package queue

import (
	"time"

	"venue-booking/core/config"
	"venue-booking/core/constants"
	"venue-booking/core/logger"

	"github.com/hibiken/asynq"
)

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

// NewServer builds the worker server that drains the notification queue.
func NewServer(cfg config.RedisConfig, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}
	return asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			constants.QueueNotifications: 6,
			"default":                    1,
		},
		RetryDelayFunc: RetryDelay,
		Logger:         asynqLogger{},
	})
}

// RetryDelay doubles the base backoff for every retry already made: 2s, 4s, 8s.
func RetryDelay(retried int, _ error, _ *asynq.Task) time.Duration {
	if retried < 0 {
		retried = 0
	}
	if retried > 10 {
		retried = 10
	}
	return constants.NotificationBaseBackoff << uint(retried)
}

type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("Asynq", "msg", args) }
func (asynqLogger) Info(args ...any)  { logger.Info("Asynq", "msg", args) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("Asynq", "msg", args) }
func (asynqLogger) Error(args ...any) { logger.Error("Asynq", "msg", args) }
func (asynqLogger) Fatal(args ...any) { logger.Error("Asynq:Fatal", "msg", args) }
