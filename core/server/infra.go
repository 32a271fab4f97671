package server

import (
	"venue-booking/core/cache"
	"venue-booking/core/config"
	"venue-booking/core/database"
	"venue-booking/core/logger"
	"venue-booking/core/queue"
	"venue-booking/core/storage"

	"github.com/hibiken/asynq"
)

// Infra holds the connections shared by the API and the worker.
type Infra struct {
	DB       database.Database
	Cache    *cache.RedisCache
	Queue    *asynq.Client
	Archiver storage.Archiver
}

func Connect(cfg *config.Config) (*Infra, error) {
	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
	})
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Infra{
		DB:       db,
		Cache:    redisCache,
		Queue:    queue.NewClient(cfg.Redis),
		Archiver: storage.NewArchiver(cfg.Storage),
	}, nil
}

func (i *Infra) Close() {
	if err := i.Queue.Close(); err != nil {
		logger.Warn("Infra:Close:Queue:Error:", err)
	}
	if err := i.Cache.Close(); err != nil {
		logger.Warn("Infra:Close:Cache:Error:", err)
	}
	if err := i.DB.Close(); err != nil {
		logger.Warn("Infra:Close:DB:Error:", err)
	}
}
