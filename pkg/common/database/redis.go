package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mouthwatch/platform/pkg/common/config"
	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

func RedisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  redisPingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedis always returns a usable client. A failed first ping is logged
// and returned so callers can decide whether to keep going; go-redis
// reconnects on later commands.
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(RedisOptions(cfg))
	if err := PingRedis(ctx, client); err != nil {
		logger.Log.WithError(err).WithField("addr", client.Options().Addr).Error("Failed to connect to Redis")
		return client, err
	}
	logger.Log.WithField("addr", client.Options().Addr).Info("Connected to Redis")
	return client, nil
}

// PingRedis bounds the ping so health checks never hang on a dead server.
func PingRedis(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
