package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/redis/go-redis/v9"

	logs "github.com/danmuck/logowire/internal/logging"
	"github.com/danmuck/logowire/internal/transport"
)

func newRedisClient(cfg redisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:                  cfg.Address,
		ContextTimeoutEnabled: true,
	})
}

// dialKernel opens the kernel end of a session described by cfg.
func dialKernel(ctx context.Context, cfg appConfig) (transport.Conn, error) {
	if cfg.Transport == transportRedis {
		client := newRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return transport.KernelQueue(client, cfg.Redis.Prefix, cfg.Redis.Session,
			transport.WithPollTimeout(cfg.Redis.PollTimeout),
			transport.WithRedisLimits(cfg.Limits),
			transport.WithOwnedClient(),
		), nil
	}
	return transport.Dial(ctx, cfg.Dial)
}

// listen prepares a stream listener, replacing a stale unix socket file.
func listen(cfg appConfig) (*transport.Listener, error) {
	if cfg.Transport == transportUnix {
		if info, err := os.Stat(cfg.Address); err == nil && info.Mode()&fs.ModeSocket != 0 {
			logs.Warnf("removing stale socket %s", cfg.Address)
			if err := os.Remove(cfg.Address); err != nil {
				return nil, err
			}
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return transport.Listen(cfg.Transport, cfg.Address, cfg.Limits)
}
