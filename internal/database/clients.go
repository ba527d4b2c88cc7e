package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/config"
)

// Clients holds the external connections the configuration asks for. Either
// field is nil when its backend is not in use.
type Clients struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
}

// Connect opens only the backends cfg needs: Redis for the redis storage
// driver or the queued telemetry, Postgres for the postgres storage driver or
// as the telemetry sink.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Clients, error) {
	c := &Clients{}

	if cfg.NeedsRedis() {
		rdb, err := NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		c.Redis = rdb
	}

	if cfg.NeedsPostgres() {
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Postgres = pool
	}

	return c, nil
}

// Close releases every open connection.
func (c *Clients) Close() {
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
}
