package storage

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/repository"
)

// Backends carries the already-connected clients a driver may need.
type Backends struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
}

// Open returns the Storage selected by cfg.StorageDriver.
func Open(cfg *config.Config, b Backends, log zerolog.Logger) (Storage, error) {
	var (
		s   Storage
		err error
	)

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		s = NewMemoryStorage()
	case config.StorageDriverFile, "":
		s, err = NewFileStorage(cfg.DataDir)
	case config.StorageDriverRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("storage driver %q requires a redis client", cfg.StorageDriver)
		}
		s = NewRedisStorage(b.Redis, cfg.RedisKeyPrefix)
	case config.StorageDriverPostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("storage driver %q requires a postgres pool", cfg.StorageDriver)
		}
		s = NewPostgresStorage(repository.NewRecordRepository(b.Postgres))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("driver", cfg.StorageDriver).Msg("Storage ready")
	return s, nil
}
